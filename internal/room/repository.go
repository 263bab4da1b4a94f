package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/postgres"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewPGRepository creates a new PostgreSQL-backed voice room repository.
func NewPGRepository(db *pgxpool.Pool, logger zerolog.Logger) *PGRepository {
	return &PGRepository{db: db, log: logger}
}

// Create inserts a new voice room. Returns ErrAlreadyExists if a room with the same name exists, mirroring
// add_voice_room's handling of SQLite's IntegrityError.
func (r *PGRepository) Create(ctx context.Context, name string) (*Room, error) {
	var room Room
	err := r.db.QueryRow(ctx,
		`INSERT INTO voice_rooms (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&room.ID, &room.Name)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert voice room: %w", err)
	}
	return &room, nil
}

// List returns every voice room ordered by ID.
func (r *PGRepository) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM voice_rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query voice rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name); err != nil {
			return nil, fmt.Errorf("scan voice room: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voice rooms: %w", err)
	}
	return rooms, nil
}

// GetByName returns the room with the given name, or ErrNotFound if none exists.
func (r *PGRepository) GetByName(ctx context.Context, name string) (*Room, error) {
	var room Room
	err := r.db.QueryRow(ctx, `SELECT id, name FROM voice_rooms WHERE name = $1`, name).Scan(&room.ID, &room.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query voice room: %w", err)
	}
	return &room, nil
}

// Exists reports whether a room with the given name exists, mirroring voice_room_exists.
func (r *PGRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM voice_rooms WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check voice room exists: %w", err)
	}
	return exists, nil
}
