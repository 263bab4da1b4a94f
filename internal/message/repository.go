package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const selectColumns = `m.id, m.kind, m.content, m.author_uuid, u.username, m.created_at`

const baseJoin = "FROM messages m LEFT JOIN users u ON u.uuid = m.author_uuid"

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewPGRepository creates a new PostgreSQL-backed message repository.
func NewPGRepository(db *pgxpool.Pool, logger zerolog.Logger) *PGRepository {
	return &PGRepository{db: db, log: logger}
}

// Create inserts a new message and, if the resulting row count exceeds maxMessages, evicts the oldest rows beyond
// that limit. Grounded on original_source/database.py's add_message followed by _enforce_message_limit: the
// original runs the insert and the eviction sweep as separate sequential calls against the same SQLite connection;
// here both happen inside one transaction so a crash between the two steps can't leave the table over-limit.
func (r *PGRepository) Create(ctx context.Context, params CreateParams, maxMessages int) (*Message, []string, error) {
	if params.Kind != KindText && params.Kind != KindMedia {
		return nil, nil, ErrInvalidKind
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin create message tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.log.Warn().Err(err).Msg("tx rollback failed")
		}
	}()

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO messages (kind, content, author_uuid) VALUES ($1, $2, $3) RETURNING id`,
		params.Kind, params.Content, params.AuthorID,
	).Scan(&id)
	if err != nil {
		return nil, nil, fmt.Errorf("insert message: %w", err)
	}

	evictedKeys, err := r.evictOverLimit(ctx, tx, maxMessages)
	if err != nil {
		return nil, nil, fmt.Errorf("evict over-limit messages: %w", err)
	}

	row := tx.QueryRow(ctx, fmt.Sprintf("SELECT %s %s WHERE m.id = $1", selectColumns, baseJoin), id)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch inserted message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit create message tx: %w", err)
	}
	return msg, evictedKeys, nil
}

// evictOverLimit deletes the oldest rows beyond maxMessages and returns the content (storage URL) of any evicted
// media-kind rows, mirroring _enforce_message_limit / _delete_media_file.
func (r *PGRepository) evictOverLimit(ctx context.Context, tx pgx.Tx, maxMessages int) ([]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, kind, content FROM messages
		 ORDER BY created_at DESC
		 OFFSET $1`, maxMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("select evictable messages: %w", err)
	}

	var ids []int64
	var mediaKeys []string
	for rows.Next() {
		var id int64
		var kind Kind
		var content string
		if err := rows.Scan(&id, &kind, &content); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan evictable message: %w", err)
		}
		ids = append(ids, id)
		if kind == KindMedia {
			mediaKeys = append(mediaKeys, content)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evictable messages: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = ANY($1)`, ids); err != nil {
		return nil, fmt.Errorf("delete evicted messages: %w", err)
	}
	return mediaKeys, nil
}

// List returns the most recent messages, newest first, up to limit, mirroring get_recent_messages.
func (r *PGRepository) List(ctx context.Context, limit int) ([]Message, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf("SELECT %s %s ORDER BY m.created_at DESC LIMIT $1", selectColumns, baseJoin), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Count returns the total number of stored messages, mirroring get_message_count.
func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// scanMessage scans a single row into a Message struct.
func scanMessage(row pgx.Row) (*Message, error) {
	var msg Message
	if err := row.Scan(&msg.ID, &msg.Kind, &msg.Content, &msg.AuthorID, &msg.AuthorUsername, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}
