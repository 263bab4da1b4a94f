// Package bootstrap seeds the database with the state the server needs on every startup: the admin account from
// configuration and the default voice room.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/room"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// EnsureAdmin creates the administrator account described by adminUUID/adminUsername if it does not already exist.
// Ported from original_source/server.py's main() call to db.add_admin_user: a no-op, not an error, when the account
// is already present.
func EnsureAdmin(ctx context.Context, users user.Repository, adminUUID uuid.UUID, adminUsername string, log zerolog.Logger) error {
	_, err := users.GetByUUID(ctx, adminUUID)
	if err == nil {
		log.Info().Str("username", adminUsername).Msg("admin account already present")
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("look up admin account: %w", err)
	}

	_, err = users.Create(ctx, user.CreateParams{
		UUID:     adminUUID,
		Username: adminUsername,
		IsAdmin:  true,
	})
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	log.Info().Str("username", adminUsername).Str("uuid", adminUUID.String()).Msg("admin account created")
	return nil
}

// EnsureDefaultRooms creates the default voice room if it does not already exist. Ported from
// original_source/database.py's init_default_rooms, which seeds a single room named "General".
func EnsureDefaultRooms(ctx context.Context, rooms room.Repository, log zerolog.Logger) error {
	exists, err := rooms.Exists(ctx, room.DefaultRoomName)
	if err != nil {
		return fmt.Errorf("check default room: %w", err)
	}
	if exists {
		log.Info().Str("room", room.DefaultRoomName).Msg("default room already exists")
		return nil
	}

	if _, err := rooms.Create(ctx, room.DefaultRoomName); err != nil {
		return fmt.Errorf("create default room: %w", err)
	}

	log.Info().Str("room", room.DefaultRoomName).Msg("default room created")
	return nil
}

// Run executes EnsureAdmin (when adminUUID is non-nil) followed by EnsureDefaultRooms against a single pool,
// matching the order original_source/server.py's main() performs its startup seeding in.
func Run(ctx context.Context, db *pgxpool.Pool, adminUUID uuid.UUID, adminUsername string, log zerolog.Logger) error {
	users := user.NewPGRepository(db, log)
	rooms := room.NewPGRepository(db, log)

	if adminUUID != uuid.Nil {
		if err := EnsureAdmin(ctx, users, adminUUID, adminUsername, log); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("ADMIN_UUID not set, skipping admin account bootstrap")
	}

	return EnsureDefaultRooms(ctx, rooms, log)
}
