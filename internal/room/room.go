package room

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for the room package.
var (
	ErrNotFound      = errors.New("voice room not found")
	ErrAlreadyExists = errors.New("voice room already exists")
	ErrInvalidName   = errors.New("room name must not be empty")
)

// DefaultRoomName is the room bootstrapped at first startup, mirroring original_source/server.py's
// init_default_rooms ensuring a "General" room exists.
const DefaultRoomName = "General"

// Room is a named voice/video room, mirroring original_source/database.py's VoiceRooms table.
type Room struct {
	ID   int64
	Name string
}

// NormalizeName trims surrounding whitespace from a submitted room name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName checks that a room name is non-empty after trimming.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	return nil
}

// Repository defines the data-access contract for voice room operations, grounded on
// original_source/database.py's add_voice_room / get_voice_rooms / get_voice_room_by_name / voice_room_exists.
type Repository interface {
	Create(ctx context.Context, name string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	GetByName(ctx context.Context, name string) (*Room, error)
	Exists(ctx context.Context, name string) (bool, error)
}
