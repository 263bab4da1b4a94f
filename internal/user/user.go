package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the user package.
var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already taken")
	ErrInvalidName   = errors.New("username must be 2 to 32 characters of letters, digits, underscores, or hyphens")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)

// User holds the core identity fields read from the database.
type User struct {
	UUID      uuid.UUID
	Username  string
	IsAdmin   bool
	AvatarURL *string
	CreatedAt time.Time
}

// CreateParams groups the inputs for inserting a new user.
type CreateParams struct {
	UUID     uuid.UUID
	Username string
	IsAdmin  bool
}

// NormalizeUsername trims surrounding whitespace from a submitted username.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername checks that username matches the allowed character set and length, mirroring the sanitisation the
// original server relied on implicitly via its SQLite UNIQUE constraint plus ad hoc checks in admin_handlers.py.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidName
	}
	return nil
}

// Repository defines the data-access contract for user operations, grounded on original_source/database.py's
// add_user / get_user_by_uuid / get_user_by_username / delete_user / update_user_avatar.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
