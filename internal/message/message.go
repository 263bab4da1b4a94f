package message

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Sentinel errors for the message package.
var (
	ErrNotFound       = errors.New("message not found")
	ErrContentTooLong = errors.New("message content exceeds the maximum length")
	ErrEmptyContent   = errors.New("message content must not be empty")
	ErrInvalidKind    = errors.New("message kind must be \"text\" or \"media\"")
)

// Kind distinguishes a plain chat message from an uploaded media reference.
type Kind string

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

// Pagination defaults, used by GET /api/messages?limit=.
const (
	DefaultLimit = 20
	MaxLimit     = 200
	MaxLength    = 2000
)

// timestampLayout matches Python's datetime.now().isoformat() (microsecond precision, no "Z"/offset suffix for a
// naive UTC timestamp), exactly as original_source/handlers/api_handlers.py:141 produces it. Every code path that
// reports a message's creation time — history, live upload, live websocket relay — must format with this layout so
// a client never sees the same event with two different timestamp shapes.
const timestampLayout = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t in UTC using the layout the original server emits for message timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Message holds the fields read from the database, including the author's username joined from the users table.
// AuthorID and AuthorUsername are nil/empty when the author account has since been deleted, mirroring the
// ON DELETE SET NULL foreign key and original_source/database.py's LEFT JOIN in get_recent_messages.
type Message struct {
	ID             int64
	Kind           Kind
	Content        string
	AuthorID       *uuid.UUID
	AuthorUsername *string
	CreatedAt      time.Time
}

// CreateParams groups the inputs for creating a new message.
type CreateParams struct {
	Kind     Kind
	Content  string
	AuthorID *uuid.UUID
}

// ValidateContent checks that content is non-empty after trimming and does not exceed the given maximum rune count.
func ValidateContent(content string, maxLength int) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > maxLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// ClampLimit constrains a requested page size to [1, MaxLimit], defaulting to DefaultLimit when the input is zero or
// negative.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Repository defines the data-access contract for message operations, grounded on original_source/database.py's
// add_message / _enforce_message_limit / get_recent_messages / get_message_count.
type Repository interface {
	// Create inserts a message and, if the total message count now exceeds maxMessages, evicts the oldest rows,
	// returning the content (the public URL) of every evicted media message so the caller can unlink the backing files.
	Create(ctx context.Context, params CreateParams, maxMessages int) (*Message, []string, error)

	// List returns the most recent messages, newest first, up to limit.
	List(ctx context.Context, limit int) ([]Message, error)

	// Count returns the total number of stored messages.
	Count(ctx context.Context) (int, error)
}
