package signaling

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/message"
	"github.com/BungaaFACE/BungaaCord/internal/room"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// fakeRoomRepo is a minimal in-memory room.Repository for dispatch tests.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]room.Room
}

func newFakeRoomRepo(names ...string) *fakeRoomRepo {
	r := &fakeRoomRepo{rooms: make(map[string]room.Room)}
	for i, name := range names {
		r.rooms[name] = room.Room{ID: int64(i + 1), Name: name}
	}
	return r
}

func (r *fakeRoomRepo) Create(_ context.Context, name string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[name]; ok {
		return nil, room.ErrAlreadyExists
	}
	rm := room.Room{ID: int64(len(r.rooms) + 1), Name: name}
	r.rooms[name] = rm
	return &rm, nil
}

func (r *fakeRoomRepo) List(_ context.Context) ([]room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm)
	}
	return out, nil
}

func (r *fakeRoomRepo) GetByName(_ context.Context, name string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[name]
	if !ok {
		return nil, room.ErrNotFound
	}
	return &rm, nil
}

func (r *fakeRoomRepo) Exists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[name]
	return ok, nil
}

// fakeMessageRepo is a minimal in-memory message.Repository; evictURLs lets a test force Create to report arbitrary
// evicted media URLs regardless of maxMessages.
type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   []message.Message
	nextID     int64
	createErr  error
	evictURLs  []string
	lastParams message.CreateParams
}

func (r *fakeMessageRepo) Create(_ context.Context, params message.CreateParams, _ int) (*message.Message, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastParams = params
	if r.createErr != nil {
		return nil, nil, r.createErr
	}
	r.nextID++
	msg := message.Message{ID: r.nextID, Kind: params.Kind, Content: params.Content, AuthorID: params.AuthorID}
	r.messages = append(r.messages, msg)
	return &msg, r.evictURLs, nil
}

func (r *fakeMessageRepo) List(_ context.Context, limit int) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.messages) {
		limit = len(r.messages)
	}
	return append([]message.Message(nil), r.messages[:limit]...), nil
}

func (r *fakeMessageRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages), nil
}

// fakeStorageProvider is a no-op media.StorageProvider that records deleted keys.
type fakeStorageProvider struct {
	mu      sync.Mutex
	deleted []string
	delErr  error
}

func (s *fakeStorageProvider) Put(_ context.Context, _ string, _ io.Reader) error {
	return nil
}

func (s *fakeStorageProvider) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, media.ErrStorageKeyNotFound
}

func (s *fakeStorageProvider) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorageProvider) URL(key string) string {
	return "https://media.example.test/" + key
}

// fakeUserRepo is an unused-by-logic but interface-satisfying user.Repository, since Hub stores one without calling
// it yet.
type fakeUserRepo struct{}

func (fakeUserRepo) Create(_ context.Context, _ user.CreateParams) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (fakeUserRepo) GetByUUID(_ context.Context, _ uuid.UUID) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (fakeUserRepo) GetByUsername(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (fakeUserRepo) List(_ context.Context) ([]user.User, error)                    { return nil, nil }
func (fakeUserRepo) UpdateAvatarURL(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (fakeUserRepo) Delete(_ context.Context, _ uuid.UUID) error                    { return nil }
