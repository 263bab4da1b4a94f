package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/message"
	"github.com/BungaaFACE/BungaaCord/internal/room"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// fakeUserRepo is a minimal in-memory user.Repository for handler tests, mirroring
// internal/auth's fakeUserRepo.
type fakeUserRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]user.User
	avatars  map[uuid.UUID]string
	deleteFn func(uuid.UUID) error
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: make(map[uuid.UUID]user.User), avatars: make(map[uuid.UUID]string)}
	for _, u := range users {
		r.byID[u.UUID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, params user.CreateParams) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == params.Username {
			return nil, user.ErrAlreadyExists
		}
	}
	u := user.User{UUID: params.UUID, Username: params.Username, IsAdmin: params.IsAdmin}
	r.byID[u.UUID] = u
	return &u, nil
}

func (r *fakeUserRepo) GetByUUID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateAvatarURL(_ context.Context, id uuid.UUID, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avatars[id] = avatarURL
	if u, ok := r.byID[id]; ok {
		u.AvatarURL = &avatarURL
		r.byID[id] = u
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteFn != nil {
		return r.deleteFn(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// fakeRoomRepo is a minimal in-memory room.Repository for handler tests.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms []room.Room
}

func newFakeRoomRepo(rooms ...room.Room) *fakeRoomRepo {
	return &fakeRoomRepo{rooms: rooms}
}

func (r *fakeRoomRepo) Create(_ context.Context, name string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm := room.Room{ID: int64(len(r.rooms) + 1), Name: name}
	r.rooms = append(r.rooms, rm)
	return &rm, nil
}

func (r *fakeRoomRepo) List(_ context.Context) ([]room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]room.Room, len(r.rooms))
	copy(out, r.rooms)
	return out, nil
}

func (r *fakeRoomRepo) GetByName(_ context.Context, name string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range r.rooms {
		if rm.Name == name {
			return &rm, nil
		}
	}
	return nil, room.ErrNotFound
}

func (r *fakeRoomRepo) Exists(_ context.Context, name string) (bool, error) {
	_, err := r.GetByName(context.Background(), name)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// fakeMessageRepo is a minimal in-memory message.Repository for handler tests.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []message.Message
	nextID   int64
	createFn func(message.CreateParams) (*message.Message, []string, error)
}

func newFakeMessageRepo(messages ...message.Message) *fakeMessageRepo {
	return &fakeMessageRepo{messages: messages, nextID: int64(len(messages) + 1)}
}

func (r *fakeMessageRepo) Create(_ context.Context, params message.CreateParams, _ int) (*message.Message, []string, error) {
	if r.createFn != nil {
		return r.createFn(params)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := message.Message{ID: r.nextID, Kind: params.Kind, Content: params.Content, AuthorID: params.AuthorID}
	r.nextID++
	r.messages = append(r.messages, m)
	return &m, nil, nil
}

func (r *fakeMessageRepo) List(_ context.Context, limit int) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.messages) {
		limit = len(r.messages)
	}
	out := make([]message.Message, limit)
	copy(out, r.messages[len(r.messages)-limit:])
	return out, nil
}

func (r *fakeMessageRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages), nil
}

// fakeStorage is a minimal in-memory media.StorageProvider for upload handler tests, mirroring the teacher's
// fakeStorageForUpload.
type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	baseURL string
	putErr  error
	deleted []string
}

func newFakeStorage(baseURL string) *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte), baseURL: baseURL}
}

func (s *fakeStorage) Put(_ context.Context, key string, r io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

// withFakeUser installs a fake auth.RequireUser-equivalent middleware that stores u directly in Locals, so handler
// tests don't need a real user.Repository round trip just to exercise auth.UserFromContext.
func withFakeUser(app *fiber.App, u *user.User) {
	app.Use(func(c fiber.Ctx) error {
		if u != nil {
			c.Locals("authUser", u)
		}
		return c.Next()
	})
}

func multipartFileRequest(url, fieldName, filename string, content []byte) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
