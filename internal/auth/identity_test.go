package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// fakeUserRepo is a minimal in-memory user.Repository for middleware tests.
type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: make(map[uuid.UUID]user.User)}
	for _, u := range users {
		r.byID[u.UUID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, params user.CreateParams) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeUserRepo) UpdateAvatarURL(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func TestResolveUserMissingIdentityIsRejected(t *testing.T) {
	repo := newFakeUserRepo()
	_, err := resolveUser(context.Background(), repo, "")
	if err != errNoIdentity {
		t.Errorf("err = %v, want errNoIdentity", err)
	}
}

func TestResolveUserMalformedUUIDIsRejected(t *testing.T) {
	repo := newFakeUserRepo()
	_, err := resolveUser(context.Background(), repo, "not-a-uuid")
	if err != errNoIdentity {
		t.Errorf("err = %v, want errNoIdentity", err)
	}
}

func TestResolveUserUnknownUUIDIsRejected(t *testing.T) {
	repo := newFakeUserRepo()
	_, err := resolveUser(context.Background(), repo, uuid.New().String())
	if err != errNoIdentity {
		t.Errorf("err = %v, want errNoIdentity", err)
	}
}

func TestResolveUserKnownUUIDSucceeds(t *testing.T) {
	id := uuid.New()
	repo := newFakeUserRepo(user.User{UUID: id, Username: "alice"})

	got, err := resolveUser(context.Background(), repo, id.String())
	if err != nil {
		t.Fatalf("resolveUser() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}
}
