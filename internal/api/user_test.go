package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/user"
)

func TestUserGetReturnsResolvedIdentity(t *testing.T) {
	t.Parallel()

	avatarURL := "/avatars/foo_avatar.jpg"
	u := &user.User{UUID: uuid.New(), Username: "alice", IsAdmin: true, AvatarURL: &avatarURL}

	app := fiber.New()
	withFakeUser(app, u)
	app.Get("/api/user", NewUserHandler().Get)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/user", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	var body struct {
		Status string `json:"status"`
		User   struct {
			UUID      string `json:"uuid"`
			Username  string `json:"username"`
			IsAdmin   bool   `json:"is_admin"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Errorf("status field = %q, want ok", body.Status)
	}
	if body.User.UUID != u.UUID.String() {
		t.Errorf("uuid = %q, want %q", body.User.UUID, u.UUID.String())
	}
	if body.User.Username != "alice" {
		t.Errorf("username = %q, want alice", body.User.Username)
	}
	if !body.User.IsAdmin {
		t.Error("is_admin = false, want true")
	}
	if body.User.AvatarURL != avatarURL {
		t.Errorf("avatar_url = %q, want %q", body.User.AvatarURL, avatarURL)
	}
}
