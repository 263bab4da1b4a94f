package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

func TestIndexServesHTMLWhenIdentityResolved(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	withFakeUser(app, &user.User{UUID: uuid.New(), Username: "alice"})
	app.Get("/", NewIndexHandler().Index)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct == "" {
		t.Error("expected a Content-Type header")
	}
}

func TestIndexNotFoundWithoutIdentity(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	app := fiber.New()
	app.Get("/", auth.RequireUser(repo), NewIndexHandler().Index)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
