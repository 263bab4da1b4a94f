// Package auth resolves the `user=<uuid>` query-string identity that every HTTP and WebSocket entry point relies on,
// and gates the admin surface behind it. There is no password or bearer-token scheme for ordinary identity — holding
// a valid user UUID is the whole credential, exactly as original_source/handlers/middlewares.py asserts it.
package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/user"
)

const localsUserKey = "authUser"

// RequireUser returns Fiber middleware that resolves the `user` query parameter to a stored account and makes it
// available via UserFromContext. A missing or unknown identity is rejected with 404, matching
// original_source/handlers/middlewares.py's is_user_middleware — the original returns HTTPNotFound rather than 401 or
// 403 so an identity probe can't distinguish "wrong UUID" from "no such route".
func RequireUser(users user.Repository) fiber.Handler {
	return func(c fiber.Ctx) error {
		u, err := resolveUser(c.Context(), users, c.Query("user"))
		if err != nil {
			return fiber.ErrNotFound
		}
		c.Locals(localsUserKey, u)
		return c.Next()
	}
}

// RequireAdmin returns Fiber middleware that additionally requires the resolved user to carry the admin flag,
// matching original_source/handlers/middlewares.py's is_admin_middleware. When the `user` query parameter is absent,
// it falls back to the PanelSessionCookie minted by admin.go's Panel handler, so the admin panel's own follow-up API
// calls don't need to keep repeating the admin's UUID in every request. panelSecret may be empty, in which case the
// fallback is skipped and behavior matches the original exactly (`user=` query parameter only).
func RequireAdmin(users user.Repository, panelSecret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		identity := c.Query("user")
		if identity == "" && panelSecret != "" {
			if u, ok := resolveFromPanelSession(c.Context(), users, panelSecret, c.Cookies(PanelSessionCookie)); ok {
				c.Locals(localsUserKey, u)
				return c.Next()
			}
			return fiber.ErrNotFound
		}

		u, err := resolveUser(c.Context(), users, identity)
		if err != nil || !u.IsAdmin {
			return fiber.ErrNotFound
		}
		c.Locals(localsUserKey, u)
		return c.Next()
	}
}

// resolveFromPanelSession verifies a panel session cookie and loads the admin account it asserts, reporting false on
// any failure (missing cookie, bad/expired token, unknown or non-admin account).
func resolveFromPanelSession(ctx context.Context, users user.Repository, panelSecret, cookie string) (*user.User, bool) {
	if cookie == "" {
		return nil, false
	}
	adminUUID, err := VerifyPanelSession(panelSecret, cookie)
	if err != nil {
		return nil, false
	}
	u, err := users.GetByUUID(ctx, adminUUID)
	if err != nil || !u.IsAdmin {
		return nil, false
	}
	return u, true
}

// resolveUser parses identity and loads the matching account. A missing or malformed identity, or one with no matching
// account, yields errNoIdentity; any other repository error is returned as is.
func resolveUser(ctx context.Context, users user.Repository, identity string) (*user.User, error) {
	if identity == "" {
		return nil, errNoIdentity
	}
	id, err := uuid.Parse(identity)
	if err != nil {
		return nil, errNoIdentity
	}
	u, err := users.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, errNoIdentity
		}
		return nil, err
	}
	return u, nil
}

var errNoIdentity = errors.New("no identity resolved")

// UserFromContext returns the account resolved by RequireUser or RequireAdmin for this request, or nil if neither
// middleware ran.
func UserFromContext(c fiber.Ctx) *user.User {
	u, _ := c.Locals(localsUserKey).(*user.User)
	return u
}
