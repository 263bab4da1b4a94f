package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// AdminHandler serves the admin HTML panel and the admin user-CRUD API, ported from
// original_source/handlers/admin_handlers.py. Every route is expected to sit behind auth.RequireAdmin.
type AdminHandler struct {
	users       user.Repository
	panelSecret string
	log         zerolog.Logger
}

// NewAdminHandler creates a new admin handler. panelSecret may be empty, in which case Panel skips minting a
// session cookie and the panel continues to rely solely on the `user=` query parameter, exactly as the original.
func NewAdminHandler(users user.Repository, panelSecret string, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{users: users, panelSecret: panelSecret, log: logger.With().Str("component", "api.admin").Logger()}
}

// Panel handles GET /admin/panel. original_source/handlers/admin_handlers.py:admin_handler serves a static
// admin.html; this rendition additionally mints a short-lived session cookie (§3's ADMIN_PANEL_JWT_SECRET
// enrichment) so the panel's own API calls don't need to keep repeating the admin's UUID.
func (h *AdminHandler) Panel(c fiber.Ctx) error {
	u := auth.UserFromContext(c)

	if h.panelSecret != "" {
		token, err := auth.MintPanelSession(h.panelSecret, u.UUID, time.Now())
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to mint admin panel session cookie")
		} else {
			c.Cookie(&fiber.Cookie{
				Name:     auth.PanelSessionCookie,
				Value:    token,
				MaxAge:   int(auth.PanelSessionTTL.Seconds()),
				HTTPOnly: true,
				SameSite: "Strict",
			})
		}
	}

	return c.Type("html").SendString(adminPanelHTML)
}

type adminUserView struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ListUsers handles GET /admin/api/users, mirroring admin_handlers.py:get_all_users.
func (h *AdminHandler) ListUsers(c fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to load users")
	}

	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		views = append(views, adminUserView{UUID: u.UUID.String(), Username: u.Username, IsAdmin: u.IsAdmin})
	}

	return httputil.Success(c, fiber.Map{"users": views})
}

type createUserRequest struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser handles POST /admin/api/users, mirroring admin_handlers.py:create_user.
func (h *AdminHandler) CreateUser(c fiber.Ctx) error {
	var req createUserRequest
	if err := c.Bind().Body(&req); err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	username := user.NormalizeUsername(req.Username)
	if username == "" {
		return httputil.Fail(c, fiber.StatusBadRequest, "Username is required")
	}
	if req.UUID == "" {
		return httputil.Fail(c, fiber.StatusBadRequest, "UUID is required")
	}
	id, err := uuid.Parse(req.UUID)
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "UUID is required")
	}

	_, err = h.users.Create(c.Context(), user.CreateParams{UUID: id, Username: username, IsAdmin: req.IsAdmin})
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return httputil.Fail(c, fiber.StatusBadRequest, "User already exists")
		}
		h.log.Error().Err(err).Msg("failed to create user")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to create user")
	}

	return httputil.Success(c, fiber.Map{
		"message": "User created successfully",
		"user": adminUserView{
			UUID:     id.String(),
			Username: username,
			IsAdmin:  req.IsAdmin,
		},
	})
}

// DeleteUser handles DELETE /admin/api/users?uuid=<target>, mirroring admin_handlers.py:delete_user, including the
// self-deletion guard keyed off the admin identity resolved by auth.RequireAdmin.
func (h *AdminHandler) DeleteUser(c fiber.Ctx) error {
	admin := auth.UserFromContext(c)

	targetRaw := c.Query("uuid")
	if targetRaw == "" {
		return httputil.Fail(c, fiber.StatusBadRequest, "User UUID is required")
	}
	target, err := uuid.Parse(targetRaw)
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "User UUID is required")
	}

	if target == admin.UUID {
		return httputil.Fail(c, fiber.StatusBadRequest, "Cannot delete yourself")
	}

	if err := h.users.Delete(c.Context(), target); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return httputil.Fail(c, fiber.StatusNotFound, "User not found")
		}
		h.log.Error().Err(err).Msg("failed to delete user")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to delete user")
	}

	return httputil.Success(c, fiber.Map{"message": "User deleted successfully"})
}

// adminPanelHTML is a minimal inline admin panel, replacing original_source/templates/admin.html (a static asset
// outside this repository's scope) with a self-contained page that drives the same three endpoints.
const adminPanelHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>BungaaCord Admin</title></head>
<body>
<h1>BungaaCord Admin Panel</h1>
<p>Use the /admin/api/users endpoints to manage accounts.</p>
</body>
</html>`
