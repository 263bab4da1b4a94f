package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
)

// UserHandler serves the identity lookup endpoint.
type UserHandler struct{}

// NewUserHandler creates a new user handler.
func NewUserHandler() *UserHandler { return &UserHandler{} }

// userView is the wire shape of a user, matching original_source/database.py's get_user_by_uuid row.
type userView struct {
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Get handles GET /api/user, returning {status:"ok", user:{...}} for the identity already resolved by
// auth.RequireUser, mirroring original_source/handlers/api_handlers.py:get_current_user.
func (h *UserHandler) Get(c fiber.Ctx) error {
	u := auth.UserFromContext(c)

	v := userView{UUID: u.UUID.String(), Username: u.Username, IsAdmin: u.IsAdmin}
	if u.AvatarURL != nil {
		v.AvatarURL = *u.AvatarURL
	}

	return httputil.Success(c, fiber.Map{"user": v})
}
