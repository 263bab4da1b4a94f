package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/turnauth"
)

// TurnHandler mints coturn REST API credentials.
type TurnHandler struct {
	secret string
	log    zerolog.Logger
}

// NewTurnHandler creates a new TURN credential handler.
func NewTurnHandler(secret string, logger zerolog.Logger) *TurnHandler {
	return &TurnHandler{secret: secret, log: logger.With().Str("component", "api.turn").Logger()}
}

// GetCredentials handles GET /api/get_turn_creds, returning {turn_username, turn_password} exactly as
// original_source/handlers/api_handlers.py:get_turn_creds does (note: unlike every other endpoint in this package,
// the original does not wrap this response in the {status:"ok", ...} envelope).
func (h *TurnHandler) GetCredentials(c fiber.Ctx) error {
	u := auth.UserFromContext(c)

	creds, err := turnauth.Mint(h.secret, u.UUID, time.Now())
	if err != nil {
		if errors.Is(err, turnauth.ErrSecretNotConfigured) {
			h.log.Error().Msg("TURN secret key is not configured")
		} else {
			h.log.Error().Err(err).Msg("failed to mint TURN credentials")
		}
		return httputil.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"turn_username": creds.Username,
		"turn_password": creds.Password,
	})
}
