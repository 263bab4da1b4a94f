package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/room"
)

// RoomHandler serves the voice room listing endpoint.
type RoomHandler struct {
	rooms room.Repository
	log   zerolog.Logger
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(rooms room.Repository, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, log: logger.With().Str("component", "api.rooms").Logger()}
}

type roomView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// List handles GET /api/rooms, mirroring original_source/handlers/api_handlers.py:get_voice_rooms.
func (h *RoomHandler) List(c fiber.Ctx) error {
	rooms, err := h.rooms.List(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to load rooms")
	}

	views := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, roomView{ID: r.ID, Name: r.Name})
	}

	return httputil.Success(c, fiber.Map{"rooms": views})
}
