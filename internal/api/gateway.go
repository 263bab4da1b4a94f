package api

import (
	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/signaling"
)

// GatewayHandler serves the WebSocket upgrade endpoint for the signaling hub.
type GatewayHandler struct {
	hub *signaling.Hub
}

// NewGatewayHandler creates a new gateway handler.
func NewGatewayHandler(hub *signaling.Hub) *GatewayHandler {
	return &GatewayHandler{hub: hub}
}

// Upgrade handles GET /ws. Identity has already been resolved and stored in Locals by auth.RequireUser; original
// server.py's websocket_handler instead reads the user record directly inside the handler, which this rendition
// folds into the shared middleware so /ws gets the same 404-on-unknown-identity guarantee as the rest of the API.
func (h *GatewayHandler) Upgrade(c fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	u := auth.UserFromContext(c)
	userUUID := u.UUID.String()
	username := u.Username

	return websocket.New(func(conn *websocket.Conn) {
		h.hub.ServeWebSocket(conn.Conn, userUUID, username)
	})(c)
}
