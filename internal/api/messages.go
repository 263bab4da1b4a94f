package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/message"
)

// MessageHandler serves chat message history.
type MessageHandler struct {
	messages message.Repository
	log      zerolog.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages message.Repository, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, log: logger.With().Str("component", "api.messages").Logger()}
}

// messageView is the wire shape of a single message, matching original_source/database.py:get_recent_messages's
// dict rows.
type messageView struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
	UserUUID  string `json:"user_uuid,omitempty"`
	Username  string `json:"username,omitempty"`
	CreatedAt string `json:"datetime"`
}

// List handles GET /api/messages?limit=N, returning {status:"ok", messages:[...], total:<count>}, taken verbatim
// from original_source/handlers/api_handlers.py:get_messages.
func (h *MessageHandler) List(c fiber.Ctx) error {
	rawLimit, _ := strconv.Atoi(c.Query("limit"))
	limit := message.ClampLimit(rawLimit)

	msgs, err := h.messages.List(c.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to load messages")
	}

	total, err := h.messages.Count(c.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count messages")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to load messages")
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		v := messageView{
			ID:        m.ID,
			Kind:      string(m.Kind),
			Content:   m.Content,
			CreatedAt: message.FormatTimestamp(m.CreatedAt),
		}
		if m.AuthorID != nil {
			v.UserUUID = m.AuthorID.String()
		}
		if m.AuthorUsername != nil {
			v.Username = *m.AuthorUsername
		}
		views = append(views, v)
	}

	return httputil.Success(c, fiber.Map{"messages": views, "total": total})
}
