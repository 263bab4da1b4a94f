package signaling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/message"
)

// handleChatMessage implements the `chat_message` row of spec.md §4.2 and the chat relay behaviour of §4.6. Text
// content is sanitised before persistence and broadcast since the client renders it as rich text; messages are
// persisted before broadcast, aborting the broadcast on a persistence failure. Media messages are broadcast only,
// since the referenced file was already committed by the upload path.
func (h *Hub) handleChatMessage(client *Client, frame inboundFrame) {
	if frame.Content == "" {
		return
	}

	kind := message.Kind(frame.MessageType)
	if kind == "" {
		kind = message.KindText
	}

	content := frame.Content
	var datetime string

	if kind == message.KindMedia {
		datetime = message.FormatTimestamp(time.Now())
	} else {
		content = h.sanitizer.Sanitize(content)
		if content == "" {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		authorID, err := uuid.Parse(client.userUUID)
		if err != nil {
			h.log.Warn().Err(err).Str("user_uuid", client.userUUID).Msg("chat message from session with non-UUID identity")
			return
		}

		msg, evicted, err := h.messageRepo.Create(ctx, message.CreateParams{
			Kind:     message.KindText,
			Content:  content,
			AuthorID: &authorID,
		}, h.maxMessages)
		if err != nil {
			h.log.Error().Err(dispatchError(frameChatMessage, err)).Msg("failed to persist chat message, aborting broadcast")
			return
		}
		datetime = message.FormatTimestamp(msg.CreatedAt)

		h.cleanupEvictedMedia(ctx, evicted)
	}

	chatFrame, err := newChatMessageFrame(content, string(kind), client.userUUID, client.username, datetime)
	if err != nil {
		h.log.Error().Err(dispatchError(frameChatMessage, err)).Msg("failed to build chat_message frame")
		return
	}
	h.sendToAllExcept(nil, chatFrame)
}

// cleanupEvictedMedia unlinks the backing files of messages evicted by MAX_CHAT_MESSAGES, mirroring
// original_source/database.py's _delete_media_file. Failures are logged and otherwise ignored — a stray file on
// disk is preferable to blocking chat on a storage hiccup.
func (h *Hub) cleanupEvictedMedia(ctx context.Context, evictedURLs []string) {
	for _, url := range evictedURLs {
		key := media.KeyFromURL(url)
		if err := h.storage.Delete(ctx, key); err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("failed to delete evicted media file")
		}
	}
}
