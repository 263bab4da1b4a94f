package api

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/message"
)

// UploadHandler serves the general media upload endpoint.
type UploadHandler struct {
	messages     message.Repository
	storage      media.StorageProvider
	maxSizeBytes int64
	maxMessages  int
	log          zerolog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(messages message.Repository, storage media.StorageProvider, maxSizeBytes int64, maxMessages int, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		messages:     messages,
		storage:      storage,
		maxSizeBytes: maxSizeBytes,
		maxMessages:  maxMessages,
		log:          logger.With().Str("component", "api.upload").Logger(),
	}
}

// Upload handles POST /api/upload: a multipart "file" field holding an image or video, stored on disk and recorded
// as a media-kind chat message, exactly as original_source/handlers/api_handlers.py:upload_media.
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	u := auth.UserFromContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "No file provided")
	}

	if fh.Size > h.maxSizeBytes {
		return httputil.Fail(c, fiber.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", h.maxSizeBytes/(1024*1024)))
	}

	ext := media.ExtensionFromFilename(fh.Filename)
	kind, ok := media.ClassifyExtension(ext)
	if !ok {
		return httputil.Fail(c, fiber.StatusBadRequest, "Unsupported file type")
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to read uploaded file")
	}
	defer func() { _ = f.Close() }()

	storageKey := fmt.Sprintf("%s_%s", uuid.New().String(), fh.Filename)
	if err := h.storage.Put(c.Context(), storageKey, f); err != nil {
		h.log.Error().Err(err).Msg("failed to write uploaded file")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to store uploaded file")
	}

	mediaURL := h.storage.URL(storageKey)

	authorID := u.UUID
	msg, evicted, err := h.messages.Create(c.Context(), message.CreateParams{
		Kind:     message.KindMedia,
		Content:  mediaURL,
		AuthorID: &authorID,
	}, h.maxMessages)
	if err != nil {
		_ = h.storage.Delete(c.Context(), storageKey)
		h.log.Error().Err(err).Msg("failed to persist media message")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to record uploaded file")
	}
	for _, evictedURL := range evicted {
		if key := media.KeyFromURL(evictedURL); key != storageKey {
			if delErr := h.storage.Delete(c.Context(), key); delErr != nil {
				h.log.Warn().Err(delErr).Str("key", key).Msg("failed to delete evicted media file")
			}
		}
	}

	return httputil.Success(c, fiber.Map{
		"message": "File uploaded successfully",
		"file": fiber.Map{
			"id":            msg.ID,
			"filename":      storageKey,
			"original_name": fh.Filename,
			"url":           mediaURL,
			"type":          string(kind),
			"size":          fh.Size,
			"user_uuid":     u.UUID.String(),
			"username":      u.Username,
			"datetime":      message.FormatTimestamp(msg.CreatedAt),
		},
	})
}
