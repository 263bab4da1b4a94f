package api

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/auth"
	"github.com/BungaaFACE/BungaaCord/internal/httputil"
	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// AvatarHandler serves the avatar upload endpoint.
type AvatarHandler struct {
	users        user.Repository
	storage      media.StorageProvider
	maxSizeBytes int64
	log          zerolog.Logger
}

// NewAvatarHandler creates a new avatar handler.
func NewAvatarHandler(users user.Repository, storage media.StorageProvider, maxSizeBytes int64, logger zerolog.Logger) *AvatarHandler {
	return &AvatarHandler{
		users:        users,
		storage:      storage,
		maxSizeBytes: maxSizeBytes,
		log:          logger.With().Str("component", "api.avatar").Logger(),
	}
}

// Upload handles POST /api/upload_avatar: a single jpg/jpeg/png image, resized to 256x256 with Lanczos resampling
// and stored as "<uuid>_avatar.jpg", matching original_source/handlers/api_handlers.py:upload_avatar's
// Image.resize((256, 256), Image.Resampling.LANCZOS) exactly (including its flatten-onto-white step for
// transparent PNGs, via media.ResizeAvatar).
func (h *AvatarHandler) Upload(c fiber.Ctx) error {
	u := auth.UserFromContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "No file provided")
	}

	if fh.Size > h.maxSizeBytes {
		return httputil.Fail(c, fiber.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", h.maxSizeBytes/(1024*1024)))
	}

	ext := media.ExtensionFromFilename(fh.Filename)
	if !media.IsAllowedAvatarExtension(ext) {
		return httputil.Fail(c, fiber.StatusBadRequest, "Unsupported file type. Only images are allowed.")
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded avatar")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to read uploaded file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read uploaded avatar")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to read uploaded file")
	}

	resized, err := media.ResizeAvatar(data)
	if err != nil {
		return httputil.Fail(c, fiber.StatusBadRequest, "Unable to decode image")
	}

	storageKey := fmt.Sprintf("%s_avatar.jpg", u.UUID.String())

	if err := h.storage.Put(c.Context(), storageKey, bytes.NewReader(resized)); err != nil {
		h.log.Error().Err(err).Msg("failed to write avatar")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to store avatar")
	}

	avatarURL := h.storage.URL(storageKey)
	if err := h.users.UpdateAvatarURL(c.Context(), u.UUID, avatarURL); err != nil {
		h.log.Error().Err(err).Msg("failed to update avatar URL")
		return httputil.Fail(c, fiber.StatusInternalServerError, "failed to update avatar")
	}

	return httputil.Success(c, fiber.Map{
		"message": "Avatar uploaded successfully",
		"avatar": fiber.Map{
			"url":           avatarURL,
			"filename":      storageKey,
			"original_name": fh.Filename,
		},
	})
}
