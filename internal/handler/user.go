package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/videotube/backend/internal/dto"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/response"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/pkg/logger"
	"github.com/videotube/backend/pkg/media"
	"go.uber.org/zap"

	apperrors "github.com/videotube/backend/internal/errors"
)

type UserHandler struct {
	userService *service.UserService
	uploader    media.Uploader
}

func NewUserHandler(userService *service.UserService, uploader media.Uploader) *UserHandler {
	return &UserHandler{
		userService: userService,
		uploader:    uploader,
	}
}

// CurrentUser handles GET /users/current-user. The guard already resolved
// the user, so this is a straight read from the request context.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	response.OK(c, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount handles PATCH /users/update-account.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		raiseBindingError(c, err)
		return
	}

	user, err := h.userService.UpdateAccount(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusOK, user, "account details updated successfully")
}

// UpdateAvatar handles PATCH /users/avatar (multipart).
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", "avatar updated successfully", h.userService.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /users/cover-image (multipart).
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", "cover image updated successfully", h.userService.UpdateCoverImage)
}

// ChannelProfile handles GET /users/c/:username.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	viewerID, _ := middleware.CurrentUserID(c)

	username := c.Param("username")
	profile, err := h.userService.ChannelProfile(c.Request.Context(), username, viewerID)
	if err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// ToggleSubscription handles POST /users/c/:username/subscribe.
func (h *UserHandler) ToggleSubscription(c *gin.Context) {
	viewerID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	subscribed, err := h.userService.ToggleSubscription(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		raise(c, err)
		return
	}

	message := "channel unsubscribed successfully"
	if subscribed {
		message = "channel subscribed successfully"
	}
	response.OK(c, http.StatusOK, gin.H{"subscribed": subscribed}, message)
}

// RecordWatch handles POST /users/history/:videoId.
func (h *UserHandler) RecordWatch(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	videoID, err := strconv.ParseUint(c.Param("videoId"), 10, 64)
	if err != nil {
		raise(c, apperrors.Validation("invalid video id"))
		return
	}

	if err := h.userService.RecordWatch(c.Request.Context(), userID, uint(videoID)); err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{}, "video added to watch history")
}

// WatchHistory handles GET /users/history.
func (h *UserHandler) WatchHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	history, err := h.userService.WatchHistory(c.Request.Context(), userID)
	if err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusOK, history, "watch history fetched successfully")
}

// updateImage uploads the named multipart file and applies the given
// profile update with its URL.
func (h *UserHandler) updateImage(
	c *gin.Context,
	field, message string,
	update func(ctx context.Context, userID uint, url string) (*dto.UserResponse, error),
) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		raise(c, apperrors.Validation(field+" file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		raise(c, apperrors.Wrap(apperrors.ErrInternal, err))
		return
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	result, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		logger.GetLogger().Error("Media upload failed",
			zap.String("field", field),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		raise(c, apperrors.Wrap(apperrors.Internal("error while uploading "+field), err))
		return
	}

	user, err := update(c.Request.Context(), userID, result.URL)
	if err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusOK, user, message)
}
