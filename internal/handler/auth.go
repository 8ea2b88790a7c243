package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/videotube/backend/internal/constants"
	"github.com/videotube/backend/internal/dto"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/response"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/pkg/logger"
	"github.com/videotube/backend/pkg/media"
	"go.uber.org/zap"

	apperrors "github.com/videotube/backend/internal/errors"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      *service.TokenService
	uploader    media.Uploader
}

func NewAuthHandler(authService *service.AuthService, tokens *service.TokenService, uploader media.Uploader) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		uploader:    uploader,
	}
}

// Register handles POST /users/register. The multipart form carries the
// text fields plus a required avatar file and an optional cover image; both
// are pushed to the media host before the user record is created.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBind(&req); err != nil {
		raiseBindingError(c, err)
		return
	}

	avatarURL, err := h.uploadFormFile(c, "avatar")
	if errors.Is(err, http.ErrMissingFile) {
		raise(c, apperrors.Validation("avatar file is required"))
		return
	}
	if err != nil {
		raise(c, apperrors.Wrap(apperrors.Internal("avatar file upload failed"), err))
		return
	}

	// Cover image is optional; a missing file is fine, a failed upload is not.
	coverURL, err := h.uploadFormFile(c, "coverImage")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		raise(c, apperrors.Wrap(apperrors.Internal("cover image upload failed"), err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Password:      req.Password,
		Username:      req.Username,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /users/login. Tokens are returned in the body and as
// httpOnly cookies so both browser and native clients can consume them.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		raiseBindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		raise(c, err)
		return
	}

	h.setTokenCookies(c, result.AccessToken, result.RefreshToken)
	response.OK(c, http.StatusOK, result, "user logged in successfully")
}

// Logout handles POST /users/logout (protected).
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		raise(c, err)
		return
	}

	h.clearTokenCookies(c)
	response.OK(c, http.StatusOK, gin.H{}, "user logged out")
}

// RefreshToken handles POST /users/refresh-token. The refresh token comes
// from the cookie or, for non-cookie clients, the request body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, _ := c.Cookie(constants.CookieRefreshToken)
	if presented == "" {
		var req dto.RefreshTokenRequest
		// Body is optional when the cookie is present, so bind errors are
		// ignored here; an absent token fails below as unauthorized.
		_ = c.ShouldBindJSON(&req)
		presented = req.RefreshToken
	}

	pair, err := h.authService.Refresh(c.Request.Context(), presented)
	if err != nil {
		raise(c, err)
		return
	}

	h.setTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	response.OK(c, http.StatusOK, pair, "access token refreshed")
}

// ChangePassword handles POST /users/change-password (protected).
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		raise(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		raiseBindingError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		raise(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{}, "password changed successfully")
}

// uploadFormFile reads the named multipart file and stores it on the media
// host, returning the public URL. http.ErrMissingFile passes through so
// callers can treat optional files differently.
func (h *AuthHandler) uploadFormFile(c *gin.Context, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	result, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		logger.GetLogger().Error("Media upload failed",
			zap.String("field", field),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return "", err
	}

	return result.URL, nil
}

// Both cookies are httpOnly + Secure + SameSite=Strict; the client never
// scripts against them.
func (h *AuthHandler) setTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.CookieAccessToken, accessToken, int(h.tokens.AccessExpiry().Seconds()), "/", "", true, true)
	c.SetCookie(constants.CookieRefreshToken, refreshToken, int(h.tokens.RefreshExpiry().Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", true, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", true, true)
}

// raise records the error for the top-level translator and stops the chain.
func raise(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func raiseBindingError(c *gin.Context, err error) {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		_ = c.Error(fieldErrors)
	} else {
		_ = c.Error(apperrors.Wrap(apperrors.Validation("invalid request body"), err))
	}
	c.Abort()
}
