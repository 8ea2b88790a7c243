package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/videotube/backend/internal/constants"
	"github.com/videotube/backend/internal/dto"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"

	apperrors "github.com/videotube/backend/internal/errors"
)

// AuthMiddleware is the single enforcement point for protected routes. It
// authenticates the access token and attaches the resolved user to the
// request context; no handler re-implements authentication.
type AuthMiddleware struct {
	tokens *service.TokenService
	users  service.UserStore
}

func NewAuthMiddleware(tokens *service.TokenService, users service.UserStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth validates the access token from the accessToken cookie or the
// Authorization header (cookie takes precedence) and loads the user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			logger.GetLogger().Warn("Missing access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := m.tokens.VerifyAccess(tokenString)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired access token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortWithError(c, apperrors.Wrap(apperrors.ErrInvalidAccessToken, err))
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.GetLogger().Warn("Access token references missing user",
				zap.Uint("user_id", claims.UserID),
				zap.Error(err),
			)
			abortWithError(c, apperrors.ErrInvalidAccessToken)
			return
		}

		// Only the public view goes into the context; password and refresh
		// token never leave this point.
		c.Set(constants.ContextUserIDKey, user.ID)
		c.Set(constants.ContextUserKey, dto.ToUserResponse(user))

		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if strings.HasPrefix(authHeader, constants.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, constants.BearerPrefix))
	}

	return ""
}

// CurrentUserID reads the authenticated user id set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// CurrentUser reads the authenticated user view set by RequireAuth.
func CurrentUser(c *gin.Context) (dto.UserResponse, bool) {
	value, exists := c.Get(constants.ContextUserKey)
	if !exists {
		return dto.UserResponse{}, false
	}
	user, ok := value.(dto.UserResponse)
	return user, ok
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
