package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/videotube/backend/config"
	"github.com/videotube/backend/internal/model"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"

	apperrors "github.com/videotube/backend/internal/errors"
)

// AccessClaims are carried by the short-lived access token.
type AccessClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by the refresh token. Only the user id; the
// token's real authority comes from matching the value stored on the user
// record.
type RefreshClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair is a freshly rotated access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues, verifies and rotates the signed token pair. Access
// and refresh tokens use distinct secrets and expiries.
type TokenService struct {
	cfg   config.JWTConfig
	users UserStore
}

func NewTokenService(cfg config.JWTConfig, users UserStore) *TokenService {
	return &TokenService{cfg: cfg, users: users}
}

// IssueAccessToken signs a short-lived token carrying the user's identity.
func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AccessSecret))
}

// IssueRefreshToken signs a long-lived token carrying only the user id.
func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.RefreshSecret))
}

// VerifyAccess validates signature and expiry of an access token.
func (s *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates signature and expiry of a refresh token.
func (s *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// Rotate loads the user, issues a fresh token pair and persists the new
// refresh token, overwriting any previous value so only the latest refresh
// token is live. The caller has already been authenticated, so every failure
// here is a server-side fault reported as an opaque internal error.
func (s *TokenService) Rotate(ctx context.Context, userID uint) (*TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.GetLogger().Error("Token rotation failed to load user",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(apperrors.ErrTokenRotation, err)
	}

	accessToken, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTokenRotation, err)
	}

	refreshToken, err := s.IssueRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTokenRotation, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		logger.GetLogger().Error("Token rotation failed to persist refresh token",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(apperrors.ErrTokenRotation, err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// AccessExpiry exposes the configured access-token lifetime for cookie
// max-age calculation.
func (s *TokenService) AccessExpiry() time.Duration {
	return s.cfg.AccessExpiry
}

// RefreshExpiry exposes the configured refresh-token lifetime.
func (s *TokenService) RefreshExpiry() time.Duration {
	return s.cfg.RefreshExpiry
}
