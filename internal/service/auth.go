package service

import (
	"context"
	"errors"
	"strings"

	"github.com/videotube/backend/internal/dto"
	"github.com/videotube/backend/internal/model"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/videotube/backend/internal/errors"
)

// RegisterInput carries the validated register form plus the URLs of the
// already-uploaded media files.
type RegisterInput struct {
	FullName      string
	Email         string
	Password      string
	Username      string
	AvatarURL     string
	CoverImageURL string
}

// AuthService orchestrates the credential store and the token service
// through the session lifecycle: anonymous -> authenticated -> rotated ->
// logged out.
type AuthService struct {
	users  UserStore
	tokens *TokenService
}

func NewAuthService(users UserStore, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new user. The avatar must already be uploaded; a user
// without a usable avatar is rejected before any write.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*dto.UserResponse, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)
	username := strings.ToLower(strings.TrimSpace(input.Username))

	if fullName == "" || email == "" || password == "" || username == "" {
		return nil, apperrors.Validation("all fields are required")
	}
	if input.AvatarURL == "" {
		return nil, apperrors.Validation("avatar file is required")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   hashedPassword,
		Avatar:     input.AvatarURL,
		CoverImage: input.CoverImageURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal("something went wrong while creating user"), err)
	}

	// Re-fetch to catch a silent write failure before claiming success.
	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal("something went wrong while creating user"), err)
	}

	view := dto.ToUserResponse(created)
	return &view, nil
}

// Login authenticates by username or email plus password, rotates the token
// pair and returns it together with the public user view.
func (s *AuthService) Login(ctx context.Context, username, email, password string) (*dto.LoginResponse, error) {
	if username == "" && email == "" {
		return nil, apperrors.Validation("username or email is required")
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if !CheckPassword(user.Password, password) {
		logger.GetLogger().Warn("Login failed: password mismatch",
			zap.Uint("user_id", user.ID),
		)
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.Rotate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return &dto.LoginResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token. The access token is not tracked
// server-side and simply expires.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, ""); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("User logged out", zap.Uint("user_id", userID))
	return nil
}

// Refresh exchanges a presented refresh token for a brand-new pair. The
// presented token must be structurally valid AND match the value currently
// stored on the user record; a superseded token is rejected even though its
// signature still verifies. All failures are reported as 401 so the response
// never reveals whether a user id exists.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*dto.TokenPairResponse, error) {
	if presented == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidRefresh, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidRefresh, err)
	}

	if user.RefreshToken == "" || presented != user.RefreshToken {
		logger.GetLogger().Warn("Refresh token reuse detected",
			zap.Uint("user_id", user.ID),
		)
		return nil, apperrors.ErrRefreshReused
	}

	pair, err := s.tokens.Rotate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// ChangePassword verifies the old password and stores a new hash. The
// existing refresh token stays valid; see the design notes.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.Validation("invalid new password")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if !CheckPassword(user.Password, oldPassword) {
		return apperrors.Validation("invalid current password")
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	return nil
}
