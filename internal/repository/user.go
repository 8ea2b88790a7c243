package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/videotube/backend/internal/model"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	result := r.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.GetLogger().Error("Failed to get user by ID",
				zap.Uint("user_id", id),
				zap.Error(result.Error),
			)
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetByUsernameOrEmail finds a user matching either identifier. Username
// comparison is case-insensitive because usernames are stored lowercased.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var user model.User
	query := r.db.WithContext(ctx)

	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", strings.ToLower(username), email)
	case username != "":
		query = query.Where("username = ?", strings.ToLower(username))
	default:
		query = query.Where("email = ?", email)
	}

	result := query.First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// GetByUsername finds a user by the lowercased username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	result := r.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether any user already holds the
// username (case-insensitive) or the email (case-sensitive).
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", strings.ToLower(username), email).
		Count(&count)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to check user existence",
			zap.String("username", username),
			zap.Error(result.Error),
		)
		return false, result.Error
	}
	return count > 0, nil
}

// Create persists a new user. The caller supplies an already-hashed
// password and a lowercased username.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to create user",
			zap.String("username", user.Username),
			zap.Error(result.Error),
		)
		return result.Error
	}

	logger.GetLogger().Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// UpdateRefreshToken overwrites the stored refresh token. An empty token
// clears the column, revoking the session.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	var value any
	if token != "" {
		value = token
	}

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", value)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update refresh token",
			zap.Uint("user_id", id),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password", hashedPassword)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update password",
			zap.Uint("user_id", id),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.GetLogger().Info("Password updated", zap.Uint("user_id", id))
	return nil
}

// UpdateAccount updates the mutable profile fields.
func (r *UserRepository) UpdateAccount(ctx context.Context, id uint, fullName, email string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"full_name": fullName,
			"email":     email,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uint, avatarURL string) error {
	return r.updateColumn(ctx, id, "avatar", avatarURL)
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id uint, coverURL string) error {
	return r.updateColumn(ctx, id, "cover_image", coverURL)
}

func (r *UserRepository) updateColumn(ctx context.Context, id uint, column, value string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to update user column",
			zap.Uint("user_id", id),
			zap.String("column", column),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WatchHistory returns the user's watch events newest first, with the video
// and its owner preloaded.
func (r *UserRepository) WatchHistory(ctx context.Context, userID uint) ([]model.WatchEvent, error) {
	var events []model.WatchEvent
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Preload("Video").
		Preload("Video.Owner").
		Find(&events)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to load watch history",
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}
	return events, nil
}

// RecordWatchEvent appends a watch-history entry.
func (r *UserRepository) RecordWatchEvent(ctx context.Context, event *model.WatchEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
