package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/videotube/backend/internal/dto"
	"github.com/videotube/backend/internal/model"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/videotube/backend/internal/errors"
)

// ProfileCache caches the channel-profile aggregation. The redis client
// implements it; a nil cache disables caching.
type ProfileCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// UserService serves the profile reads and updates that sit behind the
// access guard.
type UserService struct {
	users      UserStore
	subs       SubscriptionStore
	cache      ProfileCache
	channelTTL time.Duration
}

func NewUserService(users UserStore, subs SubscriptionStore, cache ProfileCache, channelTTL time.Duration) *UserService {
	return &UserService{
		users:      users,
		subs:       subs,
		cache:      cache,
		channelTTL: channelTTL,
	}
}

// CurrentUser returns the public view of the authenticated user.
func (s *UserService) CurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	view := dto.ToUserResponse(user)
	return &view, nil
}

// UpdateAccount changes full name and email, returning the refreshed view.
func (s *UserService) UpdateAccount(ctx context.Context, userID uint, fullName, email string) (*dto.UserResponse, error) {
	if fullName == "" || email == "" {
		return nil, apperrors.Validation("fullname and email are required")
	}

	if err := s.users.UpdateAccount(ctx, userID, fullName, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	return s.CurrentUser(ctx, userID)
}

// UpdateAvatar stores the URL of a freshly uploaded avatar.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) (*dto.UserResponse, error) {
	if avatarURL == "" {
		return nil, apperrors.Validation("avatar file is required")
	}

	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	return s.CurrentUser(ctx, userID)
}

// UpdateCoverImage stores the URL of a freshly uploaded cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, coverURL string) (*dto.UserResponse, error) {
	if coverURL == "" {
		return nil, apperrors.Validation("cover image file is required")
	}

	if err := s.users.UpdateCoverImage(ctx, userID, coverURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	return s.CurrentUser(ctx, userID)
}

// ChannelProfile aggregates the channel page for a username: the public user
// view plus subscriber counts and whether the viewer subscribes. The
// viewer-independent part is cached briefly in redis.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error) {
	if username == "" {
		return nil, apperrors.Validation("username is required")
	}

	profile, err := s.channelProfileBase(ctx, username)
	if err != nil {
		return nil, err
	}

	isSubscribed, err := s.subs.IsSubscribed(ctx, viewerID, profile.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	profile.IsSubscribed = isSubscribed

	return profile, nil
}

func (s *UserService) channelProfileBase(ctx context.Context, username string) (*dto.ChannelProfileResponse, error) {
	cacheKey := fmt.Sprintf("channel:profile:%s", username)

	if s.cache != nil {
		var cached dto.ChannelProfileResponse
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("channel does not exist")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	subscribers, err := s.subs.CountSubscribers(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	subscribedTo, err := s.subs.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	profile := &dto.ChannelProfileResponse{
		UserResponse:      dto.ToUserResponse(user),
		SubscribersCount:  subscribers,
		SubscribedToCount: subscribedTo,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, profile, s.channelTTL); err != nil {
			// Cache failure degrades reads, never the response.
			logger.GetLogger().Warn("Failed to cache channel profile",
				zap.String("username", username),
				zap.Error(err),
			)
		}
	}

	return profile, nil
}

// ToggleSubscription subscribes the viewer to the named channel, or removes
// the subscription when one exists. Returns the resulting subscribed state.
func (s *UserService) ToggleSubscription(ctx context.Context, viewerID uint, username string) (bool, error) {
	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.NotFound("channel does not exist")
		}
		return false, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if channel.ID == viewerID {
		return false, apperrors.Validation("cannot subscribe to your own channel")
	}

	subscribed, err := s.subs.IsSubscribed(ctx, viewerID, channel.ID)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if subscribed {
		if err := s.subs.Unsubscribe(ctx, viewerID, channel.ID); err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternal, err)
		}
		logger.GetLogger().Info("Channel unsubscribed",
			zap.Uint("subscriber_id", viewerID),
			zap.Uint("channel_id", channel.ID),
		)
		return false, nil
	}

	if err := s.subs.Subscribe(ctx, viewerID, channel.ID); err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	logger.GetLogger().Info("Channel subscribed",
		zap.Uint("subscriber_id", viewerID),
		zap.Uint("channel_id", channel.ID),
	)
	return true, nil
}

// RecordWatch appends a video to the user's watch history.
func (s *UserService) RecordWatch(ctx context.Context, userID, videoID uint) error {
	if videoID == 0 {
		return apperrors.Validation("video id is required")
	}

	event := &model.WatchEvent{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now().UTC(),
	}
	if err := s.users.RecordWatchEvent(ctx, event); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return nil
}

// WatchHistory returns the user's watched videos, newest first.
func (s *UserService) WatchHistory(ctx context.Context, userID uint) ([]dto.WatchHistoryEntry, error) {
	events, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	entries := make([]dto.WatchHistoryEntry, 0, len(events))
	for _, event := range events {
		if event.Video == nil {
			continue
		}
		entry := dto.WatchHistoryEntry{
			VideoID:     event.VideoID,
			Title:       event.Video.Title,
			Description: event.Video.Description,
			Thumbnail:   event.Video.Thumbnail,
			Duration:    event.Video.Duration,
			Views:       event.Video.Views,
			WatchedAt:   event.WatchedAt,
		}
		if owner := event.Video.Owner; owner != nil {
			entry.Owner = dto.VideoOwnerResponse{
				ID:       owner.ID,
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
