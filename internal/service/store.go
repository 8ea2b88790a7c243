package service

import (
	"context"

	"github.com/videotube/backend/internal/model"
)

// UserStore is the credential-store surface the services depend on. The gorm
// UserRepository implements it; tests substitute an in-memory fake.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRefreshToken(ctx context.Context, id uint, token string) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateAccount(ctx context.Context, id uint, fullName, email string) error
	UpdateAvatar(ctx context.Context, id uint, avatarURL string) error
	UpdateCoverImage(ctx context.Context, id uint, coverURL string) error
	WatchHistory(ctx context.Context, userID uint) ([]model.WatchEvent, error)
	RecordWatchEvent(ctx context.Context, event *model.WatchEvent) error
}

// SubscriptionStore provides the subscription writes and the counts behind
// the channel profile aggregation.
type SubscriptionStore interface {
	CountSubscribers(ctx context.Context, channelID uint) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error)
	Subscribe(ctx context.Context, subscriberID, channelID uint) error
	Unsubscribe(ctx context.Context, subscriberID, channelID uint) error
}
