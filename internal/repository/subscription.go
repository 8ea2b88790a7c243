package repository

import (
	"context"

	"github.com/videotube/backend/internal/model"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CountSubscribers counts users subscribed to the channel.
func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

// CountSubscribedTo counts channels the user is subscribed to.
func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	return count, err
}

// IsSubscribed reports whether subscriber follows the channel.
func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	if subscriberID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}

// Subscribe creates the subscription if it does not exist yet.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, subscriberID, channelID uint) error {
	sub := model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	return r.db.WithContext(ctx).FirstOrCreate(&sub, sub).Error
}

// Unsubscribe removes the subscription; removing a missing one is a no-op.
func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, channelID uint) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&model.Subscription{}).Error
}
