package model

import (
	"gorm.io/gorm"
)

// User is the credential record. Password always holds a bcrypt hash and is
// never serialized; RefreshToken holds at most the single most recently
// issued refresh token for the account.
type User struct {
	gorm.Model
	Username     string `gorm:"column:username;uniqueIndex;not null"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	FullName     string `gorm:"column:full_name;not null"`
	Password     string `gorm:"column:password;not null"`
	Avatar       string `gorm:"column:avatar;not null"`
	CoverImage   string `gorm:"column:cover_image"`
	RefreshToken string `gorm:"column:refresh_token;default:null"`

	WatchHistory []WatchEvent `gorm:"foreignKey:UserID"`
}

// Subscription links a subscriber to the channel (user) they follow.
type Subscription struct {
	gorm.Model
	SubscriberID uint `gorm:"column:subscriber_id;not null;uniqueIndex:idx_subscriptions_pair"`
	ChannelID    uint `gorm:"column:channel_id;not null;uniqueIndex:idx_subscriptions_pair"`
}
