package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Video is an uploaded video owned by a user. Metadata stores the media
// host's processing output (codec, dimensions, formats) as raw JSON.
type Video struct {
	gorm.Model
	OwnerID     uint           `gorm:"column:owner_id;not null;index"`
	Owner       *User          `gorm:"foreignKey:OwnerID"`
	VideoFile   string         `gorm:"column:video_file;not null"`
	Thumbnail   string         `gorm:"column:thumbnail;not null"`
	Title       string         `gorm:"column:title;not null"`
	Description string         `gorm:"column:description"`
	Duration    float64        `gorm:"column:duration"`
	Views       int64          `gorm:"column:views;default:0"`
	IsPublished bool           `gorm:"column:is_published;default:true"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
}

// WatchEvent is one entry in a user's watch history, ordered by WatchedAt.
type WatchEvent struct {
	gorm.Model
	UserID    uint      `gorm:"column:user_id;not null;index:idx_watch_events_user_time"`
	VideoID   uint      `gorm:"column:video_id;not null"`
	Video     *Video    `gorm:"foreignKey:VideoID"`
	WatchedAt time.Time `gorm:"column:watched_at;not null;index:idx_watch_events_user_time,sort:desc"`
}
