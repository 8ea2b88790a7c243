package dto

import "time"

// ChannelProfileResponse is the channel page aggregation: the public user
// view plus subscription counts relative to the viewer.
type ChannelProfileResponse struct {
	UserResponse
	SubscribersCount  int64 `json:"subscribersCount"`
	SubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

type VideoOwnerResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

type WatchHistoryEntry struct {
	VideoID     uint               `json:"videoId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Thumbnail   string             `json:"thumbnail"`
	Duration    float64            `json:"duration"`
	Views       int64              `json:"views"`
	Owner       VideoOwnerResponse `json:"owner"`
	WatchedAt   time.Time          `json:"watchedAt"`
}
