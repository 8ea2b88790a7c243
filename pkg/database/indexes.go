package database

import (
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateIndexes creates the composite indexes the hot read paths rely on.
// AutoMigrate covers the single-column unique indexes declared on the
// models; these are the aggregation-query indexes.
func CreateIndexes(db *gorm.DB) error {
	indexes := []string{
		// Channel profile counts
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id) WHERE deleted_at IS NULL;",
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_subscriber ON subscriptions(subscriber_id) WHERE deleted_at IS NULL;",

		// Watch history, newest first
		"CREATE INDEX IF NOT EXISTS idx_watch_events_user_time ON watch_events(user_id, watched_at DESC) WHERE deleted_at IS NULL;",

		// Channel listing of published videos
		"CREATE INDEX IF NOT EXISTS idx_videos_owner_published ON videos(owner_id) WHERE is_published = true AND deleted_at IS NULL;",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			// Keep going; a missing index degrades reads but must not block startup.
			logger.GetLogger().Warn("Failed to create index",
				zap.String("sql", indexSQL),
				zap.Error(err),
			)
		}
	}

	return nil
}
