package db

import (
	"fmt"

	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// partialIndexes holds index DDL that gorm tags cannot express: partial
// (filtered) indexes and the covering index with INCLUDE columns. Statements
// are idempotent.
var partialIndexes = []string{
	// Only analyzed posts; keeps the index small for processed-at scans
	`CREATE INDEX IF NOT EXISTS ix_social_media_posts_processed_at
	 ON social_media_posts (processed_at) WHERE processed_at IS NOT NULL`,

	// Timestamp scans that also need platform/status/user without heap hits
	`CREATE INDEX IF NOT EXISTS ix_social_media_posts_timestamp_include
	 ON social_media_posts (timestamp) INCLUDE (platform, status, user_id)`,

	// API keys are optional; uniqueness applies only when present
	`CREATE UNIQUE INDEX IF NOT EXISTS ix_users_api_key
	 ON users (api_key) WHERE api_key IS NOT NULL`,
}

// Migrate creates or updates the schema: gorm AutoMigrate for tables,
// columns, foreign keys and tag-declared indexes, then the raw DDL above.
func Migrate(database *DB) error {
	err := database.AutoMigrate(
		&models.SocialMediaPost{},
		&models.SentimentAnalysis{},
		&models.TrendAnalysis{},
		&models.TrendKeyword{},
		&models.ProcessingQueue{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	logging.GetLogger().Info("Database schema migrated")
	return nil
}
