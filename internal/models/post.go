package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SocialMediaPost represents a single ingested social-media item
type SocialMediaPost struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Content      string         `gorm:"type:varchar(4000);not null;column:content"`
	Platform     string         `gorm:"type:varchar(50);not null;uniqueIndex:ix_social_media_posts_source_id_platform,priority:2;index:ix_social_media_posts_platform_timestamp,priority:1;column:platform"`
	UserID       string         `gorm:"type:varchar(100);not null;column:user_id"`
	UserName     string         `gorm:"type:varchar(255);column:user_name"`
	Timestamp    time.Time      `gorm:"not null;index:ix_social_media_posts_platform_timestamp,priority:2;column:timestamp"`
	CreatedAt    time.Time      `gorm:"not null;index:ix_social_media_posts_status_created_at,priority:2;column:created_at"`
	ProcessedAt  sql.NullTime   `gorm:"column:processed_at"`
	Status       PostStatus     `gorm:"type:smallint;not null;default:0;index:ix_social_media_posts_status_created_at,priority:1;column:status"`
	SourceURL    sql.NullString `gorm:"type:varchar(2000);column:source_url"`
	SourceID     sql.NullString `gorm:"type:varchar(100);uniqueIndex:ix_social_media_posts_source_id_platform,priority:1;column:source_id"`
	UpVotes      int            `gorm:"not null;default:0;column:up_votes"`
	DownVotes    int            `gorm:"not null;default:0;column:down_votes"`
	CommentCount int            `gorm:"not null;default:0;column:comment_count"`
	Language     string         `gorm:"type:varchar(10);not null;default:'en';column:language"`
	RawMetadata  datatypes.JSON `gorm:"type:jsonb;column:raw_metadata"`
	IsDeleted    bool           `gorm:"not null;default:false;column:is_deleted"`

	// Relationships
	SentimentAnalysis *SentimentAnalysis `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	TrendKeywords     []TrendKeyword     `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for SocialMediaPost
func (SocialMediaPost) TableName() string {
	return "social_media_posts"
}
