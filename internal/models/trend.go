package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TrendAnalysis is one keyword's aggregated statistics over a bounded time
// window. Rows are append-only: the aggregation job always inserts new rows
// per (keyword, platform, window), never updates.
type TrendAnalysis struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Keyword           string         `gorm:"type:varchar(200);not null;index:ix_trend_analyses_keyword_platform_window,priority:1;column:keyword"`
	Platform          string         `gorm:"type:varchar(50);not null;index:ix_trend_analyses_keyword_platform_window,priority:2;index:ix_trend_analyses_platform_window,priority:1;column:platform"`
	TrendScore        float64        `gorm:"type:decimal(8,4);not null;index:ix_trend_analyses_trend_score_window,priority:1;column:trend_score"`
	MentionCount      int            `gorm:"not null;default:0;column:mention_count"`
	AvgSentimentScore float64        `gorm:"type:decimal(5,4);not null;column:avg_sentiment_score"`
	TimeWindowStart   time.Time      `gorm:"not null;index:ix_trend_analyses_time_window_start;index:ix_trend_analyses_keyword_platform_window,priority:3;index:ix_trend_analyses_trend_score_window,priority:2;index:ix_trend_analyses_platform_window,priority:2;column:time_window_start"`
	TimeWindowEnd     time.Time      `gorm:"not null;column:time_window_end"`
	WindowType        TimeWindow     `gorm:"type:integer;not null;column:window_type"`
	CreatedAt         time.Time      `gorm:"not null;column:created_at"`
	RelatedKeywords   datatypes.JSON `gorm:"type:jsonb;column:related_keywords"`
	GeographicData    datatypes.JSON `gorm:"type:jsonb;column:geographic_data"`

	// Relationships
	TrendKeywords []TrendKeyword `gorm:"foreignKey:TrendAnalysisID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for TrendAnalysis
func (TrendAnalysis) TableName() string {
	return "trend_analyses"
}

// TrendKeyword links a post to a trend window with a relevance score.
// Composite primary key (post, trend, keyword); cascade-deleted with either
// parent.
type TrendKeyword struct {
	PostID          uuid.UUID `gorm:"type:uuid;primaryKey;index:ix_trend_keywords_post_id_relevance,priority:1;column:post_id"`
	TrendAnalysisID uuid.UUID `gorm:"type:uuid;primaryKey;column:trend_analysis_id"`
	Keyword         string    `gorm:"type:varchar(200);primaryKey;index:ix_trend_keywords_keyword;column:keyword"`
	RelevanceScore  float64   `gorm:"type:decimal(5,4);not null;index:ix_trend_keywords_relevance_score;index:ix_trend_keywords_post_id_relevance,priority:2;column:relevance_score"`

	// Relationships
	Post          *SocialMediaPost `gorm:"foreignKey:PostID;references:ID"`
	TrendAnalysis *TrendAnalysis   `gorm:"foreignKey:TrendAnalysisID;references:ID"`
}

// TableName specifies the table name for TrendKeyword
func (TrendKeyword) TableName() string {
	return "trend_keywords"
}
