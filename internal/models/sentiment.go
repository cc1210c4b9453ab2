package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SentimentAnalysis holds the scoring result for a post. Exactly one row
// exists per post; re-analysis replaces the row under the same unique
// constraint.
type SentimentAnalysis struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PostID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ix_sentiment_analyses_post_id;column:post_id"`
	PositiveScore     float64        `gorm:"type:decimal(5,4);not null;column:positive_score"`
	NegativeScore     float64        `gorm:"type:decimal(5,4);not null;column:negative_score"`
	NeutralScore      float64        `gorm:"type:decimal(5,4);not null;column:neutral_score"`
	OverallSentiment  SentimentType  `gorm:"type:smallint;not null;index:ix_sentiment_analyses_overall_sentiment_analyzed_at,priority:1;column:overall_sentiment"`
	ConfidenceScore   float64        `gorm:"type:decimal(5,4);not null;index:ix_sentiment_analyses_confidence_score;column:confidence_score"`
	IsSarcastic       bool           `gorm:"not null;default:false;column:is_sarcastic"`
	SarcasmScore      float64        `gorm:"type:decimal(5,4);not null;default:0;column:sarcasm_score"`
	ModelVersion      string         `gorm:"type:varchar(50);not null;column:model_version"`
	AnalyzedAt        time.Time      `gorm:"not null;index:ix_sentiment_analyses_overall_sentiment_analyzed_at,priority:2;column:analyzed_at"`
	ProcessingTime    time.Duration  `gorm:"type:bigint;not null;column:processing_time"`
	ExtractedKeywords datatypes.JSON `gorm:"type:jsonb;column:extracted_keywords"`
	ExtractedEntities datatypes.JSON `gorm:"type:jsonb;column:extracted_entities"`
	DetailedScores    datatypes.JSON `gorm:"type:jsonb;column:detailed_scores"`

	// Relationship
	Post *SocialMediaPost `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for SentimentAnalysis
func (SentimentAnalysis) TableName() string {
	return "sentiment_analyses"
}

// ClampScores clamps all probability scores into [0,1]. Scores arrive from
// an external producer and are not trusted to be in range.
func (s *SentimentAnalysis) ClampScores() {
	s.PositiveScore = clamp01(s.PositiveScore)
	s.NegativeScore = clamp01(s.NegativeScore)
	s.NeutralScore = clamp01(s.NeutralScore)
	s.ConfidenceScore = clamp01(s.ConfidenceScore)
	s.SarcasmScore = clamp01(s.SarcasmScore)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
