package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultPriority is the medium queue priority. Lower numbers are more
// urgent.
const DefaultPriority = 5

// ProcessingQueue is the work-tracking row mediating between ingestion and
// sentiment analysis. Status follows Pending -> Processing -> {Completed,
// Failed}, with Failed resetting to Pending until retries are exhausted and
// Skipped reachable only from Pending.
type ProcessingQueue struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PostID       uuid.UUID      `gorm:"type:uuid;not null;index:ix_processing_queues_post_id;column:post_id"`
	Status       PostStatus     `gorm:"type:smallint;not null;default:0;index:ix_processing_queues_status_priority_created_at,priority:1;index:ix_processing_queues_status_retry_count,priority:1;column:status"`
	Priority     int            `gorm:"not null;default:5;index:ix_processing_queues_status_priority_created_at,priority:2;column:priority"`
	CreatedAt    time.Time      `gorm:"not null;index:ix_processing_queues_status_priority_created_at,priority:3;column:created_at"`
	ProcessedAt  sql.NullTime   `gorm:"column:processed_at"`
	RetryCount   int            `gorm:"not null;default:0;index:ix_processing_queues_status_retry_count,priority:2;column:retry_count"`
	ErrorMessage sql.NullString `gorm:"type:varchar(2000);column:error_message"`

	// Relationship
	Post *SocialMediaPost `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for ProcessingQueue
func (ProcessingQueue) TableName() string {
	return "processing_queues"
}

// Active reports whether the row still occupies the per-post active slot
func (q *ProcessingQueue) Active() bool {
	return q.Status == StatusPending || q.Status == StatusProcessing
}
