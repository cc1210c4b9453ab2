package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
)

// DefaultMaxRetries bounds how many times a failed row resets to Pending
const DefaultMaxRetries = 3

// ErrEmptyQueue signals that no Pending row was available to claim
var ErrEmptyQueue = errors.New("queue is empty")

// Queue governs how posts move from ingestion to completed or failed
// analysis. All transitions are enforced here; the table itself carries no
// state-machine constraints.
type Queue struct {
	db         *gorm.DB
	maxRetries int
}

// New creates a queue over the given database handle
func New(db *gorm.DB, maxRetries int) *Queue {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Queue{db: db, maxRetries: maxRetries}
}

// CanTransition reports whether a row may move from one status to another.
// Pending may go to Processing or Skipped; Processing to Completed or
// Failed; Failed back to Pending (retry). Everything else is rejected.
func CanTransition(from, to models.PostStatus) bool {
	switch from {
	case models.StatusPending:
		return to == models.StatusProcessing || to == models.StatusSkipped
	case models.StatusProcessing:
		return to == models.StatusCompleted || to == models.StatusFailed
	case models.StatusFailed:
		return to == models.StatusPending
	default:
		return false
	}
}

// NormalizePriority substitutes the default for the negative "not provided"
// sentinel. Zero is a legal priority, the most urgent one.
func NormalizePriority(priority int) int {
	if priority < 0 {
		return models.DefaultPriority
	}
	return priority
}

// Enqueue inserts a Pending row for the post. At most one active (Pending or
// Processing) row may exist per post; a second enqueue while one is active
// fails with a conflict. Negative priority means "use the default".
func (q *Queue) Enqueue(ctx context.Context, postID uuid.UUID, priority int) (*models.ProcessingQueue, error) {
	priority = NormalizePriority(priority)
	entry := &models.ProcessingQueue{
		ID:        uuid.New(),
		PostID:    postID,
		Status:    models.StatusPending,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.ProcessingQueue{}).
			Where("post_id = ? AND status IN ?", postID,
				[]models.PostStatus{models.StatusPending, models.StatusProcessing}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.Conflict("an active queue entry already exists for this post")
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ClaimNext atomically takes the most urgent Pending row and moves it to
// Processing. Order is priority ascending (lower is more urgent), then
// created_at ascending. Safe under concurrent claimers: the row is selected
// FOR UPDATE SKIP LOCKED so two workers can never claim the same row.
// Returns ErrEmptyQueue when nothing is Pending.
func (q *Queue) ClaimNext(ctx context.Context) (*models.ProcessingQueue, error) {
	var claimed models.ProcessingQueue
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.StatusPending).
			Order("priority ASC, created_at ASC").
			First(&claimed).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyQueue
			}
			return err
		}
		claimed.Status = models.StatusProcessing
		return tx.Model(&claimed).Update("status", models.StatusProcessing).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

// MarkCompleted finishes a Processing row, stamping processed_at
func (q *Queue) MarkCompleted(ctx context.Context, queueID uuid.UUID) error {
	return q.transition(ctx, queueID, func(tx *gorm.DB, entry *models.ProcessingQueue) error {
		if !CanTransition(entry.Status, models.StatusCompleted) {
			return errs.InvalidTransition(
				fmt.Sprintf("cannot complete queue entry in status %s", entry.Status))
		}
		return tx.Model(entry).Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"processed_at": time.Now().UTC(),
		}).Error
	})
}

// MarkFailed records a failure on a Processing row. The retry counter
// increments on every failure; while it stays within the configured maximum
// the row resets to Pending for another attempt, after that Failed is
// terminal. The error message is truncated to the persisted column size.
func (q *Queue) MarkFailed(ctx context.Context, queueID uuid.UUID, cause string) error {
	return q.transition(ctx, queueID, func(tx *gorm.DB, entry *models.ProcessingQueue) error {
		if !CanTransition(entry.Status, models.StatusFailed) {
			return errs.InvalidTransition(
				fmt.Sprintf("cannot fail queue entry in status %s", entry.Status))
		}
		retries := entry.RetryCount + 1
		next := NextStatusAfterFailure(retries, q.maxRetries)
		updates := map[string]interface{}{
			"status":        next,
			"retry_count":   retries,
			"error_message": models.TruncateError(cause),
		}
		if next == models.StatusFailed {
			updates["processed_at"] = time.Now().UTC()
		}
		return tx.Model(entry).Updates(updates).Error
	})
}

// NextStatusAfterFailure decides whether a failure retries or terminates.
// retries is the count after incrementing for the current failure.
func NextStatusAfterFailure(retries, maxRetries int) models.PostStatus {
	if retries > maxRetries {
		return models.StatusFailed
	}
	return models.StatusPending
}

// MarkSkipped terminates a Pending row without processing, e.g. duplicate or
// filtered content
func (q *Queue) MarkSkipped(ctx context.Context, queueID uuid.UUID) error {
	return q.transition(ctx, queueID, func(tx *gorm.DB, entry *models.ProcessingQueue) error {
		if !CanTransition(entry.Status, models.StatusSkipped) {
			return errs.InvalidTransition(
				fmt.Sprintf("cannot skip queue entry in status %s", entry.Status))
		}
		return tx.Model(entry).Updates(map[string]interface{}{
			"status":       models.StatusSkipped,
			"processed_at": time.Now().UTC(),
		}).Error
	})
}

// transition loads the row under a row lock and applies fn inside one
// transaction so the status check and the update cannot interleave with a
// concurrent transition
func (q *Queue) transition(ctx context.Context, queueID uuid.UUID, fn func(tx *gorm.DB, entry *models.ProcessingQueue) error) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.ProcessingQueue
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ?", queueID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("queue entry not found")
			}
			return err
		}
		return fn(tx, &entry)
	})
}

// Depth returns the number of Pending rows, used for ingestion status and
// the queue-size alert
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&models.ProcessingQueue{}).
		Where("status = ?", models.StatusPending).
		Count(&n).Error
	return n, err
}

// DepthByPlatform returns Pending counts grouped by the owning post's
// platform
func (q *Queue) DepthByPlatform(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Platform string
		N        int64
	}
	var rows []row
	err := q.db.WithContext(ctx).Model(&models.ProcessingQueue{}).
		Select("social_media_posts.platform AS platform, COUNT(*) AS n").
		Joins("JOIN social_media_posts ON social_media_posts.id = processing_queues.post_id").
		Where("processing_queues.status = ?", models.StatusPending).
		Group("social_media_posts.platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	depths := make(map[string]int64, len(rows))
	for _, r := range rows {
		depths[r.Platform] = r.N
	}
	return depths, nil
}
