package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
)

// Fallback retry policy when the handle carries none
const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 250 * time.Millisecond
)

// Repository provides database access methods. Writes retry transient
// storage failures with the policy configured on the handle.
type Repository struct {
	db            *gorm.DB
	retryAttempts int
	retryDelay    time.Duration
}

// NewRepository creates a new repository over the shared handle
func NewRepository(database *DB) *Repository {
	attempts := database.retryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := database.retryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &Repository{
		db:            database.DB,
		retryAttempts: attempts,
		retryDelay:    delay,
	}
}

// DB exposes the underlying gorm handle for query builders
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// withRetry applies the configured transient-failure policy to a write
func (r *Repository) withRetry(ctx context.Context, op func() error) error {
	return WithRetry(ctx, r.retryAttempts, r.retryDelay, op)
}

// isUniqueViolation reports whether err is a unique-constraint failure
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID. Soft-deleted posts are still returned;
// exclusion applies to list queries only.
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialMediaPost, error) {
	var post models.SocialMediaPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySource retrieves a post by its external provenance pair
func (r *PostRepository) GetBySource(ctx context.Context, sourceID, platform string) (*models.SocialMediaPost, error) {
	var post models.SocialMediaPost
	err := r.db.WithContext(ctx).
		Where("source_id = ? AND platform = ?", sourceID, platform).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a new post. Duplicate (sourceId, platform) pairs surface
// as a conflict error.
func (r *PostRepository) Create(ctx context.Context, post *models.SocialMediaPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Language == "" {
		post.Language = "en"
	}
	err := r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(post).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("post already ingested for this (sourceId, platform)")
		}
		return err
	}
	return nil
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.SocialMediaPost) error {
	return r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Save(post).Error
	})
}

// SetStatus updates only the processing status of a post, stamping
// processed_at when the post reaches Completed
func (r *PostRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.PostStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == models.StatusCompleted {
		updates["processed_at"] = time.Now().UTC()
	}
	var affected int64
	err := r.withRetry(ctx, func() error {
		res := r.db.WithContext(ctx).Model(&models.SocialMediaPost{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

// SoftDelete flags a post deleted without removing dependent rows
func (r *PostRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.withRetry(ctx, func() error {
		res := r.db.WithContext(ctx).Model(&models.SocialMediaPost{}).
			Where("id = ?", id).Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

// HardDelete removes a post; sentiment, queue and trend-keyword rows go with
// it via cascade
func (r *PostRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Delete(&models.SocialMediaPost{}, "id = ?", id).Error
	})
}

// UnqueuedPending returns Pending posts on the platform with no active queue
// row, applying the ingestion trigger filters. Stickied posts are identified
// by the platform metadata blob.
func (r *PostRepository) UnqueuedPending(ctx context.Context, platform string, minUpvotes int, oldest time.Time, excludeStickied bool, limit int) ([]*models.SocialMediaPost, error) {
	q := r.db.WithContext(ctx).Model(&models.SocialMediaPost{}).
		Where("platform = ? AND status = ? AND is_deleted = ?", platform, models.StatusPending, false).
		Where("NOT EXISTS (SELECT 1 FROM processing_queues WHERE processing_queues.post_id = social_media_posts.id AND processing_queues.status IN ?)",
			[]models.PostStatus{models.StatusPending, models.StatusProcessing})

	if minUpvotes > 0 {
		q = q.Where("up_votes >= ?", minUpvotes)
	}
	if !oldest.IsZero() {
		q = q.Where("timestamp >= ?", oldest)
	}
	if excludeStickied {
		q = q.Where("(raw_metadata ->> 'stickied') IS DISTINCT FROM 'true'")
	}
	if limit <= 0 {
		limit = 500
	}

	var posts []*models.SocialMediaPost
	err := q.Order("created_at ASC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// LastIngestedByPlatform returns the newest created_at per platform
func (r *PostRepository) LastIngestedByPlatform(ctx context.Context) (map[string]time.Time, error) {
	type row struct {
		Platform string
		Last     time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.SocialMediaPost{}).
		Select("platform, MAX(created_at) AS last").
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	latest := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		latest[r.Platform] = r.Last
	}
	return latest, nil
}

// SentimentRepository provides sentiment-result database operations
type SentimentRepository struct {
	*Repository
}

// NewSentimentRepository creates a new sentiment repository
func NewSentimentRepository(repo *Repository) *SentimentRepository {
	return &SentimentRepository{Repository: repo}
}

// GetByPostID retrieves the analysis result for a post
func (r *SentimentRepository) GetByPostID(ctx context.Context, postID uuid.UUID) (*models.SentimentAnalysis, error) {
	var analysis models.SentimentAnalysis
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// Create persists an analysis result, enforcing the one-result-per-post
// invariant
func (r *SentimentRepository) Create(ctx context.Context, analysis *models.SentimentAnalysis) error {
	analysis.ClampScores()
	if err := analysis.Validate(); err != nil {
		return err
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now().UTC()
	}
	err := r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(analysis).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("analysis already exists for this post")
		}
		return err
	}
	return nil
}

// Replace deletes any existing result for the post and inserts the new one
// in a single transaction. Used by re-analysis.
func (r *SentimentRepository) Replace(ctx context.Context, analysis *models.SentimentAnalysis) error {
	analysis.ClampScores()
	if err := analysis.Validate(); err != nil {
		return err
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now().UTC()
	}
	return r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("post_id = ?", analysis.PostID).
				Delete(&models.SentimentAnalysis{}).Error; err != nil {
				return err
			}
			return tx.Create(analysis).Error
		})
	})
}

// Recent retrieves the most recent analysis results
func (r *SentimentRepository) Recent(ctx context.Context, limit int) ([]*models.SentimentAnalysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var results []*models.SentimentAnalysis
	err := r.db.WithContext(ctx).
		Order("analyzed_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TrendRepository provides trend-related database operations
type TrendRepository struct {
	*Repository
}

// NewTrendRepository creates a new trend repository
func NewTrendRepository(repo *Repository) *TrendRepository {
	return &TrendRepository{Repository: repo}
}

// GetByID retrieves a trend row by ID
func (r *TrendRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrendAnalysis, error) {
	var trend models.TrendAnalysis
	if err := r.db.WithContext(ctx).First(&trend, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trend, nil
}

// Create appends a trend row; trend rows are immutable once written
func (r *TrendRepository) Create(ctx context.Context, trend *models.TrendAnalysis) error {
	if err := trend.Validate(); err != nil {
		return err
	}
	if trend.ID == uuid.Nil {
		trend.ID = uuid.New()
	}
	if trend.CreatedAt.IsZero() {
		trend.CreatedAt = time.Now().UTC()
	}
	return r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(trend).Error
	})
}

// LinkKeyword records a post's relevance to a trend window
func (r *TrendRepository) LinkKeyword(ctx context.Context, link *models.TrendKeyword) error {
	if err := link.Validate(); err != nil {
		return err
	}
	err := r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(link).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("keyword link already exists")
		}
		return err
	}
	return nil
}

// KeywordsForPost retrieves keyword links for a post ordered by relevance
func (r *TrendRepository) KeywordsForPost(ctx context.Context, postID uuid.UUID) ([]*models.TrendKeyword, error) {
	var links []*models.TrendKeyword
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("relevance_score DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByAPIKey retrieves an active user by API key
func (r *UserRepository) GetByAPIKey(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("api_key = ? AND is_active = ?", key, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create persists a new user; duplicate email or API key is a conflict
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	err := r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("email or API key already registered")
		}
		return err
	}
	return nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Save(user).Error
	})
}

// IncrementAPICalls bumps today's call counter and reports whether the user
// is still under their daily limit
func (r *UserRepository) IncrementAPICalls(ctx context.Context, id uuid.UUID) (bool, error) {
	var affected int64
	err := r.withRetry(ctx, func() error {
		res := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND api_calls_today < daily_api_limit", id).
			UpdateColumn("api_calls_today", gorm.Expr("api_calls_today + 1"))
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ResetAPICallCounters zeroes every user's daily counter; run by the daily
// rollover job
func (r *UserRepository) ResetAPICallCounters(ctx context.Context) (int64, error) {
	var affected int64
	err := r.withRetry(ctx, func() error {
		res := r.db.WithContext(ctx).Model(&models.User{}).
			Where("api_calls_today > 0").
			UpdateColumn("api_calls_today", 0)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}
