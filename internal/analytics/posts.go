package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sentimenthq/pulse/internal/models"
)

// PostFilter narrows the paginated post list. Sentiment groups the five
// polarity values into the dashboard's three buckets: "positive" matches
// Positive and VeryPositive, "negative" matches Negative and VeryNegative,
// "neutral" matches Neutral only.
type PostFilter struct {
	Page          int
	PageSize      int
	Platform      string
	Sentiment     string
	FromDate      *time.Time
	ToDate        *time.Time
	Query         string
	SortAscending bool
}

// PostPage is one page of the post list plus the pagination envelope
type PostPage struct {
	Items []*models.SocialMediaPost `json:"items"`
	PageInfo
}

// PostQuery builds the read-side post list
type PostQuery struct {
	db *gorm.DB
}

// NewPostQuery creates a post query service
func NewPostQuery(db *gorm.DB) *PostQuery {
	return &PostQuery{db: db}
}

// List returns a filtered, paginated post list. Soft-deleted posts are
// always excluded; default order is most recent timestamp first.
func (p *PostQuery) List(ctx context.Context, filter PostFilter) (*PostPage, error) {
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	q := p.db.WithContext(ctx).Model(&models.SocialMediaPost{}).
		Where("is_deleted = ?", false)

	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.FromDate != nil {
		q = q.Where("timestamp >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("timestamp <= ?", *filter.ToDate)
	}
	if filter.Query != "" {
		q = q.Where("content ILIKE ?", "%"+filter.Query+"%")
	}
	if filter.Sentiment != "" {
		q = q.Joins("JOIN sentiment_analyses ON sentiment_analyses.post_id = social_media_posts.id")
		switch filter.Sentiment {
		case "positive":
			q = q.Where("sentiment_analyses.overall_sentiment > ?", models.SentimentNeutral)
		case "negative":
			q = q.Where("sentiment_analyses.overall_sentiment < ?", models.SentimentNeutral)
		default:
			q = q.Where("sentiment_analyses.overall_sentiment = ?", models.SentimentNeutral)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	order := "timestamp DESC"
	if filter.SortAscending {
		order = "timestamp ASC"
	}

	var items []*models.SocialMediaPost
	err := q.Preload("SentimentAnalysis").
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Items:    items,
		PageInfo: NewPageInfo(total, page, pageSize),
	}, nil
}
