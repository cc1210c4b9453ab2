package analytics

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/sentimenthq/pulse/internal/models"
)

// PlatformTrend is one platform's share of a trend
type PlatformTrend struct {
	Platform     string  `json:"platform"`
	MentionCount int     `json:"mentionCount"`
	AvgSentiment float64 `json:"avgSentiment"`
}

// SentimentDistribution counts posts per polarity bucket
type SentimentDistribution struct {
	Positive int64 `json:"positive"`
	Neutral  int64 `json:"neutral"`
	Negative int64 `json:"negative"`
}

// Trend is one ranked keyword in the realtime snapshot
type Trend struct {
	Keyword               string                `json:"keyword"`
	TrendScore            float64               `json:"trendScore"`
	MentionCount          int                   `json:"mentionCount"`
	AvgSentimentScore     float64               `json:"avgSentimentScore"`
	Platforms             []PlatformTrend       `json:"platforms"`
	RelatedKeywords       []string              `json:"relatedKeywords"`
	SentimentDistribution SentimentDistribution `json:"sentimentDistribution"`
}

// TrendSnapshot is the realtime trends response
type TrendSnapshot struct {
	TimeWindow  models.TimeWindow `json:"timeWindow"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Trends      []Trend           `json:"trends"`
	Metadata    SnapshotMetadata  `json:"metadata"`
}

// SnapshotMetadata describes what fed the snapshot
type SnapshotMetadata struct {
	TotalPostsAnalyzed int64     `json:"totalPostsAnalyzed"`
	Platforms          []string  `json:"platforms"`
	NextUpdate         time.Time `json:"nextUpdate"`
}

// HistoryPoint is one bucket of a keyword's historical series
type HistoryPoint struct {
	Date         time.Time `json:"date"`
	MentionCount int64     `json:"mentionCount"`
	AvgSentiment float64   `json:"avgSentiment"`
	TrendScore   float64   `json:"trendScore"`
}

// KeywordHistory is the historical series for one keyword
type KeywordHistory struct {
	Keyword     string         `json:"keyword"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Granularity string         `json:"granularity"`
	Points      []HistoryPoint `json:"dataPoints"`
}

// SentimentSeriesPoint buckets sentiment counts over time
type SentimentSeriesPoint struct {
	Bucket   time.Time `json:"bucket"`
	Positive int64     `json:"positive"`
	Neutral  int64     `json:"neutral"`
	Negative int64     `json:"negative"`
}

// TrendQuery builds the read-side trend contracts
type TrendQuery struct {
	db *gorm.DB
}

// NewTrendQuery creates a trend query service
func NewTrendQuery(db *gorm.DB) *TrendQuery {
	return &TrendQuery{db: db}
}

const snapshotLimit = 10

// Snapshot returns the current ranked trends for a window, highest
// trendScore first
func (t *TrendQuery) Snapshot(ctx context.Context, window models.TimeWindow) (*TrendSnapshot, error) {
	now := time.Now().UTC()
	since := now.Add(-window.Duration())

	// Per-keyword rows within the window, ranked by score
	type keywordRow struct {
		Keyword      string
		TrendScore   float64
		MentionCount int
		AvgSentiment float64
	}
	var ranked []keywordRow
	err := t.db.WithContext(ctx).Model(&models.TrendAnalysis{}).
		Select("keyword, MAX(trend_score) AS trend_score, SUM(mention_count) AS mention_count, AVG(avg_sentiment_score) AS avg_sentiment").
		Where("window_type = ? AND time_window_start >= ?", window, since).
		Group("keyword").
		Order("trend_score DESC").
		Limit(snapshotLimit).
		Scan(&ranked).Error
	if err != nil {
		return nil, err
	}

	trends := make([]Trend, 0, len(ranked))
	platformSet := map[string]struct{}{}
	for _, row := range ranked {
		platforms, related, err := t.keywordDetail(ctx, row.Keyword, window, since)
		if err != nil {
			return nil, err
		}
		for _, p := range platforms {
			platformSet[p.Platform] = struct{}{}
		}
		dist, err := t.keywordDistribution(ctx, row.Keyword, since)
		if err != nil {
			return nil, err
		}
		trends = append(trends, Trend{
			Keyword:               row.Keyword,
			TrendScore:            row.TrendScore,
			MentionCount:          row.MentionCount,
			AvgSentimentScore:     row.AvgSentiment,
			Platforms:             platforms,
			RelatedKeywords:       related,
			SentimentDistribution: dist,
		})
	}

	var analyzed int64
	err = t.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Where("analyzed_at >= ?", since).
		Count(&analyzed).Error
	if err != nil {
		return nil, err
	}

	platforms := make([]string, 0, len(platformSet))
	for p := range platformSet {
		platforms = append(platforms, p)
	}

	return &TrendSnapshot{
		TimeWindow:  window,
		GeneratedAt: now,
		Trends:      trends,
		Metadata: SnapshotMetadata{
			TotalPostsAnalyzed: analyzed,
			Platforms:          platforms,
			NextUpdate:         now.Add(time.Minute),
		},
	}, nil
}

// keywordDetail collects the per-platform breakdown and the related-keyword
// union for one keyword within the window
func (t *TrendQuery) keywordDetail(ctx context.Context, keyword string, window models.TimeWindow, since time.Time) ([]PlatformTrend, []string, error) {
	var rows []models.TrendAnalysis
	err := t.db.WithContext(ctx).
		Where("keyword = ? AND window_type = ? AND time_window_start >= ?", keyword, window, since).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	byPlatform := map[string]*PlatformTrend{}
	relatedSet := map[string]struct{}{}
	for _, row := range rows {
		pt, ok := byPlatform[row.Platform]
		if !ok {
			pt = &PlatformTrend{Platform: row.Platform}
			byPlatform[row.Platform] = pt
		}
		pt.MentionCount += row.MentionCount
		pt.AvgSentiment = row.AvgSentimentScore

		if len(row.RelatedKeywords) > 0 {
			var related []string
			// Producer-defined blob; ignore rows that don't parse
			if err := json.Unmarshal(row.RelatedKeywords, &related); err == nil {
				for _, kw := range related {
					relatedSet[kw] = struct{}{}
				}
			}
		}
	}

	platforms := make([]PlatformTrend, 0, len(byPlatform))
	for _, pt := range byPlatform {
		platforms = append(platforms, *pt)
	}
	related := make([]string, 0, len(relatedSet))
	for kw := range relatedSet {
		related = append(related, kw)
	}
	return platforms, related, nil
}

// keywordDistribution counts analyzed posts per polarity for posts linked to
// the keyword
func (t *TrendQuery) keywordDistribution(ctx context.Context, keyword string, since time.Time) (SentimentDistribution, error) {
	type row struct {
		Sentiment models.SentimentType
		N         int64
	}
	var rows []row
	err := t.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select("sentiment_analyses.overall_sentiment AS sentiment, COUNT(*) AS n").
		Joins("JOIN trend_keywords ON trend_keywords.post_id = sentiment_analyses.post_id").
		Where("trend_keywords.keyword = ? AND sentiment_analyses.analyzed_at >= ?", keyword, since).
		Group("sentiment_analyses.overall_sentiment").
		Scan(&rows).Error
	if err != nil {
		return SentimentDistribution{}, err
	}
	var dist SentimentDistribution
	for _, r := range rows {
		switch {
		case r.Sentiment > models.SentimentNeutral:
			dist.Positive += r.N
		case r.Sentiment < models.SentimentNeutral:
			dist.Negative += r.N
		default:
			dist.Neutral += r.N
		}
	}
	return dist, nil
}

// History returns a keyword's aggregated series between two dates, bucketed
// by granularity ("hour", "day" or "week")
func (t *TrendQuery) History(ctx context.Context, keyword string, start, end time.Time, granularity string) (*KeywordHistory, error) {
	switch granularity {
	case "hour", "day", "week":
	default:
		granularity = "day"
	}

	type bucketRow struct {
		Bucket       time.Time
		MentionCount int64
		AvgSentiment float64
		TrendScore   float64
	}
	var rows []bucketRow
	err := t.db.WithContext(ctx).Model(&models.TrendAnalysis{}).
		Select("date_trunc(?, time_window_start) AS bucket, SUM(mention_count) AS mention_count, AVG(avg_sentiment_score) AS avg_sentiment, MAX(trend_score) AS trend_score", granularity).
		Where("keyword = ? AND time_window_start >= ? AND time_window_start < ?", keyword, start, end).
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]HistoryPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, HistoryPoint{
			Date:         r.Bucket,
			MentionCount: r.MentionCount,
			AvgSentiment: r.AvgSentiment,
			TrendScore:   r.TrendScore,
		})
	}

	return &KeywordHistory{
		Keyword:     keyword,
		StartDate:   start,
		EndDate:     end,
		Granularity: granularity,
		Points:      points,
	}, nil
}

// SentimentSeries buckets sentiment counts over the window, feeding the
// dashboard's sentiment-over-time chart
func (t *TrendQuery) SentimentSeries(ctx context.Context, window models.TimeWindow) ([]SentimentSeriesPoint, error) {
	since := time.Now().UTC().Add(-window.Duration())
	granularity := "hour"
	if window <= models.WindowOneHour {
		granularity = "minute"
	} else if window >= models.WindowSevenDays {
		granularity = "day"
	}

	type row struct {
		Bucket    time.Time
		Sentiment models.SentimentType
		N         int64
	}
	var rows []row
	err := t.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select("date_trunc(?, analyzed_at) AS bucket, overall_sentiment AS sentiment, COUNT(*) AS n", granularity).
		Where("analyzed_at >= ?", since).
		Group("bucket, overall_sentiment").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byBucket := map[time.Time]*SentimentSeriesPoint{}
	order := []time.Time{}
	for _, r := range rows {
		pt, ok := byBucket[r.Bucket]
		if !ok {
			pt = &SentimentSeriesPoint{Bucket: r.Bucket}
			byBucket[r.Bucket] = pt
			order = append(order, r.Bucket)
		}
		switch {
		case r.Sentiment > models.SentimentNeutral:
			pt.Positive += r.N
		case r.Sentiment < models.SentimentNeutral:
			pt.Negative += r.N
		default:
			pt.Neutral += r.N
		}
	}

	series := make([]SentimentSeriesPoint, 0, len(order))
	for _, b := range order {
		series = append(series, *byBucket[b])
	}
	return series, nil
}
