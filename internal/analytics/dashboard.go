package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sentimenthq/pulse/internal/models"
)

// PlatformCount is one platform's share of processed posts
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

// PerformanceMetrics summarizes pipeline health over the range
type PerformanceMetrics struct {
	AvgResponseTime float64 `json:"avgResponseTime"` // milliseconds
	ErrorRate       float64 `json:"errorRate"`       // failed / finished
	Throughput      float64 `json:"throughput"`      // completed per minute
}

// DashboardSummary aggregates everything the dashboard landing page shows
type DashboardSummary struct {
	TimeRange             models.TimeWindow     `json:"timeRange"`
	GeneratedAt           time.Time             `json:"generatedAt"`
	TotalPostsProcessed   int64                 `json:"totalPostsProcessed"`
	AvgProcessingTime     float64               `json:"avgProcessingTime"` // milliseconds
	SentimentDistribution SentimentDistribution `json:"sentimentDistribution"`
	PlatformBreakdown     []PlatformCount       `json:"platformBreakdown"`
	TopTrends             []Trend               `json:"topTrends"`
	PerformanceMetrics    PerformanceMetrics    `json:"performanceMetrics"`
}

// DashboardQuery builds the dashboard summary contract
type DashboardQuery struct {
	db     *gorm.DB
	trends *TrendQuery
}

// NewDashboardQuery creates a dashboard query service
func NewDashboardQuery(db *gorm.DB) *DashboardQuery {
	return &DashboardQuery{db: db, trends: NewTrendQuery(db)}
}

// Summary aggregates pipeline statistics over the requested range
func (d *DashboardQuery) Summary(ctx context.Context, window models.TimeWindow) (*DashboardSummary, error) {
	now := time.Now().UTC()
	since := now.Add(-window.Duration())

	summary := &DashboardSummary{
		TimeRange:   window,
		GeneratedAt: now,
	}

	// Completed posts and average processing time
	type procRow struct {
		N   int64
		Avg float64
	}
	var proc procRow
	err := d.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select("COUNT(*) AS n, COALESCE(AVG(processing_time), 0) AS avg").
		Where("analyzed_at >= ?", since).
		Scan(&proc).Error
	if err != nil {
		return nil, err
	}
	summary.TotalPostsProcessed = proc.N
	// processing_time is stored as nanoseconds (time.Duration)
	summary.AvgProcessingTime = proc.Avg / float64(time.Millisecond)

	// Sentiment distribution
	type distRow struct {
		Sentiment models.SentimentType
		N         int64
	}
	var distRows []distRow
	err = d.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select("overall_sentiment AS sentiment, COUNT(*) AS n").
		Where("analyzed_at >= ?", since).
		Group("overall_sentiment").
		Scan(&distRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range distRows {
		switch {
		case r.Sentiment > models.SentimentNeutral:
			summary.SentimentDistribution.Positive += r.N
		case r.Sentiment < models.SentimentNeutral:
			summary.SentimentDistribution.Negative += r.N
		default:
			summary.SentimentDistribution.Neutral += r.N
		}
	}

	// Platform breakdown of posts ingested in range
	var platformRows []PlatformCount
	err = d.db.WithContext(ctx).Model(&models.SocialMediaPost{}).
		Select("platform, COUNT(*) AS count").
		Where("created_at >= ? AND is_deleted = ?", since, false).
		Group("platform").
		Order("count DESC").
		Scan(&platformRows).Error
	if err != nil {
		return nil, err
	}
	summary.PlatformBreakdown = platformRows

	// Top trends reuse the realtime snapshot
	snapshot, err := d.trends.Snapshot(ctx, window)
	if err != nil {
		return nil, err
	}
	top := snapshot.Trends
	if len(top) > 5 {
		top = top[:5]
	}
	summary.TopTrends = top

	// Performance from queue outcomes in range
	type queueRow struct {
		Status models.PostStatus
		N      int64
	}
	var queueRows []queueRow
	err = d.db.WithContext(ctx).Model(&models.ProcessingQueue{}).
		Select("status, COUNT(*) AS n").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&queueRows).Error
	if err != nil {
		return nil, err
	}
	var completed, failed int64
	for _, r := range queueRows {
		switch r.Status {
		case models.StatusCompleted:
			completed = r.N
		case models.StatusFailed:
			failed = r.N
		}
	}
	finished := completed + failed
	metrics := PerformanceMetrics{AvgResponseTime: summary.AvgProcessingTime}
	if finished > 0 {
		metrics.ErrorRate = float64(failed) / float64(finished)
	}
	minutes := window.Duration().Minutes()
	if minutes > 0 {
		metrics.Throughput = float64(completed) / minutes
	}
	summary.PerformanceMetrics = metrics

	return summary, nil
}
