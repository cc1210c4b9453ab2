package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/sentimenthq/pulse/internal/models"
)

// ReportRow is one group of the exportable sentiment summary
type ReportRow struct {
	Group         string  `json:"group"`
	Analyzed      int64   `json:"analyzed"`
	Positive      int64   `json:"positive"`
	Neutral       int64   `json:"neutral"`
	Negative      int64   `json:"negative"`
	AvgConfidence float64 `json:"avgConfidence"`
}

// SentimentReport is the exportable sentiment-summary report
type SentimentReport struct {
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	GroupBy   string      `json:"groupBy"`
	Rows      []ReportRow `json:"rows"`
}

// ReportQuery builds exportable reports
type ReportQuery struct {
	db *gorm.DB
}

// NewReportQuery creates a report query service
func NewReportQuery(db *gorm.DB) *ReportQuery {
	return &ReportQuery{db: db}
}

// SentimentSummary groups analyzed posts between two dates by "day",
// "week" or "platform"
func (r *ReportQuery) SentimentSummary(ctx context.Context, start, end time.Time, groupBy string) (*SentimentReport, error) {
	var groupExpr string
	switch groupBy {
	case "platform":
		groupExpr = "social_media_posts.platform"
	case "week":
		groupExpr = "to_char(date_trunc('week', sentiment_analyses.analyzed_at), 'YYYY-MM-DD')"
	default:
		groupBy = "day"
		groupExpr = "to_char(date_trunc('day', sentiment_analyses.analyzed_at), 'YYYY-MM-DD')"
	}

	type row struct {
		Grp       string
		Sentiment models.SentimentType
		N         int64
		Conf      float64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.SentimentAnalysis{}).
		Select(groupExpr+" AS grp, overall_sentiment AS sentiment, COUNT(*) AS n, AVG(confidence_score) AS conf").
		Joins("JOIN social_media_posts ON social_media_posts.id = sentiment_analyses.post_id").
		Where("sentiment_analyses.analyzed_at >= ? AND sentiment_analyses.analyzed_at < ?", start, end).
		Group("grp, overall_sentiment").
		Order("grp ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byGroup := map[string]*ReportRow{}
	order := []string{}
	for _, row := range rows {
		rr, ok := byGroup[row.Grp]
		if !ok {
			rr = &ReportRow{Group: row.Grp}
			byGroup[row.Grp] = rr
			order = append(order, row.Grp)
		}
		rr.Analyzed += row.N
		switch {
		case row.Sentiment > models.SentimentNeutral:
			rr.Positive += row.N
		case row.Sentiment < models.SentimentNeutral:
			rr.Negative += row.N
		default:
			rr.Neutral += row.N
		}
		// Weighted running average across sentiment buckets
		rr.AvgConfidence += row.Conf * float64(row.N)
	}

	report := &SentimentReport{StartDate: start, EndDate: end, GroupBy: groupBy}
	for _, g := range order {
		rr := byGroup[g]
		if rr.Analyzed > 0 {
			rr.AvgConfidence /= float64(rr.Analyzed)
		}
		report.Rows = append(report.Rows, *rr)
	}
	return report, nil
}

// CSV renders the report in CSV form for the format=csv export
func (r *SentimentReport) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"group", "analyzed", "positive", "neutral", "negative", "avg_confidence"}); err != nil {
		return nil, err
	}
	for _, row := range r.Rows {
		record := []string{
			row.Group,
			strconv.FormatInt(row.Analyzed, 10),
			strconv.FormatInt(row.Positive, 10),
			strconv.FormatInt(row.Neutral, 10),
			strconv.FormatInt(row.Negative, 10),
			fmt.Sprintf("%.4f", row.AvgConfidence),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
