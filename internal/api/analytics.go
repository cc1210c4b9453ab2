package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
)

// AnalyticsAPI serves the dashboard summary and report endpoints
type AnalyticsAPI struct {
	dashboard *analytics.DashboardQuery
	reports   *analytics.ReportQuery
}

// NewAnalyticsAPI creates the analytics handler group
func NewAnalyticsAPI(dashboard *analytics.DashboardQuery, reports *analytics.ReportQuery) *AnalyticsAPI {
	return &AnalyticsAPI{dashboard: dashboard, reports: reports}
}

// Dashboard handles GET /analytics/dashboard?timeRange=
func (a *AnalyticsAPI) Dashboard(c *gin.Context) {
	window, ok := models.ParseTimeWindow(c.DefaultQuery("timeRange", "24h"))
	if !ok {
		respondError(c, errs.Validation("unknown timeRange",
			errs.FieldDetail{Field: "timeRange", Message: "must be one of 5m, 15m, 1h, 6h, 24h, 7d"}))
		return
	}

	summary, err := a.dashboard.Summary(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SentimentSummaryReport handles GET /analytics/reports/sentiment-summary
func (a *AnalyticsAPI) SentimentSummaryReport(c *gin.Context) {
	start, end, err := parseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := a.reports.SentimentSummary(c.Request.Context(), start, end, c.DefaultQuery("groupBy", "day"))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.DefaultQuery("format", "json") == "csv" {
		raw, err := report.CSV()
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="sentiment-summary.csv"`)
		c.Data(http.StatusOK, "text/csv", raw)
		return
	}

	c.JSON(http.StatusOK, report)
}
