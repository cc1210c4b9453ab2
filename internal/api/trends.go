package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/cache"
	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
)

// snapshotTTL bounds how stale a cached realtime snapshot may get;
// historyTTL does the same for keyword history, which moves much slower
const (
	snapshotTTL = time.Minute
	historyTTL  = 5 * time.Minute
)

// TrendsAPI serves the realtime and historical trend endpoints
type TrendsAPI struct {
	trends *analytics.TrendQuery
	cache  *cache.Cache
}

// NewTrendsAPI creates the trends handler group
func NewTrendsAPI(trends *analytics.TrendQuery, redisCache *cache.Cache) *TrendsAPI {
	return &TrendsAPI{trends: trends, cache: redisCache}
}

// Realtime handles GET /trends/realtime?timeWindow=. Snapshots are cached
// per window for a minute to keep dashboard polling cheap.
func (t *TrendsAPI) Realtime(c *gin.Context) {
	windowParam := c.DefaultQuery("timeWindow", "1h")
	window, ok := models.ParseTimeWindow(windowParam)
	if !ok {
		respondError(c, errs.Validation("unknown timeWindow",
			errs.FieldDetail{Field: "timeWindow", Message: "must be one of 5m, 15m, 1h, 6h, 24h, 7d"}))
		return
	}

	ctx := c.Request.Context()
	key := cache.SnapshotKey(windowParam)

	var cached analytics.TrendSnapshot
	if err := t.cache.GetJSON(ctx, key, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	} else if err != redis.Nil && err != cache.ErrCacheDisabled {
		// Cache trouble should not take the endpoint down
		logComponentWarn("trends", "snapshot cache read failed", err)
	}

	snapshot, err := t.trends.Snapshot(ctx, window)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := t.cache.SetJSON(ctx, key, snapshot, snapshotTTL); err != nil && err != cache.ErrCacheDisabled {
		logComponentWarn("trends", "snapshot cache write failed", err)
	}

	c.JSON(http.StatusOK, snapshot)
}

// KeywordHistory handles GET /trends/keyword/:keyword/history
func (t *TrendsAPI) KeywordHistory(c *gin.Context) {
	keyword := c.Param("keyword")
	if keyword == "" || len(keyword) > models.MaxKeywordLen {
		respondError(c, errs.Validation("invalid keyword",
			errs.FieldDetail{Field: "keyword", Message: "required, at most 200 characters"}))
		return
	}

	start, end, err := parseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	granularity := c.DefaultQuery("granularity", "day")

	ctx := c.Request.Context()
	key := "trends:history:" + cache.HashKey(keyword,
		start.Format(time.RFC3339), end.Format(time.RFC3339), granularity)

	var cached analytics.KeywordHistory
	if err := t.cache.GetJSON(ctx, key, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	} else if err != redis.Nil && err != cache.ErrCacheDisabled {
		logComponentWarn("trends", "history cache read failed", err)
	}

	history, err := t.trends.History(ctx, keyword, start, end, granularity)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := t.cache.SetJSON(ctx, key, history, historyTTL); err != nil && err != cache.ErrCacheDisabled {
		logComponentWarn("trends", "history cache write failed", err)
	}

	c.JSON(http.StatusOK, history)
}

// parseDateRange parses RFC3339 or date-only bounds, defaulting to the last
// seven days
func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -7)
	end := now

	var err error
	if startRaw != "" {
		if start, err = parseDate(startRaw); err != nil {
			return time.Time{}, time.Time{}, errs.Validation("invalid startDate",
				errs.FieldDetail{Field: "startDate", Message: "must be RFC3339 or YYYY-MM-DD"})
		}
	}
	if endRaw != "" {
		if end, err = parseDate(endRaw); err != nil {
			return time.Time{}, time.Time{}, errs.Validation("invalid endDate",
				errs.FieldDetail{Field: "endDate", Message: "must be RFC3339 or YYYY-MM-DD"})
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errs.Validation("endDate precedes startDate")
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
