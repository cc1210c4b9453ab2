package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/events"
	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/internal/worker"
)

// SentimentAPI serves the analyze and sentiment read endpoints
type SentimentAPI struct {
	posts     *db.PostRepository
	sentiment *db.SentimentRepository
	trendRepo *db.TrendRepository
	trends    *analytics.TrendQuery
	analyzer  worker.Analyzer
	hub       *events.Hub
}

// NewSentimentAPI creates the sentiment handler group
func NewSentimentAPI(repo *db.Repository, trends *analytics.TrendQuery, analyzer worker.Analyzer, hub *events.Hub) *SentimentAPI {
	return &SentimentAPI{
		posts:     db.NewPostRepository(repo),
		sentiment: db.NewSentimentRepository(repo),
		trendRepo: db.NewTrendRepository(repo),
		trends:    trends,
		analyzer:  analyzer,
		hub:       hub,
	}
}

type analyzeRequest struct {
	Content   string          `json:"content" binding:"required"`
	Platform  string          `json:"platform" binding:"required"`
	UserID    string          `json:"userId" binding:"required"`
	UserName  string          `json:"userName"`
	SourceURL string          `json:"sourceUrl"`
	SourceID  string          `json:"sourceId"`
	Metadata  json.RawMessage `json:"metadata"`
}

type keywordRelevance struct {
	Keyword        string  `json:"keyword"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Analyze handles POST /sentiment/analyze: ingest one post and score it
// synchronously
func (s *SentimentAPI) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("content, platform and userId are required"))
		return
	}

	now := time.Now().UTC()
	post := &models.SocialMediaPost{
		Content:   req.Content,
		Platform:  req.Platform,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Timestamp: now,
		CreatedAt: now,
		Status:    models.StatusPending,
		Language:  "en",
	}
	if req.SourceURL != "" {
		post.SourceURL = sql.NullString{String: req.SourceURL, Valid: true}
	}
	if req.SourceID != "" {
		post.SourceID = sql.NullString{String: req.SourceID, Valid: true}
	}
	if len(req.Metadata) > 0 {
		post.RawMetadata = datatypes.JSON(req.Metadata)
	}

	ctx := c.Request.Context()
	if err := s.posts.Create(ctx, post); err != nil {
		respondError(c, err)
		return
	}

	started := time.Now()
	result, err := s.analyzer.Analyze(ctx, post.Content, post.Language)
	if err != nil {
		// Leave the post Pending; the worker path can pick it up later
		respondError(c, errs.Transient("analysis service unavailable", err))
		return
	}

	analysis, err := result.ToModel(post.ID, time.Since(started))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.sentiment.Replace(ctx, analysis); err != nil {
		respondError(c, err)
		return
	}
	if err := s.posts.SetStatus(ctx, post.ID, models.StatusCompleted); err != nil {
		respondError(c, err)
		return
	}

	links, err := s.trendRepo.KeywordsForPost(ctx, post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	trendKeywords := make([]keywordRelevance, 0, len(links))
	for _, link := range links {
		trendKeywords = append(trendKeywords, keywordRelevance{
			Keyword:        link.Keyword,
			RelevanceScore: link.RelevanceScore,
		})
	}

	if s.hub != nil {
		s.hub.Broadcast(events.NewEvent(events.TypeAnalyticsUpdate, map[string]interface{}{
			"postId":    post.ID,
			"sentiment": analysis.OverallSentiment.String(),
			"platform":  post.Platform,
		}))
	}

	c.JSON(http.StatusOK, gin.H{
		"postId":            post.ID,
		"sentimentAnalysis": analysis,
		"trends":            trendKeywords,
	})
}

// Recent handles GET /sentiment/recent
func (s *SentimentAPI) Recent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	results, err := s.sentiment.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Trends handles GET /sentiment/trends?timeWindow=
func (s *SentimentAPI) Trends(c *gin.Context) {
	window, ok := models.ParseTimeWindow(c.DefaultQuery("timeWindow", "24h"))
	if !ok {
		respondError(c, errs.Validation("unknown timeWindow",
			errs.FieldDetail{Field: "timeWindow", Message: "must be one of 5m, 15m, 1h, 6h, 24h, 7d"}))
		return
	}

	series, err := s.trends.SentimentSeries(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timeWindow": c.DefaultQuery("timeWindow", "24h"),
		"series":     series,
	})
}
