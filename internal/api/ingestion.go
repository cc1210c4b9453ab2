package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/internal/queue"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// triggerBatchLimit caps how many posts one trigger call will enqueue
const triggerBatchLimit = 500

// IngestionAPI serves the ingestion trigger and status endpoints
type IngestionAPI struct {
	posts  *db.PostRepository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewIngestionAPI creates the ingestion handler group
func NewIngestionAPI(repo *db.Repository, q *queue.Queue) *IngestionAPI {
	return &IngestionAPI{
		posts:  db.NewPostRepository(repo),
		queue:  q,
		logger: logging.WithComponent("ingestion"),
	}
}

type triggerRequest struct {
	MinUpvotes      int  `json:"minUpvotes"`
	MaxAgeHours     int  `json:"maxAgeHours"`
	ExcludeStickied bool `json:"excludeStickied"`
	Priority        *int `json:"priority"`
}

// Trigger handles POST /ingestion/:platform/trigger: enqueue the platform's
// Pending posts that are not already queued, subject to the request filters
func (i *IngestionAPI) Trigger(c *gin.Context) {
	platform := c.Param("platform")
	if platform == "" || len(platform) > models.MaxPlatformLen {
		respondError(c, errs.Validation("invalid platform",
			errs.FieldDetail{Field: "platform", Message: "required, at most 50 characters"}))
		return
	}

	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, errs.Validation("malformed trigger filters"))
		return
	}
	priority := models.DefaultPriority
	if req.Priority != nil {
		if *req.Priority < 0 || *req.Priority > 10 {
			respondError(c, errs.Validation("priority out of range",
				errs.FieldDetail{Field: "priority", Message: "must be between 0 and 10"}))
			return
		}
		priority = *req.Priority
	}

	var oldest time.Time
	if req.MaxAgeHours > 0 {
		oldest = time.Now().UTC().Add(-time.Duration(req.MaxAgeHours) * time.Hour)
	}

	ctx := c.Request.Context()
	candidates, err := i.posts.UnqueuedPending(ctx, platform, req.MinUpvotes, oldest, req.ExcludeStickied, triggerBatchLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	enqueued := 0
	for _, post := range candidates {
		if _, err := i.queue.Enqueue(ctx, post.ID, priority); err != nil {
			// A concurrent trigger may have queued the post first
			if domainErr, ok := errs.As(err); ok && domainErr.Kind == errs.KindConflict {
				continue
			}
			respondError(c, err)
			return
		}
		enqueued++
	}

	i.logger.Info("Ingestion triggered",
		zap.String("platform", platform),
		zap.Int("candidates", len(candidates)),
		zap.Int("enqueued", enqueued))

	c.JSON(http.StatusAccepted, gin.H{
		"platform": platform,
		"matched":  len(candidates),
		"enqueued": enqueued,
	})
}

// Status handles GET /ingestion/status
func (i *IngestionAPI) Status(c *gin.Context) {
	ctx := c.Request.Context()

	depths, err := i.queue.DepthByPlatform(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	latest, err := i.posts.LastIngestedByPlatform(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	type platformStatus struct {
		Platform     string     `json:"platform"`
		QueueDepth   int64      `json:"queueDepth"`
		LastIngested *time.Time `json:"lastIngested,omitempty"`
	}

	seen := make(map[string]bool, len(depths))
	statuses := make([]platformStatus, 0, len(latest))
	for platform, last := range latest {
		ts := last
		statuses = append(statuses, platformStatus{
			Platform:     platform,
			QueueDepth:   depths[platform],
			LastIngested: &ts,
		})
		seen[platform] = true
	}
	for platform, depth := range depths {
		if !seen[platform] {
			statuses = append(statuses, platformStatus{Platform: platform, QueueDepth: depth})
		}
	}

	var total int64
	for _, s := range statuses {
		total += s.QueueDepth
	}

	c.JSON(http.StatusOK, gin.H{
		"totalQueueDepth": total,
		"platforms":       statuses,
	})
}
