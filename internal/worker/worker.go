package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/cache"
	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/events"
	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/internal/queue"
	"github.com/sentimenthq/pulse/pkg/config"
	"github.com/sentimenthq/pulse/pkg/logging"
	"github.com/sentimenthq/pulse/pkg/telemetry"
)

// Worker drains the processing queue: claim, analyze, persist, repeat
type Worker struct {
	cfg       *config.WorkerConfig
	queue     *queue.Queue
	posts     *db.PostRepository
	sentiment *db.SentimentRepository
	analyzer  Analyzer
	cache     *cache.Cache
	hub       events.Broadcaster
	logger    *zap.Logger

	alertActive bool
}

// New creates a worker over the shared database handle
func New(cfg *config.WorkerConfig, database *db.DB, analyzer Analyzer, redisCache *cache.Cache, hub events.Broadcaster) *Worker {
	repo := db.NewRepository(database)
	return &Worker{
		cfg:       cfg,
		queue:     queue.New(database.DB, cfg.MaxRetries),
		posts:     db.NewPostRepository(repo),
		sentiment: db.NewSentimentRepository(repo),
		analyzer:  analyzer,
		cache:     redisCache,
		hub:       hub,
		logger:    logging.WithComponent("worker"),
	}
}

// Run polls the queue until the context is cancelled. Claim errors are
// logged and retried on the next tick; they never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting queue worker", zap.Duration("poll_interval", w.cfg.PollInterval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			claimed, err := w.queue.ClaimNext(ctx)
			if err != nil {
				if errors.Is(err, queue.ErrEmptyQueue) {
					w.wait(ctx)
					continue
				}
				w.logger.Error("Failed to claim queue entry", zap.Error(err))
				w.wait(ctx)
				continue
			}

			w.process(ctx, claimed)
			w.checkDepth(ctx)
		}
	}
}

// process runs one claimed entry through analysis and records the outcome
func (w *Worker) process(ctx context.Context, entry *models.ProcessingQueue) {
	ctx, span := telemetry.StartSpan(ctx, "worker.process")
	defer span.End()

	logger := w.logger.With(
		zap.String("queue_id", entry.ID.String()),
		zap.String("post_id", entry.PostID.String()))

	post, err := w.posts.GetByID(ctx, entry.PostID)
	if err != nil {
		logger.Error("Failed to load post", zap.Error(err))
		w.fail(ctx, entry, "post lookup failed: "+err.Error())
		return
	}
	if post == nil {
		// Post was hard-deleted after enqueue; nothing left to analyze
		logger.Warn("Post missing for queue entry")
		w.fail(ctx, entry, "post no longer exists")
		return
	}

	if err := w.posts.SetStatus(ctx, post.ID, models.StatusProcessing); err != nil {
		logger.Error("Failed to set post processing", zap.Error(err))
	}

	started := time.Now()
	result, err := w.analyzer.Analyze(ctx, post.Content, post.Language)
	if err != nil {
		logger.Error("Analysis failed", zap.Error(err))
		w.fail(ctx, entry, err.Error())
		return
	}

	analysis, err := result.ToModel(post.ID, time.Since(started))
	if err != nil {
		logger.Error("Failed to convert analysis result", zap.Error(err))
		w.fail(ctx, entry, err.Error())
		return
	}

	// Replace keeps the one-result-per-post invariant across re-analysis
	if err := w.sentiment.Replace(ctx, analysis); err != nil {
		logger.Error("Failed to persist analysis", zap.Error(err))
		w.fail(ctx, entry, err.Error())
		return
	}

	if err := w.queue.MarkCompleted(ctx, entry.ID); err != nil {
		logger.Error("Failed to complete queue entry", zap.Error(err))
		return
	}
	if err := w.posts.SetStatus(ctx, post.ID, models.StatusCompleted); err != nil {
		logger.Error("Failed to set post completed", zap.Error(err))
	}

	logger.Info("Post analyzed",
		zap.String("sentiment", analysis.OverallSentiment.String()),
		zap.Duration("processing_time", analysis.ProcessingTime))

	if w.hub != nil {
		w.hub.Broadcast(events.NewEvent(events.TypeAnalyticsUpdate, map[string]interface{}{
			"postId":    post.ID,
			"sentiment": analysis.OverallSentiment.String(),
			"platform":  post.Platform,
		}))
	}
}

// fail records a failure; the queue decides retry vs terminal. Post status
// mirrors the queue outcome.
func (w *Worker) fail(ctx context.Context, entry *models.ProcessingQueue, cause string) {
	if err := w.queue.MarkFailed(ctx, entry.ID, cause); err != nil {
		w.logger.Error("Failed to mark queue entry failed", zap.Error(err))
		return
	}
	next := queue.NextStatusAfterFailure(entry.RetryCount+1, w.cfg.MaxRetries)
	status := models.StatusPending
	if next == models.StatusFailed {
		status = models.StatusFailed
	}
	if err := w.posts.SetStatus(ctx, entry.PostID, status); err != nil {
		w.logger.Error("Failed to sync post status", zap.Error(err))
	}
}

// checkDepth publishes the queue depth gauge and fires the alert event when
// the threshold is crossed. The alert fires once per breach, not per tick.
func (w *Worker) checkDepth(ctx context.Context) {
	depth, err := w.queue.Depth(ctx)
	if err != nil {
		w.logger.Error("Failed to read queue depth", zap.Error(err))
		return
	}

	if w.cache != nil {
		if err := w.cache.SetQueueDepth(ctx, depth); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			w.logger.Warn("Failed to publish queue depth", zap.Error(err))
		}
	}

	breached := w.cfg.AlertQueueDepth > 0 && depth > w.cfg.AlertQueueDepth
	if breached && !w.alertActive && w.hub != nil {
		w.hub.Broadcast(events.NewEvent(events.TypeAlert, map[string]interface{}{
			"reason":     "queue_depth_threshold",
			"queueDepth": depth,
			"threshold":  w.cfg.AlertQueueDepth,
		}))
	}
	w.alertActive = breached
}

func (w *Worker) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.PollInterval):
	}
}
