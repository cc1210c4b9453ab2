package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/events"
	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/pkg/logging"
)

// trendSource produces the snapshot pushed to dashboards
type trendSource interface {
	Snapshot(ctx context.Context, window models.TimeWindow) (*analytics.TrendSnapshot, error)
}

// Scheduler runs the periodic maintenance jobs that are policy, not domain
// invariants: the daily API-counter rollover and the dashboard push events.
type Scheduler struct {
	cron   *cron.Cron
	users  *db.UserRepository
	trends trendSource
	hub    events.Broadcaster
	logger *zap.Logger
}

// New creates a scheduler over the shared database handle
func New(database *db.DB, hub events.Broadcaster) *Scheduler {
	repo := db.NewRepository(database)
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		users:  db.NewUserRepository(repo),
		trends: analytics.NewTrendQuery(database.DB),
		hub:    hub,
		logger: logging.WithComponent("jobs"),
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	// Daily rollover of per-user API call counters at midnight UTC
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.resetAPICounters); err != nil {
		return err
	}

	// Nudge connected dashboards to refresh analytics every five minutes
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.pushAnalyticsUpdate); err != nil {
		return err
	}

	// Push the current trend snapshot on the same cadence, staggered so the
	// two broadcasts don't land in the same second
	if _, err := s.cron.AddFunc("30 */5 * * * *", s.pushTrendUpdate); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) resetAPICounters() {
	reset, err := s.users.ResetAPICallCounters(context.Background())
	if err != nil {
		s.logger.Error("Failed to reset API call counters", zap.Error(err))
		return
	}
	s.logger.Info("Daily API call counters reset", zap.Int64("users", reset))
}

func (s *Scheduler) pushAnalyticsUpdate() {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(events.NewEvent(events.TypeAnalyticsUpdate, map[string]string{
		"reason": "scheduled_refresh",
	}))
}

func (s *Scheduler) pushTrendUpdate() {
	if s.hub == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := s.trends.Snapshot(ctx, models.WindowOneHour)
	if err != nil {
		s.logger.Error("Failed to build trend snapshot", zap.Error(err))
		return
	}
	s.hub.Broadcast(events.NewEvent(events.TypeTrendUpdate, snapshot))
}
