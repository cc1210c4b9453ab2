package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/analytics"
	"github.com/sentimenthq/pulse/internal/events"
	"github.com/sentimenthq/pulse/internal/models"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingBroadcaster) Broadcast(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingBroadcaster) recorded() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type staticTrends struct {
	snapshot *analytics.TrendSnapshot
	err      error
}

func (s staticTrends) Snapshot(ctx context.Context, window models.TimeWindow) (*analytics.TrendSnapshot, error) {
	return s.snapshot, s.err
}

func TestPushTrendUpdate(t *testing.T) {
	hub := &recordingBroadcaster{}
	snapshot := &analytics.TrendSnapshot{TimeWindow: models.WindowOneHour}
	s := &Scheduler{
		trends: staticTrends{snapshot: snapshot},
		hub:    hub,
		logger: zap.NewNop(),
	}

	s.pushTrendUpdate()

	got := hub.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeTrendUpdate, got[0].Type)
	assert.Equal(t, snapshot, got[0].Payload)
}

func TestPushTrendUpdateSnapshotFailure(t *testing.T) {
	hub := &recordingBroadcaster{}
	s := &Scheduler{
		trends: staticTrends{err: errors.New("connection refused")},
		hub:    hub,
		logger: zap.NewNop(),
	}

	// A failed snapshot must not push a partial event
	s.pushTrendUpdate()
	assert.Empty(t, hub.recorded())
}

func TestPushAnalyticsUpdate(t *testing.T) {
	hub := &recordingBroadcaster{}
	s := &Scheduler{hub: hub, logger: zap.NewNop()}

	s.pushAnalyticsUpdate()

	got := hub.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeAnalyticsUpdate, got[0].Type)
}

func TestPushWithoutHub(t *testing.T) {
	s := &Scheduler{logger: zap.NewNop()}

	// No hub wired means nothing to do, not a crash
	s.pushAnalyticsUpdate()
	s.pushTrendUpdate()
}
