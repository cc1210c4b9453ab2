package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sentimenthq/pulse/internal/cache"
	"github.com/sentimenthq/pulse/pkg/logging"
)

const publishTimeout = 5 * time.Second

// Publisher forwards events through the cross-process channel so a Hub in
// the API server can fan them out. Without redis there is no transport;
// events are dropped and logged once.
type Publisher struct {
	cache  *cache.Cache
	logger *zap.Logger

	warnOnce sync.Once
}

// NewPublisher creates a cross-process event publisher
func NewPublisher(redisCache *cache.Cache) *Publisher {
	return &Publisher{
		cache:  redisCache,
		logger: logging.WithComponent("events"),
	}
}

// Broadcast marshals the event and publishes it on the event channel
func (p *Publisher) Broadcast(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.cache.PublishEvent(ctx, raw); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			p.warnOnce.Do(func() {
				p.logger.Warn("Event channel needs redis; dropping events")
			})
			return
		}
		p.logger.Warn("Failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}

// Relay pumps events from the cross-process channel into the hub until the
// context is cancelled. With redis disabled it returns immediately; only
// events originating in this process reach subscribers then.
func Relay(ctx context.Context, redisCache *cache.Cache, hub *Hub) {
	logger := logging.WithComponent("events")

	msgs, closeSub, err := redisCache.SubscribeEvents(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheDisabled) {
			logger.Error("Failed to subscribe to event channel", zap.Error(err))
		}
		return
	}
	defer closeSub()

	logger.Info("Event relay started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("Dropping malformed event", zap.Error(err))
				continue
			}
			hub.Broadcast(event)
		}
	}
}
