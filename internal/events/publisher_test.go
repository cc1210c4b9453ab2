package events

import (
	"context"
	"testing"
	"time"
)

func TestPublisherWithoutRedis(t *testing.T) {
	p := NewPublisher(nil)

	// With no transport events are dropped, never panicking
	p.Broadcast(NewEvent(TypeAlert, map[string]int64{"queueDepth": 9000}))
	p.Broadcast(NewEvent(TypeTrendUpdate, nil))
}

func TestRelayWithoutRedis(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Relay(context.Background(), nil, NewHub())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay should return immediately with the cache disabled")
	}
}
