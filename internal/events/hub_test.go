package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(TypeTrendUpdate, map[string]string{"keyword": "golang"})

	assert.Equal(t, TypeTrendUpdate, e.Type)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())

	// Two events must never share an id; consumers dedupe on it
	e2 := NewEvent(TypeTrendUpdate, nil)
	assert.NotEqual(t, e.ID, e2.ID)
}

func TestEventEnvelopeShape(t *testing.T) {
	e := NewEvent(TypeAlert, map[string]interface{}{"queueDepth": 1500})

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, field := range []string{"id", "type", "timestamp", "payload"} {
		assert.Contains(t, decoded, field)
	}
	assert.Equal(t, "alert", decoded["type"])
}

func TestHubClientCount(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.ClientCount())

	// Broadcast with no clients must not panic
	h.Broadcast(NewEvent(TypeAnalyticsUpdate, nil))
}

// dialHub stands up the hub behind a test server and connects one client
func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Subscribe(w, r); err != nil {
			t.Errorf("subscribe failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastFromManyGoroutines(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	const (
		broadcasters = 20
		perGoroutine = 50
	)

	var wg sync.WaitGroup
	for i := 0; i < broadcasters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				h.Broadcast(NewEvent(TypeAnalyticsUpdate, map[string]int{"seq": j}))
			}
		}()
	}

	// A slow subscriber may be dropped mid-burst, but every frame that does
	// arrive must be one whole, well-formed envelope; interleaved writers
	// would corrupt frames.
	received := 0
	for {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var e Event
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, TypeAnalyticsUpdate, e.Type)
		assert.NotEmpty(t, e.ID)
		received++
	}
	wg.Wait()

	assert.Greater(t, received, 0)
}

func TestHubUnregistersClosedClient(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// Broadcasting after the disconnect must not panic or block
	h.Broadcast(NewEvent(TypeAlert, nil))
}
