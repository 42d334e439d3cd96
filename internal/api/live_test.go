package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellogreencow/burch/internal/universe"
	"github.com/hellogreencow/burch/pkg/logger"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *LiveHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveHub_BroadcastsUniverseEvents(t *testing.T) {
	hub := NewLiveHub(logger.NewNop())
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	sent := universe.UniverseEvent{
		Type:        "reseed",
		Brands:      60,
		Created:     60,
		Snapshots:   60,
		GeneratedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	hub.PublishUniverseEvent(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received universe.UniverseEvent
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, sent.Type, received.Type)
	assert.Equal(t, sent.Brands, received.Brands)
}

func TestLiveHub_FanOutToMultipleClients(t *testing.T) {
	hub := NewLiveHub(logger.NewNop())
	server := httptest.NewServer(hub)
	defer server.Close()

	first := dialHub(t, server)
	second := dialHub(t, server)
	waitForClients(t, hub, 2)

	hub.PublishUniverseEvent(universe.UniverseEvent{Type: "refresh", Brands: 12})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event universe.UniverseEvent
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, "refresh", event.Type)
	}
}

func TestLiveHub_DisconnectPrunesClients(t *testing.T) {
	hub := NewLiveHub(logger.NewNop())
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// Publishing with no clients must not panic or block.
	hub.PublishUniverseEvent(universe.UniverseEvent{Type: "reseed"})
}
