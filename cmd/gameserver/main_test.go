package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/race/scroller/config"
	"github.com/race/scroller/internal/network"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readUntil reads messages until one of the wanted type arrives
func readUntil(t *testing.T, ws *websocket.Conn, msgType uint8) []byte {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		if len(data) > 0 && data[0] == msgType {
			return data
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.MaxSessions = 1
	server := NewGameServer(cfg)
	srv := httptest.NewServer(http.HandlerFunc(server.handleWebSocket))
	defer srv.Close()

	ws := dial(t, srv)
	p := network.NewProtocol()

	t.Run("keys before start are rejected", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, p.EncodeKey(config.KeyLeft, true)))
		errMsg := readUntil(t, ws, network.MsgTypeError)
		assert.Equal(t, network.ErrorCodeNoSession, errMsg[1])
	})

	t.Run("start streams frames", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{network.MsgTypeStart}))
		info := readUntil(t, ws, network.MsgTypeSessionInfo)
		assert.NotZero(t, info[1])

		frame, err := p.DecodeFrame(readUntil(t, ws, network.MsgTypeFrame))
		require.NoError(t, err)
		assert.Len(t, frame.Segments, cfg.Tuning.TrackChunks)
	})

	t.Run("steering is reflected in frames", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, p.EncodeKey(config.KeyLeft, true)))
		deadline := time.Now().Add(3 * time.Second)
		for {
			frame, err := p.DecodeFrame(readUntil(t, ws, network.MsgTypeFrame))
			require.NoError(t, err)
			if frame.Flags&network.FlagSteering != 0 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("no steering frame received")
			}
		}
	})

	t.Run("second client is turned away", func(t *testing.T) {
		other := dial(t, srv)
		require.NoError(t, other.WriteMessage(websocket.BinaryMessage, []byte{network.MsgTypeStart}))
		errMsg := readUntil(t, other, network.MsgTypeError)
		assert.Equal(t, network.ErrorCodeServerFull, errMsg[1])
	})

	t.Run("leave frees the slot", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{network.MsgTypeLeave}))
		require.Eventually(t, func() bool {
			return server.registry.GetStats().TotalSessions == 0
		}, 2*time.Second, 5*time.Millisecond)
	})
}

func TestStartAfterIdleCleanup(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.MaxSessions = 1
	server := NewGameServer(cfg)
	srv := httptest.NewServer(http.HandlerFunc(server.handleWebSocket))
	defer srv.Close()

	ws := dial(t, srv)
	p := network.NewProtocol()

	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{network.MsgTypeStart}))
	first := readUntil(t, ws, network.MsgTypeSessionInfo)

	removed := server.registry.CleanupIdle(time.Now().Add(time.Hour), config.SessionIdleTimeout)
	require.Equal(t, 1, removed)

	t.Run("keys after cleanup need a new start", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, p.EncodeKey(config.KeyLeft, true)))
		errMsg := readUntil(t, ws, network.MsgTypeError)
		assert.Equal(t, network.ErrorCodeNoSession, errMsg[1])
	})

	t.Run("start creates a fresh session", func(t *testing.T) {
		require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte{network.MsgTypeStart}))
		second := readUntil(t, ws, network.MsgTypeSessionInfo)
		assert.NotEqual(t, first, second, "new session id")

		stats := server.registry.GetStats()
		require.Equal(t, 1, stats.TotalSessions)
		require.Eventually(t, func() bool {
			return server.registry.GetStats().TotalTicks > 0
		}, 2*time.Second, 5*time.Millisecond)
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_CORS", "false")
	t.Setenv("MAX_SESSIONS", "3")
	t.Setenv("VIEWPORT_WIDTH", "300")
	t.Setenv("BROADCAST_RATE", "50")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.EnableCORS)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, 300, cfg.ViewportWidth)
	assert.Equal(t, 50, cfg.BroadcastRate)
	assert.Equal(t, config.ViewportHeight, cfg.ViewportHeight)
}
