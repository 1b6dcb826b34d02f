// Package main implements the track scroller WebSocket server.
//
// Architecture Overview:
// - Uses WebSocket for real-time bidirectional communication with clients
// - Each client gets its own single-player simulation ticking every 5ms
// - Frames are broadcast to the client at 20Hz
// - The client only renders; all geometry and collision runs server-side
//
// Connection Flow:
// 1. Client connects via WebSocket to /ws endpoint
// 2. Client sends Start; server creates a session and replies with SessionInfo
// 3. Client sends KeyDown/KeyUp messages, server streams Frame and Crash messages
// 4. Start on a running session restarts it; Leave ends it
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/race/scroller/config"
	"github.com/race/scroller/internal/network"
	"github.com/race/scroller/internal/session"
)

// GameServer is the main server instance that manages all connections and sessions.
type GameServer struct {
	config   *config.ServerConfig
	registry *session.Registry
	protocol *network.Protocol
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[*ClientConnection]bool
}

// ClientConnection represents a single connected client.
// Each client has its own goroutines for reading and writing messages.
type ClientConnection struct {
	ws     *websocket.Conn
	server *GameServer

	mu      sync.Mutex       // Protects session
	session *session.Session // nil until Start

	sendChan  chan []byte   // Buffered channel for outgoing messages
	done      chan struct{} // Signal channel for graceful shutdown
	closeOnce sync.Once
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	server := NewGameServer(cfg)

	log.Printf("=================================")
	log.Printf("  Track Scroller Server")
	log.Printf("=================================")
	log.Printf("  Host: %s", cfg.Host)
	log.Printf("  Port: %d", cfg.Port)
	log.Printf("  Tick: %v", cfg.Tuning.TickInterval)
	log.Printf("  Broadcast Rate: %d Hz", cfg.BroadcastRate)
	log.Printf("  Viewport: %dx%d", cfg.ViewportWidth, cfg.ViewportHeight)
	log.Printf("  Max Sessions: %d", cfg.MaxSessions)
	log.Printf("=================================")

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadConfig reads configuration from environment variables.
// Falls back to default values if environment variables are not set.
func loadConfig() (*config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()

	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}

	// CORS can be disabled for production behind a reverse proxy
	if cors := os.Getenv("ENABLE_CORS"); cors == "false" {
		cfg.EnableCORS = false
	}

	if v := os.Getenv("MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		}
	}
	if v := os.Getenv("BROADCAST_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BroadcastRate = n
		}
	}
	if v := os.Getenv("VIEWPORT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ViewportWidth = n
		}
	}
	if v := os.Getenv("VIEWPORT_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ViewportHeight = n
		}
	}

	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	return cfg, nil
}

// NewGameServer creates and initializes a new game server instance.
func NewGameServer(cfg *config.ServerConfig) *GameServer {
	return &GameServer{
		config:   cfg,
		registry: session.NewRegistry(cfg),
		protocol: network.NewProtocol(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return cfg.EnableCORS
			},
		},
		connections: make(map[*ClientConnection]bool),
	}
}

// Start begins listening for connections and runs background tasks.
// This method blocks until the server is shut down.
func (s *GameServer) Start() error {
	// Background task: drop sessions whose client went silent
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for now := range ticker.C {
			removed := s.registry.CleanupIdle(now, config.SessionIdleTimeout)
			if removed > 0 {
				log.Printf("Cleaned up %d idle sessions", removed)
			}
		}
	}()

	// Background task: log statistics every 5 minutes (only when active)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			stats := s.registry.GetStats()
			if stats.TotalSessions > 0 {
				log.Printf("Stats: %d sessions, %d ticks, %d dropped", stats.TotalSessions, stats.TotalTicks, stats.DroppedTicks)
			}
		}
	}()

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/health", s.handleHealth)
	http.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	log.Printf("Server listening on %s", addr)

	return http.ListenAndServe(addr, nil)
}

// handleHealth responds to health check requests.
func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleStats returns current server statistics as JSON.
func (s *GameServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.registry.GetStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"sessions":%d,"ticks":%d,"dropped":%d}`, stats.TotalSessions, stats.TotalTicks, stats.DroppedTicks)
}

// handleWebSocket upgrades HTTP connections to WebSocket and manages client lifecycle.
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Buffer size of 256 prevents blocking on slow clients
	conn := &ClientConnection{
		ws:       ws,
		server:   s,
		sendChan: make(chan []byte, 256),
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	s.connections[conn] = true
	s.mu.Unlock()

	log.Printf("New connection from %s", ws.RemoteAddr())

	go conn.writePump()
	go conn.readPump()
}

// Send queues data to be sent to the client.
// Non-blocking: drops message if buffer is full (the next frame supersedes it).
func (c *ClientConnection) Send(data []byte) error {
	select {
	case c.sendChan <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("connection closed")
	default:
		return nil
	}
}

// Close gracefully shuts down the connection.
// Safe to call multiple times.
func (c *ClientConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// RemoteAddr returns the client's address for logging.
func (c *ClientConnection) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// writePump handles sending messages to the client.
// Also sends periodic pings to detect dead connections.
func (c *ClientConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.cleanup()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.sendChan:
			c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles receiving messages from the client.
func (c *ClientConnection) readPump() {
	defer c.cleanup()

	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		c.handleMessage(message)
	}
}

// handleMessage dispatches incoming messages based on the first byte.
func (c *ClientConnection) handleMessage(data []byte) {
	if len(data) == 0 {
		return
	}

	switch data[0] {
	case network.MsgTypeStart:
		c.handleStart()

	case network.MsgTypeKeyDown, network.MsgTypeKeyUp:
		c.handleKey(data)

	case network.MsgTypePing:
		c.handlePing(data)

	case network.MsgTypeLeave:
		c.handleLeave()

	default:
		c.Send(c.server.protocol.EncodeError(network.ErrorCodeInvalidMessage, "unknown message type"))
	}
}

// handleStart creates a session, or restarts the existing one.
func (c *ClientConnection) handleStart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess := c.liveSession(); sess != nil {
		sess.Restart()
		return
	}

	sess, err := c.server.registry.Create(c)
	if err != nil {
		c.Send(c.server.protocol.EncodeError(network.ErrorCodeServerFull, err.Error()))
		return
	}
	c.session = sess
}

// handleKey forwards a key event to the session.
func (c *ClientConnection) handleKey(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.liveSession()
	if sess == nil {
		c.Send(c.server.protocol.EncodeError(network.ErrorCodeNoSession, "send Start first"))
		return
	}

	msg, err := c.server.protocol.DecodeKey(data)
	if err != nil {
		c.Send(c.server.protocol.EncodeError(network.ErrorCodeInvalidMessage, err.Error()))
		return
	}

	sess.HandleKey(msg)
}

// handlePing responds to a client ping with the same timestamp.
func (c *ClientConnection) handlePing(data []byte) {
	ts, err := c.server.protocol.DecodePing(data)
	if err != nil {
		return
	}
	c.mu.Lock()
	if sess := c.liveSession(); sess != nil {
		sess.Touch()
	}
	c.mu.Unlock()

	c.Send(c.server.protocol.EncodePong(ts))
}

// liveSession returns the connection's session if the registry still holds
// it. A session removed behind the connection's back (idle cleanup) is
// detached. Caller must hold c.mu.
func (c *ClientConnection) liveSession() *session.Session {
	if c.session == nil {
		return nil
	}
	if _, err := c.server.registry.Get(c.session.ID); err != nil {
		log.Printf("Session %s for %s is gone: %v", c.session.ID, c.RemoteAddr(), err)
		c.session = nil
	}
	return c.session
}

// handleLeave ends the client's session but keeps the connection open.
func (c *ClientConnection) handleLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.server.registry.Remove(c.session.ID)
		c.session = nil
	}
}

// cleanup removes the connection from tracking and stops its session.
// Called by both pumps; only the first call does any work.
func (c *ClientConnection) cleanup() {
	c.server.mu.Lock()
	_, tracked := c.server.connections[c]
	delete(c.server.connections, c)
	c.server.mu.Unlock()

	if !tracked {
		return
	}

	c.Close()
	c.handleLeave()
	log.Printf("Connection closed: %s", c.RemoteAddr())
}
