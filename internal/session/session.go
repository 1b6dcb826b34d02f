// Package session runs one simulation per remote client and streams its
// state over the wire protocol.
package session

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/race/scroller/config"
	"github.com/race/scroller/internal/game"
	"github.com/race/scroller/internal/network"
	"github.com/race/scroller/internal/scene"
)

// Connection interface for network abstraction
type Connection interface {
	Send(data []byte) error
	Close() error
	RemoteAddr() string
}

// Session is a single-player simulation driven by a remote client.
//
// The simulation ticks on its own goroutine. A second loop broadcasts a
// frame at the configured rate, and crash callbacks send a Crash message
// for every fresh rail contact.
type Session struct {
	ID string

	conn     Connection
	scene    *scene.Memory
	sim      *game.Simulation
	protocol *network.Protocol

	broadcastInterval time.Duration
	lastActivity      atomic.Int64 // Unix nanos of the last client message

	running  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSession creates a session. It does not start ticking until Start.
func NewSession(id string, conn Connection, cfg *config.ServerConfig) *Session {
	viewport := game.Size{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)}
	mem := scene.NewMemory(viewport, game.Size{Width: cfg.VehicleWidth, Height: cfg.VehicleHeight})

	s := &Session{
		ID:                id,
		conn:              conn,
		scene:             mem,
		sim:               game.NewSimulation(mem, cfg.Tuning),
		protocol:          network.NewProtocol(),
		broadcastInterval: cfg.BroadcastInterval(),
		stopChan:          make(chan struct{}),
	}
	s.Touch()
	s.sim.OnCrash(s.handleCrash)
	return s
}

// Start begins ticking and broadcasting, and sends the session info.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Session) Start() {
	if s.running.Swap(true) {
		return
	}

	viewport := s.scene.ViewportSize()
	tuning := s.sim.Tuning()
	info := s.protocol.EncodeSessionInfo(&network.SessionInfoMessage{
		SessionID:      s.ID,
		ViewportWidth:  uint16(viewport.Width),
		ViewportHeight: uint16(viewport.Height),
		TrackChunks:    uint8(tuning.TrackChunks),
		TrackHeight:    float32(tuning.TrackHeight),
	})
	if err := s.conn.Send(info); err != nil {
		log.Printf("Failed to send session info to %s: %v", s.conn.RemoteAddr(), err)
	}

	s.sim.Start()
	go s.broadcastLoop()
	log.Printf("Session %s started for %s", s.ID, s.conn.RemoteAddr())
}

// Stop halts the simulation and the broadcast loop.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		s.sim.Stop()
		close(s.stopChan)

		stats := s.sim.Stats()
		log.Printf("Session %s stopped after %d ticks (%d recycled, %d dropped)",
			s.ID, stats.Ticks, stats.Recycled, stats.DroppedTicks)
	})
}

// Restart puts the simulation back to its initial state without stopping.
func (s *Session) Restart() {
	s.Touch()
	s.sim.Reset()
}

// HandleKey applies a decoded key message.
func (s *Session) HandleKey(msg *network.KeyMessage) {
	s.Touch()
	if msg.Pressed() {
		s.sim.Press(int(msg.KeyCode))
	} else {
		s.sim.Release(int(msg.KeyCode))
	}
}

// Touch records client activity.
func (s *Session) Touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// IdleFor returns how long the client has been silent.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActivity.Load()))
}

// Stats returns the simulation counters.
func (s *Session) Stats() game.Stats {
	return s.sim.Stats()
}

// Snapshot returns the simulation state.
func (s *Session) Snapshot() game.Snapshot {
	return s.sim.Snapshot()
}

// broadcastLoop sends a frame on every interval until Stop.
func (s *Session) broadcastLoop() {
	ticker := time.NewTicker(s.broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.broadcastFrame()
		}
	}
}

// broadcastFrame encodes the current snapshot and sends it.
func (s *Session) broadcastFrame() {
	frame := network.ConvertSnapshot(s.sim.Snapshot())
	if err := s.conn.Send(s.protocol.EncodeFrame(frame)); err != nil {
		// Log but don't stop - connection cleanup handles that
		log.Printf("Failed to send frame to %s: %v", s.conn.RemoteAddr(), err)
	}
}

// handleCrash forwards fresh rail contacts to the client.
func (s *Session) handleCrash(ev game.CrashEvent) {
	if !ev.Fresh {
		return
	}

	msg := s.protocol.EncodeCrash(network.ConvertCrashSide(ev.Side), uint8(ev.Segment), ev.Fresh)
	if err := s.conn.Send(msg); err != nil {
		log.Printf("Failed to send crash to %s: %v", s.conn.RemoteAddr(), err)
	}
}
