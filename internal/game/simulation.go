// Package game implements the simulation core: input, vehicle motion,
// the recycled track pool, and rail collision.
package game

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/race/scroller/config"
)

// Simulation owns all simulation state and drives it one tick at a time.
//
// Each tick runs, in order:
// - Track travel and recycling
// - Vehicle motion from the current input
// - Crash detection against every rail
//
// Thread Safety:
// Key events and ticks may arrive from different goroutines. The mutex
// serializes them, so each handler sees the other's completed effect.
// A separate ready flag makes overlapping ticks drop instead of queue: a
// tick that finds another tick in flight returns immediately and is counted
// as dropped.
type Simulation struct {
	mu sync.Mutex // Protects all state below

	scene   Scene
	tuning  config.Tuning
	input   *InputController
	vehicle Vehicle
	motion  *Motion
	pool    *TrackPool
	crashes *CrashDetector
	crashed bool // Vehicle overlapped a rail on the last tick

	onCrash func(CrashEvent)

	ready     atomic.Bool   // False while a tick is in flight
	tickCount atomic.Uint64 // Completed ticks
	dropped   atomic.Uint64 // Ticks suppressed by the ready guard

	running  atomic.Bool   // True if the tick loop is running
	stopChan chan struct{} // Closed to stop the current tick loop; guarded by mu
}

// NewSimulation creates a simulation over the given scene.
// The track pool is populated on the first tick, once the viewport is known.
func NewSimulation(scene Scene, tuning config.Tuning) *Simulation {
	s := &Simulation{
		scene:   scene,
		tuning:  tuning,
		input:   NewInputController(),
		motion:  NewMotion(scene, tuning),
		pool:    NewTrackPool(scene, tuning),
		crashes: NewCrashDetector(),
	}
	s.ready.Store(true)
	return s
}

// OnCrash sets the callback invoked for every crash event.
// The callback runs on the ticking goroutine after the simulation lock is
// released, so it may call Snapshot or Stop.
func (s *Simulation) OnCrash(callback func(CrashEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onCrash = callback
}

// Press handles a key-down event.
func (s *Simulation) Press(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input.Press(code)
}

// Release handles a key-up event.
func (s *Simulation) Release(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input.Release(code)
}

// Tick runs one simulation step. It returns false if the step was dropped
// because another tick was still in flight.
func (s *Simulation) Tick() bool {
	if !s.ready.CompareAndSwap(true, false) {
		s.dropped.Add(1)
		return false
	}
	defer s.ready.Store(true)

	s.mu.Lock()
	viewport := s.scene.ViewportSize()
	if !s.pool.Initialized() {
		s.pool.Init(viewport)
	}

	s.pool.Travel(viewport)
	s.motion.UpdateVehicle(&s.vehicle, s.input.State(), viewport)

	tick := s.tickCount.Add(1)
	events := s.crashes.Detect(tick, s.vehicle.Box(), s.pool.Segments())
	s.crashed = len(events) > 0
	callback := s.onCrash
	s.mu.Unlock()

	if callback != nil {
		for _, ev := range events {
			callback(ev)
		}
	}
	return true
}

// Reset returns input, vehicle, and track to their state before the first
// tick. Segments are rewound in place, never recreated.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input.Reset()
	s.vehicle = Vehicle{}
	s.crashes.Reset()
	s.crashed = false
	if s.pool.Initialized() {
		s.pool.Init(s.scene.ViewportSize())
	}
	s.scene.SetVehicleVisible(false)
}

// Start begins ticking at the tuning's interval in a separate goroutine.
// Safe to call multiple times - subsequent calls are no-ops. A stopped
// simulation can be started again.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return
	}

	s.stopChan = make(chan struct{})
	s.running.Store(true)
	go s.tickLoop(s.stopChan)
}

// Stop halts the tick loop. A tick in progress completes.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Simulation) Stop() {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return
	}
	s.running.Store(false)
	close(s.stopChan)
	s.mu.Unlock()

	if n := s.dropped.Load(); n > 0 {
		log.Printf("Simulation stopped after %d ticks (%d dropped)", s.tickCount.Load(), n)
	}
}

// tickLoop calls Tick on every interval until stop is closed.
func (s *Simulation) tickLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.tuning.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Snapshot is a consistent copy of the simulation state.
type Snapshot struct {
	Tick     uint64
	Input    InputState
	Vehicle  VehicleState
	Segments []SegmentState
	Crashed  bool
}

// Snapshot returns a copy of the current state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	segments := make([]SegmentState, 0, s.pool.Len())
	for _, seg := range s.pool.Segments() {
		segments = append(segments, seg.GetState())
	}

	return Snapshot{
		Tick:     s.tickCount.Load(),
		Input:    s.input.State(),
		Vehicle:  s.vehicle.GetState(),
		Segments: segments,
		Crashed:  s.crashed,
	}
}

// Stats holds scheduler counters
type Stats struct {
	Ticks        uint64
	DroppedTicks uint64
	Recycled     uint64
}

// Stats returns scheduler counters.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	recycled := s.pool.Recycled()
	s.mu.Unlock()

	return Stats{
		Ticks:        s.tickCount.Load(),
		DroppedTicks: s.dropped.Load(),
		Recycled:     recycled,
	}
}

// Tuning returns the constants this simulation runs with.
func (s *Simulation) Tuning() config.Tuning {
	return s.tuning
}
