// Package scene provides presentation adapters for the simulation core.
package scene

import (
	"sync"

	"github.com/race/scroller/internal/game"
)

// Memory is a headless scene. It keeps the geometry the core pushes so a
// remote client or a test can read it back.
type Memory struct {
	mu sync.RWMutex

	viewport game.Size
	vehicle  game.Rect
	visible  bool
	segments []*MemorySegment
	recycled uint64
}

// MemorySegment is the handle for one segment of a Memory scene.
type MemorySegment struct {
	mu sync.RWMutex

	index    int
	position game.Vec2
	size     game.Size
	width    float64
	margin   float64
}

// NewMemory creates a scene with a fixed viewport and the vehicle laid out
// horizontally centered at the top of it.
func NewMemory(viewport, vehicle game.Size) *Memory {
	pos := game.Vec2{X: (viewport.Width - vehicle.Width) / 2}
	return &Memory{
		viewport: viewport,
		vehicle:  game.RectFrom(pos, vehicle),
	}
}

// CreateSegment implements game.Scene.
func (m *Memory) CreateSegment(index int) game.SegmentHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	seg := &MemorySegment{index: index}
	m.segments = append(m.segments, seg)
	return seg
}

// RecycleSegment implements game.Scene.
func (m *Memory) RecycleSegment(h game.SegmentHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recycled++
}

// ViewportSize implements game.Scene.
func (m *Memory) ViewportSize() game.Size {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.viewport
}

// SetVehicleVisible implements game.Scene.
func (m *Memory) SetVehicleVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visible = visible
}

// VehicleBox implements game.Scene.
func (m *Memory) VehicleBox() game.Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.vehicle
}

// SetVehiclePosition implements game.Scene.
func (m *Memory) SetVehiclePosition(pos game.Vec2) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vehicle = game.RectFrom(pos, game.Size{Width: m.vehicle.Width(), Height: m.vehicle.Height()})
}

// VehicleVisible reports whether the core has shown the vehicle.
func (m *Memory) VehicleVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.visible
}

// Segments returns the handles in creation order.
func (m *Memory) Segments() []*MemorySegment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*MemorySegment, len(m.segments))
	copy(out, m.segments)
	return out
}

// Recycled returns the number of recycle signals received.
func (m *Memory) Recycled() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.recycled
}

// SetPosition implements game.SegmentHandle.
func (s *MemorySegment) SetPosition(pos game.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.position = pos
}

// SetSize implements game.SegmentHandle.
func (s *MemorySegment) SetSize(size game.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size = size
}

// SetRoad implements game.SegmentHandle.
func (s *MemorySegment) SetRoad(width, margin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = width
	s.margin = margin
}

// Index returns the segment's stable identity.
func (s *MemorySegment) Index() int {
	return s.index
}

// Box returns the segment's last pushed bounding box.
func (s *MemorySegment) Box() game.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return game.RectFrom(s.position, s.size)
}

// Road returns the segment's last pushed road width and margin.
func (s *MemorySegment) Road() (width, margin float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.width, s.margin
}
