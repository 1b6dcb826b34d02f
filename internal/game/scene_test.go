package game

import (
	"sync"

	"github.com/race/scroller/config"
)

// stubSegment records what the core pushed to a segment
type stubSegment struct {
	index    int
	pos      Vec2
	size     Size
	width    float64
	margin   float64
	recycled int
}

func (s *stubSegment) SetPosition(pos Vec2)          { s.pos = pos }
func (s *stubSegment) SetSize(size Size)             { s.size = size }
func (s *stubSegment) SetRoad(width, margin float64) { s.width, s.margin = width, margin }

// stubScene is a minimal in-memory Scene for core tests
type stubScene struct {
	mu       sync.Mutex
	viewport Size
	vehicle  Rect
	visible  bool
	segments []*stubSegment
}

func newStubScene(width, height float64) *stubScene {
	return &stubScene{
		viewport: Size{Width: width, Height: height},
		vehicle:  RectFrom(Vec2{X: width/2 - 10, Y: 0}, Size{Width: 20, Height: 34}),
	}
}

func (s *stubScene) CreateSegment(index int) SegmentHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg := &stubSegment{index: index}
	s.segments = append(s.segments, seg)
	return seg
}

func (s *stubScene) RecycleSegment(h SegmentHandle) {
	h.(*stubSegment).recycled++
}

func (s *stubScene) ViewportSize() Size             { return s.viewport }
func (s *stubScene) SetVehicleVisible(visible bool) { s.visible = visible }
func (s *stubScene) VehicleBox() Rect               { return s.vehicle }
func (s *stubScene) SetVehiclePosition(pos Vec2) {
	s.vehicle = RectFrom(pos, Size{Width: s.vehicle.Width(), Height: s.vehicle.Height()})
}

// testTuning is a small, easy-to-reason-about configuration
func testTuning() config.Tuning {
	tu := config.DefaultTuning()
	tu.TrackChunks = 3
	tu.TrackHeight = 10
	tu.TrackSpeed = 1
	tu.DefaultTrackWidth = 100
	tu.TargetTrackWidth = 110
	tu.TargetTrackMargin = 5
	tu.WidenSpeed = 4
	return tu
}
