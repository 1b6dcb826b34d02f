package game

import (
	"github.com/race/scroller/config"
)

// TrackSegment is one recyclable row of track: left rail, road, right rail.
type TrackSegment struct {
	Index    int
	Position Vec2
	Size     Size

	RoadWidth        float64
	HorizontalMargin float64

	LeftRail  Rect
	RightRail Rect

	handle SegmentHandle
}

// Box returns the segment's bounding box.
func (s *TrackSegment) Box() Rect {
	return RectFrom(s.Position, s.Size)
}

// updateRails recomputes both rail boxes from the current geometry.
func (s *TrackSegment) updateRails() {
	roadLeft, roadRight := RoadBounds(s.Size.Width, s.RoadWidth, s.HorizontalMargin)
	top := s.Position.Y
	bottom := s.Position.Y + s.Size.Height

	s.LeftRail = Rect{Top: top, Bottom: bottom, Left: s.Position.X, Right: s.Position.X + roadLeft}
	s.RightRail = Rect{Top: top, Bottom: bottom, Left: s.Position.X + roadRight, Right: s.Position.X + s.Size.Width}
}

// sync pushes the segment's geometry to its visual handle.
func (s *TrackSegment) sync() {
	if s.handle == nil {
		return
	}
	s.handle.SetPosition(s.Position)
	s.handle.SetSize(s.Size)
	s.handle.SetRoad(s.RoadWidth, s.HorizontalMargin)
}

// RoadBounds returns the left and right road edges within a row of the given
// width. The road is centered and then shifted right by margin. Both edges are
// clamped to the row so rails never have negative width.
func RoadBounds(rowWidth, roadWidth, margin float64) (left, right float64) {
	left = (rowWidth-roadWidth)/2 + margin
	right = left + roadWidth
	return clamp(left, 0, rowWidth), clamp(right, 0, rowWidth)
}

// SegmentState is a snapshot of one segment
type SegmentState struct {
	Index            int
	Position         Vec2
	Size             Size
	RoadWidth        float64
	HorizontalMargin float64
	LeftRail         Rect
	RightRail        Rect
}

// GetState returns a snapshot of the segment
func (s *TrackSegment) GetState() SegmentState {
	return SegmentState{
		Index:            s.Index,
		Position:         s.Position,
		Size:             s.Size,
		RoadWidth:        s.RoadWidth,
		HorizontalMargin: s.HorizontalMargin,
		LeftRail:         s.LeftRail,
		RightRail:        s.RightRail,
	}
}

// TrackPool owns a fixed ring of segments that scroll down the viewport.
// Segments that leave the bottom are moved back to the top and eased
// toward the target width and margin.
type TrackPool struct {
	scene    Scene
	tuning   config.Tuning
	segments []*TrackSegment
	recycled uint64
}

// NewTrackPool creates an empty pool. Call Init before Travel.
func NewTrackPool(scene Scene, tuning config.Tuning) *TrackPool {
	return &TrackPool{
		scene:  scene,
		tuning: tuning,
	}
}

// Initialized reports whether the segments have been created.
func (p *TrackPool) Initialized() bool {
	return len(p.segments) > 0
}

// Init creates all segments as a contiguous strip stacked upward from the
// viewport bottom, at the default width and zero margin. Calling Init on an
// initialized pool rewinds the existing segments instead of creating new ones.
func (p *TrackPool) Init(viewport Size) {
	n := p.tuning.TrackChunks
	if len(p.segments) == 0 {
		p.segments = make([]*TrackSegment, n)
		for i := range p.segments {
			p.segments[i] = &TrackSegment{
				Index:  i,
				handle: p.scene.CreateSegment(i),
			}
		}
	}

	for i, s := range p.segments {
		s.Position = Vec2{X: 0, Y: viewport.Height - p.tuning.TrackHeight*float64(i+1)}
		s.Size = Size{Width: viewport.Width, Height: p.tuning.TrackHeight}
		s.RoadWidth = p.tuning.DefaultTrackWidth
		s.HorizontalMargin = 0
		s.updateRails()
		s.sync()
	}
	p.recycled = 0
}

// Travel moves every segment down by one tick and recycles the ones that
// have fully scrolled past the viewport.
func (p *TrackPool) Travel(viewport Size) {
	view := RectFrom(Vec2{}, viewport)

	for _, s := range p.segments {
		s.Position.Y += p.tuning.TrackSpeed
		s.Size.Width = viewport.Width

		box := s.Box()
		if !Overlaps(box, view) && box.Top >= view.Bottom {
			p.recycle(s, viewport)
			continue
		}

		s.updateRails()
		s.sync()
	}
}

// recycle moves a segment to the head of the strip and eases its road.
func (p *TrackPool) recycle(s *TrackSegment, viewport Size) {
	s.Position.Y = viewport.Height - p.tuning.TrackHeight*float64(len(p.segments))
	s.RoadWidth = Approach(s.RoadWidth, p.tuning.TargetTrackWidth, p.tuning.WidenSpeed)
	s.HorizontalMargin = Approach(s.HorizontalMargin, p.tuning.TargetTrackMargin, p.tuning.WidenSpeed)
	s.updateRails()
	s.sync()

	p.recycled++
	if s.handle != nil {
		p.scene.RecycleSegment(s.handle)
	}
}

// Segments returns the pool's segments in index order.
// The slice is owned by the pool.
func (p *TrackPool) Segments() []*TrackSegment {
	return p.segments
}

// Len returns the pool size.
func (p *TrackPool) Len() int {
	return len(p.segments)
}

// Recycled returns the number of recycle events since Init.
func (p *TrackPool) Recycled() uint64 {
	return p.recycled
}

// Approach moves current toward target by at most step, snapping to target
// when it is within one step.
func Approach(current, target, step float64) float64 {
	switch {
	case current < target:
		if target-current <= step {
			return target
		}
		return current + step
	case current > target:
		if current-target <= step {
			return target
		}
		return current - step
	}
	return target
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
