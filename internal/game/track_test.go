package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackPoolInit(t *testing.T) {
	scene := newStubScene(200, 100)
	tu := testTuning()
	pool := NewTrackPool(scene, tu)
	pool.Init(scene.ViewportSize())

	require.Equal(t, tu.TrackChunks, pool.Len())
	require.Len(t, scene.segments, tu.TrackChunks)

	for i, s := range pool.Segments() {
		assert.Equal(t, i, s.Index)
		assert.InDelta(t, 100-10*float64(i+1), s.Position.Y, 1e-9)
		assert.Equal(t, tu.DefaultTrackWidth, s.RoadWidth)
		assert.Zero(t, s.HorizontalMargin)
		assert.Equal(t, Rect{Top: s.Position.Y, Bottom: s.Position.Y + 10, Left: 0, Right: 50}, s.LeftRail)
		assert.Equal(t, Rect{Top: s.Position.Y, Bottom: s.Position.Y + 10, Left: 150, Right: 200}, s.RightRail)
		assert.Equal(t, s.Position, scene.segments[i].pos)
	}

	// Segments above each other are contiguous
	segs := pool.Segments()
	for i := 1; i < len(segs); i++ {
		assert.InDelta(t, segs[i-1].Position.Y, segs[i].Box().Bottom, 1e-9)
	}
}

func TestTrackPoolReinitReusesSegments(t *testing.T) {
	scene := newStubScene(200, 100)
	pool := NewTrackPool(scene, testTuning())
	pool.Init(scene.ViewportSize())
	first := pool.Segments()[0]

	pool.Travel(scene.ViewportSize())
	pool.Init(scene.ViewportSize())

	assert.Same(t, first, pool.Segments()[0])
	assert.Len(t, scene.segments, 3, "Init must not create new segments")
}

func TestTrackPoolEverySegmentRecycled(t *testing.T) {
	scene := newStubScene(200, 100)
	tu := testTuning()
	pool := NewTrackPool(scene, tu)
	pool.Init(scene.ViewportSize())

	for i := 0; i < int(scene.viewport.Height); i++ {
		pool.Travel(scene.ViewportSize())
		require.Equal(t, tu.TrackChunks, pool.Len(), "pool size is fixed")
	}

	for _, seg := range scene.segments {
		assert.GreaterOrEqual(t, seg.recycled, 1, "segment %d never recycled", seg.index)
	}
	assert.Len(t, scene.segments, tu.TrackChunks)
}

func TestTrackPoolRecycleMovesToHead(t *testing.T) {
	scene := newStubScene(200, 100)
	pool := NewTrackPool(scene, testTuning())
	pool.Init(scene.ViewportSize())

	// Segment 0 starts at y=90 and leaves the viewport after 10 ticks
	for i := 0; i < 9; i++ {
		pool.Travel(scene.ViewportSize())
	}
	assert.Zero(t, pool.Recycled())

	pool.Travel(scene.ViewportSize())
	assert.Equal(t, uint64(1), pool.Recycled())

	seg := pool.Segments()[0]
	assert.InDelta(t, 100-10*3, seg.Position.Y, 1e-9)
	assert.Equal(t, 1, scene.segments[0].recycled)
	assert.Equal(t, seg.Position, scene.segments[0].pos)

	// The strip stays contiguous: segment 2 sits right below the new head
	assert.InDelta(t, seg.Box().Bottom, pool.Segments()[2].Position.Y, 1e-9)
}

func TestTrackPoolEasesTowardTarget(t *testing.T) {
	scene := newStubScene(200, 100)
	tu := testTuning()
	pool := NewTrackPool(scene, tu)
	pool.Init(scene.ViewportSize())
	seg := pool.Segments()[0]

	widths := []float64{seg.RoadWidth}
	margins := []float64{seg.HorizontalMargin}
	for pool.Recycled() < 12 {
		before := scene.segments[0].recycled
		pool.Travel(scene.ViewportSize())
		if scene.segments[0].recycled > before {
			widths = append(widths, seg.RoadWidth)
			margins = append(margins, seg.HorizontalMargin)
		}
	}

	for i := 1; i < len(widths); i++ {
		assert.LessOrEqual(t, math.Abs(widths[i]-widths[i-1]), tu.WidenSpeed)
		assert.LessOrEqual(t, math.Abs(widths[i]-tu.TargetTrackWidth), math.Abs(widths[i-1]-tu.TargetTrackWidth))
		assert.LessOrEqual(t, math.Abs(margins[i]-margins[i-1]), tu.WidenSpeed)
		assert.LessOrEqual(t, math.Abs(margins[i]-tu.TargetTrackMargin), math.Abs(margins[i-1]-tu.TargetTrackMargin))
	}
	assert.Equal(t, tu.TargetTrackWidth, seg.RoadWidth)
	assert.Equal(t, tu.TargetTrackMargin, seg.HorizontalMargin)
	assert.Equal(t, tu.TargetTrackWidth, scene.segments[0].width)

	left, right := RoadBounds(200, tu.TargetTrackWidth, tu.TargetTrackMargin)
	assert.Equal(t, left, seg.LeftRail.Right)
	assert.Equal(t, right, seg.RightRail.Left)
}

func TestApproach(t *testing.T) {
	tests := []struct {
		name                  string
		current, target, step float64
		want                  float64
	}{
		{"widen", 100, 120, 5, 105},
		{"narrow", 120, 100, 5, 115},
		{"snap up", 98, 100, 5, 100},
		{"snap down", 102, 100, 5, 100},
		{"at target", 100, 100, 5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Approach(tt.current, tt.target, tt.step)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, math.Abs(got-tt.target), math.Abs(tt.current-tt.target))
			assert.LessOrEqual(t, math.Abs(got-tt.current), tt.step)
		})
	}
}

func TestRoadBounds(t *testing.T) {
	left, right := RoadBounds(200, 100, 0)
	assert.Equal(t, 50.0, left)
	assert.Equal(t, 150.0, right)

	left, right = RoadBounds(200, 100, 20)
	assert.Equal(t, 70.0, left)
	assert.Equal(t, 170.0, right)

	left, right = RoadBounds(200, 100, 120)
	assert.Equal(t, 170.0, left)
	assert.Equal(t, 200.0, right, "edges clamp to the row")
}
