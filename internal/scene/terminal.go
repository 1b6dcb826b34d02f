package scene

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/race/scroller/internal/game"
)

// Glyphs
const (
	railRune    = '▓'
	laneRune    = '┆'
	vehicleRune = '█'
)

var (
	railStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	laneStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	vehicleStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	crashStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// Terminal draws the simulation into a tcell screen, one cell per unit.
// The bottom row is reserved for a status line.
type Terminal struct {
	mu sync.Mutex

	screen   tcell.Screen
	vehicle  game.Rect
	visible  bool
	crashed  bool
	segments []*terminalSegment
}

type terminalSegment struct {
	owner *Terminal

	index    int
	position game.Vec2
	size     game.Size
	width    float64
	margin   float64
}

// NewTerminal creates a terminal scene with the vehicle centered horizontally.
func NewTerminal(screen tcell.Screen, vehicle game.Size) *Terminal {
	t := &Terminal{screen: screen}
	viewport := t.ViewportSize()
	t.vehicle = game.RectFrom(game.Vec2{X: math.Floor((viewport.Width - vehicle.Width) / 2)}, vehicle)
	return t
}

// CreateSegment implements game.Scene.
func (t *Terminal) CreateSegment(index int) game.SegmentHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	seg := &terminalSegment{owner: t, index: index}
	t.segments = append(t.segments, seg)
	return seg
}

// RecycleSegment implements game.Scene. The next Draw picks up the new
// geometry, so nothing else is needed here.
func (t *Terminal) RecycleSegment(game.SegmentHandle) {}

// ViewportSize implements game.Scene.
func (t *Terminal) ViewportSize() game.Size {
	w, h := t.screen.Size()
	if h > 0 {
		h--
	}
	return game.Size{Width: float64(w), Height: float64(h)}
}

// SetVehicleVisible implements game.Scene.
func (t *Terminal) SetVehicleVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.visible = visible
}

// VehicleBox implements game.Scene.
func (t *Terminal) VehicleBox() game.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.vehicle
}

// SetVehiclePosition implements game.Scene.
func (t *Terminal) SetVehiclePosition(pos game.Vec2) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.vehicle = game.RectFrom(pos, game.Size{Width: t.vehicle.Width(), Height: t.vehicle.Height()})
}

// SetCrashed switches the vehicle to the crash color.
func (t *Terminal) SetCrashed(crashed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.crashed = crashed
}

// Draw renders track, vehicle, and the status line, then shows the frame.
func (t *Terminal) Draw(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	t.screen.Clear()

	for _, seg := range t.segments {
		t.drawSegment(seg, w, h-1)
	}

	if t.visible {
		style := vehicleStyle
		if t.crashed {
			style = crashStyle
		}
		t.fill(t.vehicle, w, h-1, vehicleRune, style)
	}

	for x := 0; x < w; x++ {
		t.screen.SetContent(x, h-1, ' ', nil, statusStyle)
	}
	for i, r := range []rune(status) {
		if i >= w {
			break
		}
		t.screen.SetContent(i, h-1, r, nil, statusStyle)
	}

	t.screen.Show()
}

func (t *Terminal) drawSegment(seg *terminalSegment, w, h int) {
	top := round(seg.position.Y)
	bottom := round(seg.position.Y + seg.size.Height)
	left, right := game.RoadBounds(seg.size.Width, seg.width, seg.margin)
	roadLeft := round(seg.position.X + left)
	roadRight := round(seg.position.X + right)
	lane := (roadLeft + roadRight) / 2

	for y := max(top, 0); y < min(bottom, h); y++ {
		for x := 0; x < w; x++ {
			switch {
			case x < roadLeft || x >= roadRight:
				t.screen.SetContent(x, y, railRune, nil, railStyle)
			case x == lane && seg.index%2 == 0:
				t.screen.SetContent(x, y, laneRune, nil, laneStyle)
			}
		}
	}
}

func (t *Terminal) fill(r game.Rect, w, h int, ch rune, style tcell.Style) {
	for y := max(round(r.Top), 0); y < min(round(r.Bottom), h); y++ {
		for x := max(round(r.Left), 0); x < min(round(r.Right), w); x++ {
			t.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// SetPosition implements game.SegmentHandle.
func (s *terminalSegment) SetPosition(pos game.Vec2) {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	s.position = pos
}

// SetSize implements game.SegmentHandle.
func (s *terminalSegment) SetSize(size game.Size) {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	s.size = size
}

// SetRoad implements game.SegmentHandle.
func (s *terminalSegment) SetRoad(width, margin float64) {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	s.width = width
	s.margin = margin
}

func round(v float64) int {
	return int(math.Round(v))
}
