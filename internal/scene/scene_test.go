package scene

import (
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/race/scroller/config"
	"github.com/race/scroller/internal/game"
)

// MockScreen is a minimal mock for tcell.Screen that records drawn cells
type MockScreen struct {
	tcell.Screen

	mu            sync.Mutex
	width, height int
	cells         map[[2]int]rune
	shown         int
}

func newMockScreen(w, h int) *MockScreen {
	return &MockScreen{width: w, height: h, cells: make(map[[2]int]rune)}
}

func (m *MockScreen) Size() (int, int) { return m.width, m.height }

func (m *MockScreen) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells = make(map[[2]int]rune)
}

func (m *MockScreen) Show() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown++
}

func (m *MockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[[2]int{x, y}] = mainc
}

func (m *MockScreen) at(x, y int) rune {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[[2]int{x, y}]
}

func (m *MockScreen) row(y int) string {
	out := make([]rune, m.width)
	for x := range out {
		r := m.at(x, y)
		if r == 0 {
			r = ' '
		}
		out[x] = r
	}
	return string(out)
}

func TestMemoryTracksCoreGeometry(t *testing.T) {
	mem := NewMemory(game.Size{Width: 200, Height: 100}, game.Size{Width: 20, Height: 34})
	assert.Equal(t, 90.0, mem.VehicleBox().Left)

	tu := config.DefaultTuning()
	tu.TrackChunks = 3
	tu.TrackHeight = 10
	tu.TrackSpeed = 1
	sim := game.NewSimulation(mem, tu)

	for i := 0; i < 100; i++ {
		require.True(t, sim.Tick())
	}

	assert.True(t, mem.VehicleVisible())
	segs := mem.Segments()
	require.Len(t, segs, 3)
	assert.Greater(t, mem.Recycled(), uint64(2))

	snap := sim.Snapshot()
	for i, seg := range segs {
		assert.Equal(t, i, seg.Index())
		assert.Equal(t, game.RectFrom(snap.Segments[i].Position, snap.Segments[i].Size), seg.Box())
		width, margin := seg.Road()
		assert.Equal(t, snap.Segments[i].RoadWidth, width)
		assert.Equal(t, snap.Segments[i].HorizontalMargin, margin)
	}
	assert.Equal(t, snap.Vehicle.Position.Y, mem.VehicleBox().Top)
}

func TestMemoryResetRestoresLayout(t *testing.T) {
	mem := NewMemory(game.Size{Width: 200, Height: 100}, game.Size{Width: 20, Height: 34})
	sim := game.NewSimulation(mem, config.DefaultTuning())

	require.True(t, sim.Tick())
	start := sim.Snapshot().Vehicle.Position

	sim.Press(config.KeyRight)
	for i := 0; i < 25; i++ {
		require.True(t, sim.Tick())
	}
	require.Greater(t, mem.VehicleBox().Left, start.X)

	sim.Reset()
	require.True(t, sim.Tick())

	snap := sim.Snapshot()
	assert.Equal(t, start, snap.Vehicle.Position)
	assert.Equal(t, start.X, mem.VehicleBox().Left)
	assert.False(t, snap.Crashed)
}

func TestTerminalDraw(t *testing.T) {
	screen := newMockScreen(40, 21)
	term := NewTerminal(screen, game.Size{Width: 3, Height: 2})

	assert.Equal(t, game.Size{Width: 40, Height: 20}, term.ViewportSize())
	assert.Equal(t, 18.0, term.VehicleBox().Left)

	tu := config.TerminalTuning()
	tu.TrackChunks = 20
	sim := game.NewSimulation(term, tu)
	require.True(t, sim.Tick())

	term.Draw("tick 1")
	assert.Equal(t, 1, screen.shown)

	// Road is 16 wide, centered: rails cover columns 0..11 and 28..39
	row := screen.row(5)
	assert.Equal(t, railRune, []rune(row)[0])
	assert.Equal(t, railRune, []rune(row)[11])
	assert.Equal(t, ' ', []rune(row)[12])
	assert.Equal(t, railRune, []rune(row)[28])

	// Vehicle bottom sits at 95% of the viewport
	vy := round(game.StartingY(20, 2, tu.StartOffset))
	assert.Equal(t, vehicleRune, screen.at(18, vy))
	assert.Equal(t, vehicleRune, screen.at(20, vy+1))

	assert.Equal(t, "tick 1", screen.row(20)[:6])
}

func TestTerminalHiddenVehicle(t *testing.T) {
	screen := newMockScreen(20, 11)
	term := NewTerminal(screen, game.Size{Width: 2, Height: 1})

	term.Draw("")
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			assert.NotEqual(t, vehicleRune, screen.at(x, y))
		}
	}
}

func TestKeyRelay(t *testing.T) {
	start := time.Unix(0, 0)
	relay := NewKeyRelay(100 * time.Millisecond)

	assert.True(t, relay.Press(config.KeyLeft, start))
	assert.False(t, relay.Press(config.KeyLeft, start.Add(50*time.Millisecond)), "repeat is not a new press")
	assert.True(t, relay.Press(config.KeyGas, start.Add(60*time.Millisecond)))

	assert.Empty(t, relay.Expire(start.Add(140*time.Millisecond)))
	assert.Equal(t, []int{config.KeyLeft}, relay.Expire(start.Add(150*time.Millisecond)))
	assert.False(t, relay.Held(config.KeyLeft))
	assert.True(t, relay.Held(config.KeyGas))
	assert.Equal(t, []int{config.KeyGas}, relay.Expire(start.Add(time.Second)))
}

func TestKeyRelayDefaultHold(t *testing.T) {
	relay := NewKeyRelay(0)
	now := time.Now()
	relay.Press(config.KeyRight, now)

	assert.Empty(t, relay.Expire(now.Add(DefaultKeyHold-time.Millisecond)))
	assert.Equal(t, []int{config.KeyRight}, relay.Expire(now.Add(DefaultKeyHold)))
}
