package scene

import (
	"sort"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/race/scroller/config"
)

// DefaultKeyHold is how long a key counts as held after its last press or
// auto-repeat. It must exceed the terminal's initial repeat delay.
const DefaultKeyHold = 550 * time.Millisecond

// KeyCode translates a tcell key event into the key code the simulation
// understands. Arrow keys map to the driving codes, runes to their upper-case
// code point, and everything else to the tcell key value.
func KeyCode(ev *tcell.EventKey) int {
	switch ev.Key() {
	case tcell.KeyLeft:
		return config.KeyLeft
	case tcell.KeyUp:
		return config.KeyGas
	case tcell.KeyRight:
		return config.KeyRight
	case tcell.KeyDown:
		return config.KeyBrake
	case tcell.KeyRune:
		return int(unicode.ToUpper(ev.Rune()))
	}
	return int(ev.Key())
}

// KeyRelay synthesizes key releases. Terminals only report presses (and
// auto-repeats), so a key is released once it has not repeated for hold.
type KeyRelay struct {
	hold time.Duration
	held map[int]time.Time
}

// NewKeyRelay creates a relay with the given hold duration
func NewKeyRelay(hold time.Duration) *KeyRelay {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &KeyRelay{
		hold: hold,
		held: make(map[int]time.Time),
	}
}

// Press records a press or repeat. It returns true for a new press.
func (r *KeyRelay) Press(code int, now time.Time) bool {
	_, held := r.held[code]
	r.held[code] = now
	return !held
}

// Expire releases every key whose last press is older than the hold
// duration and returns their codes in ascending order.
func (r *KeyRelay) Expire(now time.Time) []int {
	var released []int
	for code, last := range r.held {
		if now.Sub(last) >= r.hold {
			released = append(released, code)
			delete(r.held, code)
		}
	}
	sort.Ints(released)
	return released
}

// Held reports whether a key is currently considered held.
func (r *KeyRelay) Held(code int) bool {
	_, ok := r.held[code]
	return ok
}
