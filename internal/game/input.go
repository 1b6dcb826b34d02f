package game

import "github.com/race/scroller/config"

// Action is the semantic meaning of a key.
type Action uint8

const (
	ActionNone Action = iota // Unmapped key
	ActionLeft
	ActionRight
	ActionGas
	ActionBrake
)

// Direction is the current steering direction.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	}
	return "none"
}

// Pedal is the current acceleration state. Gas and brake are exclusive.
type Pedal uint8

const (
	PedalNone Pedal = iota
	PedalGas
	PedalBrake
)

func (p Pedal) String() string {
	switch p {
	case PedalGas:
		return "gas"
	case PedalBrake:
		return "brake"
	}
	return "none"
}

// KeyTable maps raw key codes to actions.
var KeyTable = map[int]Action{
	config.KeyLeft:  ActionLeft,
	config.KeyGas:   ActionGas,
	config.KeyRight: ActionRight,
	config.KeyBrake: ActionBrake,
}

// LookupKey returns the action bound to a key code, or ActionNone.
func LookupKey(code int) Action {
	return KeyTable[code]
}

// InputState is the latest steering and pedal state.
type InputState struct {
	Direction Direction
	Pedal     Pedal
}

// Steering reports whether a direction is held.
func (s InputState) Steering() bool {
	return s.Direction != DirectionNone
}

// Accelerating reports whether a pedal is held.
func (s InputState) Accelerating() bool {
	return s.Pedal != PedalNone
}

// Reduce applies one key event to an input state.
//
// A press of an unmapped key resets everything to neutral. A release only
// clears a field when it still holds the value that action produced, so
// releasing a key that was superseded by a newer press changes nothing.
func Reduce(s InputState, a Action, pressed bool) InputState {
	if pressed {
		switch a {
		case ActionLeft:
			s.Direction = DirectionLeft
		case ActionRight:
			s.Direction = DirectionRight
		case ActionGas:
			s.Pedal = PedalGas
		case ActionBrake:
			s.Pedal = PedalBrake
		default:
			return InputState{}
		}
		return s
	}

	if d, ok := actionDirection(a); ok && s.Direction == d {
		s.Direction = DirectionNone
	}
	if p, ok := actionPedal(a); ok && s.Pedal == p {
		s.Pedal = PedalNone
	}
	return s
}

func actionDirection(a Action) (Direction, bool) {
	switch a {
	case ActionLeft:
		return DirectionLeft, true
	case ActionRight:
		return DirectionRight, true
	}
	return DirectionNone, false
}

func actionPedal(a Action) (Pedal, bool) {
	switch a {
	case ActionGas:
		return PedalGas, true
	case ActionBrake:
		return PedalBrake, true
	}
	return PedalNone, false
}

// InputController tracks the state produced by discrete key events.
// It is not safe for concurrent use; Simulation serializes access.
type InputController struct {
	state InputState
}

// NewInputController creates a controller in the neutral state
func NewInputController() *InputController {
	return &InputController{}
}

// Press handles a key-down event.
func (c *InputController) Press(code int) {
	c.state = Reduce(c.state, LookupKey(code), true)
}

// Release handles a key-up event.
func (c *InputController) Release(code int) {
	c.state = Reduce(c.state, LookupKey(code), false)
}

// State returns the current input state.
func (c *InputController) State() InputState {
	return c.state
}

// Reset returns the controller to neutral.
func (c *InputController) Reset() {
	c.state = InputState{}
}
