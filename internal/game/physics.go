package game

import (
	"github.com/race/scroller/config"
)

// Motion moves the vehicle by fixed per-tick deltas.
type Motion struct {
	scene  Scene
	tuning config.Tuning

	layout    Rect // Vehicle box as laid out by the scene, read once
	hasLayout bool
}

// NewMotion creates a motion stepper bound to a scene
func NewMotion(scene Scene, tuning config.Tuning) *Motion {
	return &Motion{
		scene:  scene,
		tuning: tuning,
	}
}

// UpdateVehicle advances the vehicle by one tick of input.
//
// On the first tick the vehicle is placed near the bottom of the viewport
// and made visible. There is no clamp against the viewport edges: leaving
// the road is only caught by rail collision.
func (m *Motion) UpdateVehicle(v *Vehicle, input InputState, viewport Size) {
	if !v.Placed {
		m.place(v, viewport)
	}

	if input.Steering() {
		if input.Direction == DirectionLeft {
			v.Position.X -= m.tuning.SteeringSpeed
		} else {
			v.Position.X += m.tuning.SteeringSpeed
		}
	}

	if input.Accelerating() {
		if input.Pedal == PedalGas {
			v.Position.Y -= m.tuning.GasSpeed
		} else {
			v.Position.Y += m.tuning.BrakeSpeed
		}
	}

	m.scene.SetVehiclePosition(v.Position)
}

// place puts the vehicle at its laid-out X and the starting offset.
// The scene's box moves with the vehicle, so the layout is captured on the
// first placement and reused after a reset.
func (m *Motion) place(v *Vehicle, viewport Size) {
	if !m.hasLayout {
		m.layout = m.scene.VehicleBox()
		m.hasLayout = true
	}
	box := m.layout

	v.Size = Size{Width: box.Width(), Height: box.Height()}
	v.Position.X = box.Left
	v.Position.Y = StartingY(viewport.Height, v.Size.Height, m.tuning.StartOffset)
	v.Placed = true

	m.scene.SetVehicleVisible(true)
}

// StartingY returns the top of a vehicle whose bottom sits at offset
// (a fraction) of the viewport height.
func StartingY(viewportHeight, vehicleHeight, offset float64) float64 {
	return viewportHeight*offset - vehicleHeight
}
