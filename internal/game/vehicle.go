package game

// Vehicle is the player's car.
type Vehicle struct {
	Position Vec2
	Size     Size

	// Placed is false until the first tick sets the starting position.
	Placed bool
}

// Box returns the vehicle's bounding box. An unplaced vehicle has no box.
func (v *Vehicle) Box() Rect {
	if !v.Placed {
		return Rect{}
	}
	return RectFrom(v.Position, v.Size)
}

// VehicleState is a snapshot of the vehicle
type VehicleState struct {
	Position Vec2
	Size     Size
	Visible  bool
}

// GetState returns a snapshot of the vehicle
func (v *Vehicle) GetState() VehicleState {
	return VehicleState{
		Position: v.Position,
		Size:     v.Size,
		Visible:  v.Placed,
	}
}
