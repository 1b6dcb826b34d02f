package game

// Scene is the presentation layer the simulation drives.
// Implementations must be safe to call from the tick goroutine.
type Scene interface {
	// CreateSegment attaches a new visual track segment.
	CreateSegment(index int) SegmentHandle
	// RecycleSegment signals that a segment was moved back to the head of
	// the strip. Geometry has already been pushed through the handle.
	RecycleSegment(h SegmentHandle)

	ViewportSize() Size

	SetVehicleVisible(visible bool)
	// VehicleBox returns the vehicle's bounding box as laid out by the
	// presentation before the first tick.
	VehicleBox() Rect
	SetVehiclePosition(pos Vec2)
}

// SegmentHandle is the visual side of one TrackSegment.
type SegmentHandle interface {
	SetPosition(pos Vec2)
	SetSize(size Size)
	SetRoad(width, margin float64)
}
