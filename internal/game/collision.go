package game

// Vec2 is a point in viewport coordinates (y grows downward).
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Top, Right, Bottom, Left float64
}

// RectFrom builds the bounding box of an element at pos with the given size.
func RectFrom(pos Vec2, size Size) Rect {
	return Rect{
		Top:    pos.Y,
		Right:  pos.X + size.Width,
		Bottom: pos.Y + size.Height,
		Left:   pos.X,
	}
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Empty reports whether the box has no area. Geometry that was never
// attached to the scene shows up as an empty box.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Overlaps reports whether two boxes intersect. Boxes that only share an
// edge do not overlap, and an empty box overlaps nothing.
func Overlaps(a, b Rect) bool {
	if a.Empty() || b.Empty() {
		return false
	}

	if a.Right <= b.Left || a.Left >= b.Right {
		return false
	}
	if a.Top >= b.Bottom || a.Bottom <= b.Top {
		return false
	}
	return true
}
