package game

import (
	"log"
)

// CrashSide identifies which rail the vehicle hit.
type CrashSide uint8

const (
	CrashLeft CrashSide = iota + 1
	CrashRight
)

func (s CrashSide) String() string {
	switch s {
	case CrashLeft:
		return "left"
	case CrashRight:
		return "right"
	}
	return "unknown"
}

// CrashEvent reports the vehicle overlapping one rail during a tick.
type CrashEvent struct {
	Tick    uint64
	Side    CrashSide
	Segment int
	// Fresh is true when this rail was not in contact on the previous tick.
	Fresh bool
}

type railKey struct {
	segment int
	side    CrashSide
}

// CrashDetector tests the vehicle against every rail in the pool and
// remembers which rails were in contact on the previous tick.
type CrashDetector struct {
	contacts map[railKey]bool
}

// NewCrashDetector creates a detector with no prior contacts
func NewCrashDetector() *CrashDetector {
	return &CrashDetector{
		contacts: make(map[railKey]bool),
	}
}

// Detect returns one event per rail the vehicle overlaps.
func (d *CrashDetector) Detect(tick uint64, vehicle Rect, segments []*TrackSegment) []CrashEvent {
	var events []CrashEvent
	current := make(map[railKey]bool, len(d.contacts))

	check := func(s *TrackSegment, side CrashSide, rail Rect) {
		if !Overlaps(vehicle, rail) {
			return
		}
		key := railKey{segment: s.Index, side: side}
		current[key] = true

		ev := CrashEvent{
			Tick:    tick,
			Side:    side,
			Segment: s.Index,
			Fresh:   !d.contacts[key],
		}
		if ev.Fresh {
			log.Printf("Vehicle crashed on the %s (segment %d, tick %d)", side, s.Index, tick)
		}
		events = append(events, ev)
	}

	for _, s := range segments {
		check(s, CrashLeft, s.LeftRail)
	}
	for _, s := range segments {
		check(s, CrashRight, s.RightRail)
	}

	d.contacts = current
	return events
}

// Reset forgets all previous contacts.
func (d *CrashDetector) Reset() {
	d.contacts = make(map[railKey]bool)
}
