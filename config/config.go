package config

import (
	"errors"
	"fmt"
	"time"
)

// Key codes for the four driving actions. Remote clients send these raw
// values; the terminal front end translates arrow keys into them.
const (
	KeyLeft  = 37
	KeyGas   = 38
	KeyRight = 39
	KeyBrake = 40
)

// Vehicle and viewport defaults for the pixel-space presentation
const (
	CarWidth       = 20
	CarHeight      = 34
	ViewportWidth  = 480
	ViewportHeight = 720
)

// Network
const (
	NetworkBroadcastRate = 20 // Hz
	MaxSessionsPerServer = 50
	SessionIdleTimeout   = 2 * time.Minute
)

// MaxTrackChunks is the largest pool the wire protocol can describe.
const MaxTrackChunks = 255

// Tuning holds every constant the simulation core reads.
// All distances are in presentation units (pixels or terminal cells),
// all speeds are per tick.
type Tuning struct {
	TickInterval time.Duration

	TrackSpeed    float64 // Vertical travel of every segment per tick
	SteeringSpeed float64
	GasSpeed      float64
	BrakeSpeed    float64

	TrackChunks       int     // Fixed pool size
	TrackHeight       float64 // Height of a single segment
	DefaultTrackWidth float64 // Road width segments start with
	TargetTrackWidth  float64
	TargetTrackMargin float64
	WidenSpeed        float64 // Maximum width/margin change per recycle

	// StartOffset positions the vehicle bottom at this fraction of the
	// viewport height on the first tick.
	StartOffset float64
}

// DefaultTuning returns pixel-space constants matching the browser client.
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:      5 * time.Millisecond,
		TrackSpeed:        0.1,
		SteeringSpeed:     3,
		GasSpeed:          1,
		BrakeSpeed:        2,
		TrackChunks:       48,
		TrackHeight:       16,
		DefaultTrackWidth: 160,
		TargetTrackWidth:  320,
		TargetTrackMargin: 40,
		WidenSpeed:        2,
		StartOffset:       0.95,
	}
}

// TerminalTuning returns cell-space constants for the tcell front end.
// A terminal row is one segment, so speeds are scaled down accordingly.
func TerminalTuning() Tuning {
	return Tuning{
		TickInterval:      5 * time.Millisecond,
		TrackSpeed:        0.02,
		SteeringSpeed:     0.1,
		GasSpeed:          0.04,
		BrakeSpeed:        0.08,
		TrackChunks:       60,
		TrackHeight:       1,
		DefaultTrackWidth: 16,
		TargetTrackWidth:  36,
		TargetTrackMargin: 6,
		WidenSpeed:        1,
		StartOffset:       0.95,
	}
}

// Validate reports the first constant that would break the simulation.
func (t Tuning) Validate() error {
	switch {
	case t.TickInterval <= 0:
		return fmt.Errorf("tick interval %v: %w", t.TickInterval, ErrInvalidTuning)
	case t.TrackChunks <= 0 || t.TrackChunks > MaxTrackChunks:
		return fmt.Errorf("track chunks %d outside 1..%d: %w", t.TrackChunks, MaxTrackChunks, ErrInvalidTuning)
	case t.TrackHeight <= 0:
		return fmt.Errorf("track height %v: %w", t.TrackHeight, ErrInvalidTuning)
	case t.TrackSpeed <= 0:
		return fmt.Errorf("track speed %v: %w", t.TrackSpeed, ErrInvalidTuning)
	case t.WidenSpeed <= 0:
		return fmt.Errorf("widen speed %v: %w", t.WidenSpeed, ErrInvalidTuning)
	case t.DefaultTrackWidth < 0 || t.TargetTrackWidth < 0:
		return fmt.Errorf("negative track width: %w", ErrInvalidTuning)
	}
	return nil
}

// ErrInvalidTuning is wrapped by every Validate failure.
var ErrInvalidTuning = errors.New("invalid tuning")

// Server configuration
type ServerConfig struct {
	Host       string
	Port       int
	EnableCORS bool

	MaxSessions    int
	BroadcastRate  int // Frames per second sent to each client
	ViewportWidth  int
	ViewportHeight int
	VehicleWidth   float64
	VehicleHeight  float64

	Tuning Tuning
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		EnableCORS:     true,
		MaxSessions:    MaxSessionsPerServer,
		BroadcastRate:  NetworkBroadcastRate,
		ViewportWidth:  ViewportWidth,
		ViewportHeight: ViewportHeight,
		VehicleWidth:   CarWidth,
		VehicleHeight:  CarHeight,
		Tuning:         DefaultTuning(),
	}
}

// BroadcastInterval returns the time between frames sent to a client.
// A non-positive rate falls back to NetworkBroadcastRate.
func (c *ServerConfig) BroadcastInterval() time.Duration {
	if c.BroadcastRate <= 0 {
		return time.Second / NetworkBroadcastRate
	}
	return time.Second / time.Duration(c.BroadcastRate)
}
