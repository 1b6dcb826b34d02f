package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/race/scroller/internal/game"
)

func TestStatusLine(t *testing.T) {
	snap := game.Snapshot{
		Tick:    42,
		Input:   game.InputState{Direction: game.DirectionLeft, Pedal: game.PedalGas},
		Vehicle: game.VehicleState{Position: game.Vec2{X: 12.5, Y: 17}},
	}

	line := status(snap)
	assert.Contains(t, line, "tick 42")
	assert.Contains(t, line, "steer left")
	assert.Contains(t, line, "pedal gas")
	assert.Contains(t, line, "on track")

	snap.Crashed = true
	assert.True(t, strings.Contains(status(snap), "CRASH"))
}

func TestNilCrashToneIsSilent(t *testing.T) {
	var tone *crashTone
	assert.NotPanics(t, func() {
		tone.Play()
		tone.Close()
	})
}
