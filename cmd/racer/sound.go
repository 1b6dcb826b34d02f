package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	crashToneHz       = 880
	crashToneDuration = 50 * time.Millisecond
)

// crashTone plays a short beep when the vehicle first touches a rail.
type crashTone struct {
	sampleRate beep.SampleRate
}

func newCrashTone() (*crashTone, error) {
	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &crashTone{sampleRate: sampleRate}, nil
}

func (c *crashTone) Play() {
	if c == nil {
		return
	}

	sine, err := generators.SineTone(c.sampleRate, crashToneHz)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(c.sampleRate.N(crashToneDuration), sine))
}

func (c *crashTone) Close() {
	if c == nil {
		return
	}
	speaker.Close()
}
