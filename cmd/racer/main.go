// Command racer runs the track scroller in a terminal.
//
// Arrow keys steer and work the pedals, Ctrl-R restarts, Esc quits.
// Any other key is a panic stop: steering and pedals drop to neutral.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/race/scroller/config"
	"github.com/race/scroller/internal/game"
	"github.com/race/scroller/internal/scene"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

var (
	keyHold = flag.Duration("key-hold", scene.DefaultKeyHold, "Release a key after this long without a repeat")
	sound   = flag.Bool("sound", false, "Beep when the car hits a rail")
	logPath = flag.String("log", "", "Write logs to this file (discarded when empty)")
)

// vehicleSize is the car in terminal cells
var vehicleSize = game.Size{Width: 3, Height: 2}

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	tuning := config.TerminalTuning()
	if err := tuning.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid tuning: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	// Restore the terminal even if the game panics
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "racer crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	var tone *crashTone
	if *sound {
		tone, err = newCrashTone()
		if err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		}
		defer tone.Close()
	}

	term := scene.NewTerminal(screen, vehicleSize)
	sim := game.NewSimulation(term, tuning)
	sim.OnCrash(func(ev game.CrashEvent) {
		if ev.Fresh {
			tone.Play()
		}
	})

	log.Printf("Starting: %d segments, tick %v", tuning.TrackChunks, tuning.TickInterval)
	sim.Start()
	defer sim.Stop()

	run(screen, term, sim, scene.NewKeyRelay(*keyHold))
}

// run pumps terminal events into the simulation and redraws on every frame
// until the player quits.
func run(screen tcell.Screen, term *scene.Terminal, sim *game.Simulation, relay *scene.KeyRelay) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !handleEvent(ev, screen, sim, relay) {
				return
			}

		case now := <-ticker.C:
			for _, code := range relay.Expire(now) {
				sim.Release(code)
			}

			snap := sim.Snapshot()
			term.SetCrashed(snap.Crashed)
			term.Draw(status(snap))
		}
	}
}

// handleEvent applies one terminal event. It returns false to quit.
func handleEvent(ev tcell.Event, screen tcell.Screen, sim *game.Simulation, relay *scene.KeyRelay) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyCtrlR:
			sim.Reset()
			return true
		}

		// Repeats re-press the key; presses are idempotent
		code := scene.KeyCode(ev)
		relay.Press(code, time.Now())
		sim.Press(code)

	case *tcell.EventResize:
		screen.Sync()
	}

	return true
}

func status(s game.Snapshot) string {
	state := "on track"
	if s.Crashed {
		state = "CRASH"
	}
	return fmt.Sprintf(" tick %-8d x %6.1f y %6.1f  steer %-5s pedal %-5s  %-8s  ←→ steer ↑ gas ↓ brake  ^R restart  Esc quit",
		s.Tick, s.Vehicle.Position.X, s.Vehicle.Position.Y, s.Input.Direction, s.Input.Pedal, state)
}
