package emulator

import (
	"errors"
	"fmt"
)

// MaxRate caps InstructionsPerSecond and TimerHz.
const MaxRate = 1000000

const (
	FrontendSDL      = "sdl"
	FrontendEbiten   = "ebiten"
	FrontendTerminal = "terminal"
)

// Frontends lists the accepted values of Config.Frontend.
var Frontends = []string{FrontendSDL, FrontendEbiten, FrontendTerminal}

// Config collects the host settings. The zero value is not usable, start from
// DefaultConfig.
type Config struct {
	// instructions executed per second of wall-clock time
	InstructionsPerSecond int

	// timer decrements per second of wall-clock time
	TimerHz int

	// seed for the Cxnn random number generator, 0 seeds from the clock
	Seed int64

	// start paused, instructions are then executed one at a time on request
	StepMode bool

	// buzzer output is recorded to this file when not empty
	WavFile string

	Frontend string
	Scale    int
}

func DefaultConfig() Config {
	return Config{
		InstructionsPerSecond: 600,
		TimerHz:               60,
		Frontend:              FrontendSDL,
		Scale:                 10,
	}
}

// Validate checks that the settings describe a runnable emulator.
func (c Config) Validate() error {
	if c.InstructionsPerSecond <= 0 || c.InstructionsPerSecond > MaxRate {
		return fmt.Errorf("config: instructions per second must be between 1 and %d, got %d", MaxRate, c.InstructionsPerSecond)
	}
	if c.TimerHz <= 0 || c.TimerHz > MaxRate {
		return fmt.Errorf("config: timer rate must be between 1 and %d, got %d", MaxRate, c.TimerHz)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("config: scale must be positive, got %d", c.Scale)
	}
	if c.WavFile != "" && WavSampleRate%c.TimerHz != 0 {
		return fmt.Errorf("config: timer rate %d does not divide the wav sample rate %d", c.TimerHz, WavSampleRate)
	}
	for _, f := range Frontends {
		if c.Frontend == f {
			return nil
		}
	}
	return errors.New("config: unknown frontend " + c.Frontend)
}
