package emulator

import (
	"errors"
	"sync"
	"time"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/logger"
)

// Emulator paces a chip8.Chip8 against wall-clock time and holds the host
// state the frontends share: pause/step mode, window focus, the halting
// error and the optional buzzer recording.
//
// All methods are safe for concurrent use. Frontends that render on a
// different goroutine to the one advancing the machine read the machine only
// through Snapshot.
type Emulator struct {
	crit sync.Mutex

	rom   []byte
	cfg   Config
	chip8 *chip8.Chip8
	clock *Clock
	wav   *WavWriter

	paused bool
	focus  bool

	// the error that stopped the machine. cleared by Reset
	halted error
}

// Snapshot is a copy of everything a frontend draws.
type Snapshot struct {
	Display   [chip8.DisplayW * chip8.DisplayH]uint8
	Registers chip8.State
	Keys      [chip8.NumKeys]bool
	Opcode    uint16
	History   []string
	Beeping   bool
	Paused    bool
	Halted    error
}

func New(rom []byte, cfg Config) (*Emulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Emulator{
		rom:    rom,
		cfg:    cfg,
		clock:  NewClock(cfg.InstructionsPerSecond, cfg.TimerHz),
		paused: cfg.StepMode,
		focus:  true,
	}

	c, err := e.newChip8()
	if err != nil {
		return nil, err
	}
	e.chip8 = c

	if cfg.WavFile != "" {
		e.wav, err = NewWavWriter(cfg.WavFile, cfg.TimerHz)
		if err != nil {
			return nil, err
		}
	}

	logger.Logf("emulator", "loaded %d byte rom, %d instructions/s, timers at %d Hz",
		len(rom), cfg.InstructionsPerSecond, cfg.TimerHz)
	return e, nil
}

func (e *Emulator) newChip8() (*chip8.Chip8, error) {
	var c *chip8.Chip8
	if e.cfg.Seed != 0 {
		c = chip8.NewWithSeed(e.cfg.Seed)
	} else {
		c = chip8.New()
	}
	if err := c.LoadROM(e.rom); err != nil {
		return nil, err
	}
	return c, nil
}

// Advance runs the instructions and timer ticks due after elapsed time. Timer
// ticks are spread evenly between the instructions. Nothing runs while the
// emulator is paused, unfocused or halted, and that time is not made up
// later.
//
// The error from a failing instruction is returned once, after which the
// emulator stays halted until Reset.
func (e *Emulator) Advance(elapsed time.Duration) error {
	e.crit.Lock()
	defer e.crit.Unlock()

	steps, ticks := e.clock.Advance(elapsed)
	if e.paused || !e.focus || e.halted != nil {
		return nil
	}

	done := 0
	for i := 0; i < steps; i++ {
		if err := e.step(); err != nil {
			return err
		}
		for ; done < (i+1)*ticks/steps; done++ {
			e.tick()
		}
	}
	for ; done < ticks; done++ {
		e.tick()
	}
	return nil
}

func (e *Emulator) step() error {
	if err := e.chip8.Step(); err != nil {
		e.halted = err
		logger.Logf("emulator", "halted: %v", err)
		return err
	}
	return nil
}

func (e *Emulator) tick() {
	if e.wav != nil {
		e.wav.Tick(e.chip8.Beeping())
	}
	e.chip8.DecrementTimers()
}

// StepOnce executes a single instruction regardless of pause state.
func (e *Emulator) StepOnce() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.halted != nil {
		return e.halted
	}
	return e.step()
}

// Reset replaces the machine with a fresh one running the same ROM.
func (e *Emulator) Reset() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	c, err := e.newChip8()
	if err != nil {
		return err
	}
	e.chip8 = c
	e.halted = nil
	e.clock.Reset()
	logger.Log("emulator", "reset")
	return nil
}

func (e *Emulator) SetKey(key uint8, pressed bool) {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.chip8.SetKey(key, pressed)
}

// SetFocus pauses the machine while the frontend window is not focused.
func (e *Emulator) SetFocus(focus bool) {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.focus = focus
}

func (e *Emulator) SetPaused(paused bool) {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.setPaused(paused)
}

func (e *Emulator) TogglePause() {
	e.crit.Lock()
	defer e.crit.Unlock()
	e.setPaused(!e.paused)
}

func (e *Emulator) setPaused(paused bool) {
	if e.paused == paused {
		return
	}
	e.paused = paused
	if paused {
		logger.Log("emulator", "step mode")
	} else {
		logger.Log("emulator", "running")
	}
}

func (e *Emulator) Paused() bool {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.paused
}

// Halted returns the error that stopped the machine, if any.
func (e *Emulator) Halted() error {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.halted
}

// Beeping reports whether the buzzer should sound.
func (e *Emulator) Beeping() bool {
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.halted == nil && !e.paused && e.focus && e.chip8.Beeping()
}

func (e *Emulator) Snapshot() Snapshot {
	e.crit.Lock()
	defer e.crit.Unlock()

	return Snapshot{
		Display:   e.chip8.Display(),
		Registers: e.chip8.Registers(),
		Keys:      e.chip8.Keys(),
		Opcode:    e.chip8.Opcode(),
		History:   e.chip8.History(),
		Beeping:   e.chip8.Beeping(),
		Paused:    e.paused,
		Halted:    e.halted,
	}
}

// Close finishes the buzzer recording, if there is one.
func (e *Emulator) Close() error {
	e.crit.Lock()
	defer e.crit.Unlock()

	if e.wav == nil {
		return nil
	}
	err := e.wav.Close()
	e.wav = nil
	return err
}

// IsHalt reports whether err is one of the machine errors that halt the
// emulator, as opposed to a host failure.
func IsHalt(err error) bool {
	return errors.Is(err, chip8.ErrStackOverflow) ||
		errors.Is(err, chip8.ErrStackUnderflow) ||
		errors.Is(err, chip8.ErrAddressOutOfRange)
}
