package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/frontend/ebitenwindow"
	"github.com/tuboc/chip8vm/frontend/sdlwindow"
	"github.com/tuboc/chip8vm/frontend/terminal"
	"github.com/tuboc/chip8vm/logger"
	"github.com/tuboc/chip8vm/statsview"
)

var defaults = emulator.DefaultConfig()

var filename = flag.String("f", "", "chip8 image file path")
var stepMode = flag.Bool("s", false, "start with stepMode")
var hz = flag.Int("hz", defaults.InstructionsPerSecond, "instructions per second")
var timerHz = flag.Int("timerhz", defaults.TimerHz, "delay and sound timer ticks per second")
var frontend = flag.String("frontend", defaults.Frontend, "one of "+strings.Join(emulator.Frontends, ", "))
var scale = flag.Int("scale", defaults.Scale, "window pixels per chip8 pixel")
var seed = flag.Int64("seed", 0, "random number seed, 0 for a time based seed")
var wavFile = flag.String("wav", "", "record the buzzer to a wav file")
var echoLog = flag.Bool("log", false, "echo log entries to stderr")
var stats = flag.String("statsview", "", "serve runtime stats on this address, e.g. "+statsview.DefaultAddress+" (statsview builds only)")

func init() {
	// SDL and ebiten must own the main thread
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if *filename == "" && flag.NArg() > 0 {
		*filename = flag.Arg(0)
	}
	if *filename == "" {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] rom\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *echoLog {
		logger.SetEcho(os.Stderr)
	}
	if *stats != "" {
		if statsview.Available() {
			defer statsview.Launch(*stats)()
		} else {
			logger.Log("statsview", "not available in this build")
		}
	}

	binary, err := os.ReadFile(*filename)
	if err != nil {
		log.Fatalf("ReadFile: %v", err)
	}

	cfg := emulator.Config{
		InstructionsPerSecond: *hz,
		TimerHz:               *timerHz,
		Seed:                  *seed,
		StepMode:              *stepMode,
		WavFile:               *wavFile,
		Frontend:              *frontend,
		Scale:                 *scale,
	}

	emu, err := emulator.New(binary, cfg)
	if err != nil {
		log.Fatalf("NewEmulator: %v", err)
	}

	err = run(emu, cfg)
	if cerr := emu.Close(); cerr != nil {
		log.Printf("Close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("Run: %v", err)
	}
}

func run(emu *emulator.Emulator, cfg emulator.Config) error {
	switch cfg.Frontend {
	case emulator.FrontendEbiten:
		return ebitenwindow.New(emu, cfg.Scale).Run()

	case emulator.FrontendTerminal:
		return terminal.New(emu).Run()

	default:
		w, err := sdlwindow.New(emu, cfg.Scale)
		if err != nil {
			return err
		}
		defer w.Destroy()
		return w.Run()
	}
}
