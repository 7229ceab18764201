// Package sdlwindow runs the emulator in an SDL window with a beeper. Below
// the screen a debug panel shows the instruction history, the registers and
// the keypad.
//
// Keys: the hex keypad is on 1234/QWER/ASDF/ZXCV. Space steps one
// instruction (entering step mode if running), Return leaves step mode,
// Backspace resets the machine and Escape quits.
package sdlwindow

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/colornames"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/logger"
)

const (
	VBlankFrequency = 60
	AudioSamples    = 64
	windowTitle     = "Chip-8 Emulator"
)

type Window struct {
	emu      *emulator.Emulator
	window   *sdl.Window
	renderer *sdl.Renderer
	audio    sdl.AudioDeviceID
	scale    int32
	running  bool
	title    string
	beep     []byte
}

var scanCode2Rune = map[int]rune{
	sdl.SCANCODE_1: '1',
	sdl.SCANCODE_2: '2',
	sdl.SCANCODE_3: '3',
	sdl.SCANCODE_4: '4',
	sdl.SCANCODE_Q: 'q',
	sdl.SCANCODE_W: 'w',
	sdl.SCANCODE_E: 'e',
	sdl.SCANCODE_R: 'r',
	sdl.SCANCODE_A: 'a',
	sdl.SCANCODE_S: 's',
	sdl.SCANCODE_D: 'd',
	sdl.SCANCODE_F: 'f',
	sdl.SCANCODE_Z: 'z',
	sdl.SCANCODE_X: 'x',
	sdl.SCANCODE_C: 'c',
	sdl.SCANCODE_V: 'v',
}

// New opens the window and audio device. Must be called from the main
// thread.
func New(emu *emulator.Emulator, scale int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdlwindow: %w", err)
	}

	w := &Window{
		emu:     emu,
		scale:   int32(scale),
		running: true,
		beep:    sineWave(),
	}

	var err error
	w.window, err = sdl.CreateWindow(windowTitle, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		chip8.DisplayW*w.scale, chip8.DisplayH*w.scale+InfoH, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdlwindow: %w", err)
	}

	w.renderer, err = sdl.CreateRenderer(w.window, -1, sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		w.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlwindow: %w", err)
	}

	w.audio, err = openAudio()
	if err != nil {
		// the emulator is still usable without sound
		logger.Logf("sdlwindow", "no audio: %v", err)
	}

	return w, nil
}

func openAudio() (sdl.AudioDeviceID, error) {
	want := &sdl.AudioSpec{
		Freq:     AudioSamples * VBlankFrequency,
		Format:   sdl.AUDIO_F32LSB,
		Channels: 1,
		Samples:  AudioSamples,
	}
	have := &sdl.AudioSpec{}
	audio, err := sdl.OpenAudioDevice("", false, want, have, 0)
	if err != nil {
		return 0, err
	}
	sdl.PauseAudioDevice(audio, false)
	return audio, nil
}

// sineWave is one vblank worth of float32 samples.
func sineWave() []byte {
	samples := make([]byte, 4*AudioSamples)
	for i := 0; i < len(samples); i += 4 {
		f := 2.0 * math.Pi / 180.0 * float64(360*i/AudioSamples)
		f = math.Sin(f)
		binary.LittleEndian.PutUint32(samples[i:], math.Float32bits(float32(f)))
	}
	return samples
}

// Run is the host loop: advance the emulator by the time since the last
// frame, draw, sound the beeper and handle input until the window is closed.
func (w *Window) Run() error {
	last := time.Now()
	for w.running {
		now := time.Now()
		if err := w.emu.Advance(now.Sub(last)); err != nil && !emulator.IsHalt(err) {
			return err
		}
		last = now

		if err := w.draw(); err != nil {
			return err
		}
		w.updateSound()
		w.updateTitle()
		w.pollEvents()
	}
	return nil
}

func (w *Window) draw() error {
	s := w.emu.Snapshot()

	w.renderer.SetDrawColor(0, 0, 0, 255)
	w.renderer.Clear()

	on := colornames.Lime
	if s.Halted != nil {
		on = colornames.Red
	}
	w.renderer.SetDrawColor(on.R, on.G, on.B, on.A)
	for y := int32(0); y < chip8.DisplayH; y++ {
		for x := int32(0); x < chip8.DisplayW; x++ {
			if s.Display[y*chip8.DisplayW+x] != chip8.PixelOff {
				err := w.renderer.FillRect(&sdl.Rect{X: x * w.scale, Y: y * w.scale, W: w.scale, H: w.scale})
				if err != nil {
					return fmt.Errorf("sdlwindow: %w", err)
				}
			}
		}
	}

	if err := w.drawDebugInfo(s); err != nil {
		return err
	}

	w.renderer.Present()
	return nil
}

func (w *Window) drawDebugInfo(s emulator.Snapshot) error {
	top := chip8.DisplayH * w.scale
	width := chip8.DisplayW * w.scale

	w.renderer.SetDrawColor(32, 32, 32, 255)
	if err := w.renderer.FillRect(&sdl.Rect{X: 0, Y: top, W: width, H: InfoH}); err != nil {
		return fmt.Errorf("sdlwindow: %w", err)
	}

	points := overlayPoints(renderOverlay(s, int(width)), top)
	if len(points) == 0 {
		return nil
	}
	text := colornames.Lightgray
	w.renderer.SetDrawColor(text.R, text.G, text.B, text.A)
	if err := w.renderer.DrawPoints(points); err != nil {
		return fmt.Errorf("sdlwindow: %w", err)
	}
	return nil
}

func (w *Window) updateSound() {
	if w.audio == 0 || !w.emu.Beeping() {
		return
	}
	// keep no more than a couple of frames queued so the beep stops promptly
	if sdl.GetQueuedAudioSize(w.audio) > uint32(2*len(w.beep)) {
		return
	}
	if err := sdl.QueueAudio(w.audio, w.beep); err != nil {
		logger.Logf("sdlwindow", "audio: %v", err)
	}
}

func (w *Window) updateTitle() {
	title := windowTitle
	if err := w.emu.Halted(); err != nil {
		title = fmt.Sprintf("%s - halted: %v", windowTitle, err)
	} else if w.emu.Paused() {
		s := w.emu.Snapshot()
		title = fmt.Sprintf("%s - step mode PC=%03X I=%03X", windowTitle, s.Registers.PC, s.Registers.I)
	}
	if title != w.title {
		w.window.SetTitle(title)
		w.title = title
	}
}

func (w *Window) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			w.running = false
		case *sdl.KeyboardEvent:
			switch ev.Type {
			case sdl.KEYDOWN:
				if r, ok := scanCode2Rune[int(ev.Keysym.Scancode)]; ok {
					if k, ok := emulator.KeyForRune(r); ok {
						w.emu.SetKey(k, true)
					}
					break
				}
				if ev.Repeat != 0 {
					break
				}
				switch ev.Keysym.Scancode {
				case sdl.SCANCODE_SPACE:
					if w.emu.Paused() {
						if err := w.emu.StepOnce(); err != nil {
							logger.Logf("sdlwindow", "step: %v", err)
						}
					} else {
						w.emu.SetPaused(true)
					}
				case sdl.SCANCODE_RETURN:
					w.emu.SetPaused(false)
				case sdl.SCANCODE_BACKSPACE:
					if err := w.emu.Reset(); err != nil {
						logger.Logf("sdlwindow", "reset: %v", err)
					}
				case sdl.SCANCODE_ESCAPE:
					w.running = false
				}
			case sdl.KEYUP:
				if r, ok := scanCode2Rune[int(ev.Keysym.Scancode)]; ok {
					if k, ok := emulator.KeyForRune(r); ok {
						w.emu.SetKey(k, false)
					}
				}
			}
		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_LOST:
				w.emu.SetFocus(false)
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				w.emu.SetFocus(true)
			}
		}
	}
}

// Destroy releases the SDL resources.
func (w *Window) Destroy() {
	if w.audio != 0 {
		sdl.CloseAudioDevice(w.audio)
	}
	w.renderer.Destroy()
	w.window.Destroy()
	sdl.Quit()
}
