// Package ebitenwindow runs the emulator as an ebiten game. Controls match the
// SDL window; a status line under the screen shows the machine state.
package ebitenwindow

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/logger"
)

const statusH = 16

var fontFace = text.NewGoXFace(bitmapfont.Face)

var keys = map[ebiten.Key]rune{
	ebiten.KeyDigit1: '1',
	ebiten.KeyDigit2: '2',
	ebiten.KeyDigit3: '3',
	ebiten.KeyDigit4: '4',
	ebiten.KeyQ:      'q',
	ebiten.KeyW:      'w',
	ebiten.KeyE:      'e',
	ebiten.KeyR:      'r',
	ebiten.KeyA:      'a',
	ebiten.KeyS:      's',
	ebiten.KeyD:      'd',
	ebiten.KeyF:      'f',
	ebiten.KeyZ:      'z',
	ebiten.KeyX:      'x',
	ebiten.KeyC:      'c',
	ebiten.KeyV:      'v',
}

// Game implements ebiten.Game interface.
type Game struct {
	emu    *emulator.Emulator
	scale  int
	canvas *ebiten.Image
	pixels []byte
}

func New(emu *emulator.Emulator, scale int) *Game {
	return &Game{
		emu:    emu,
		scale:  scale,
		canvas: ebiten.NewImage(chip8.DisplayW, chip8.DisplayH),
		pixels: make([]byte, 4*chip8.DisplayW*chip8.DisplayH),
	}
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	ebiten.SetWindowSize(chip8.DisplayW*g.scale, chip8.DisplayH*g.scale+statusH)
	ebiten.SetWindowTitle("Chip-8 Emulator")
	ebiten.SetRunnableOnUnfocused(true)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for k, r := range keys {
		key, _ := emulator.KeyForRune(r)
		switch {
		case inpututil.IsKeyJustPressed(k):
			g.emu.SetKey(key, true)
		case inpututil.IsKeyJustReleased(k):
			g.emu.SetKey(key, false)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.emu.Paused() {
			if err := g.emu.StepOnce(); err != nil {
				logger.Logf("ebitenwindow", "step: %v", err)
			}
		} else {
			g.emu.SetPaused(true)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.emu.SetPaused(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if err := g.emu.Reset(); err != nil {
			logger.Logf("ebitenwindow", "reset: %v", err)
		}
	}

	g.emu.SetFocus(ebiten.IsFocused())

	err := g.emu.Advance(time.Second / time.Duration(ebiten.TPS()))
	if err != nil && !emulator.IsHalt(err) {
		return err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	s := g.emu.Snapshot()

	on := colornames.Lime
	if s.Halted != nil {
		on = colornames.Red
	}
	for i, p := range s.Display {
		c := color.RGBA{A: 0xff}
		if p != chip8.PixelOff {
			c = on
		}
		g.pixels[4*i+0] = c.R
		g.pixels[4*i+1] = c.G
		g.pixels[4*i+2] = c.B
		g.pixels[4*i+3] = c.A
	}
	g.canvas.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.canvas, op)

	textOp := &text.DrawOptions{}
	textOp.GeoM.Translate(2, float64(chip8.DisplayH*g.scale))
	textOp.ColorScale.ScaleWithColor(colornames.Lightgray)
	text.Draw(screen, status(s), fontFace, textOp)
}

func status(s emulator.Snapshot) string {
	r := s.Registers
	line := fmt.Sprintf("PC=%03X I=%03X DT=%02X ST=%02X SP=%X", r.PC, r.I, r.DT, r.ST, r.SP)
	switch {
	case s.Halted != nil:
		line += " HALTED"
	case s.Paused:
		line += " STEP"
	}
	return line
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return chip8.DisplayW * g.scale, chip8.DisplayH*g.scale + statusH
}
