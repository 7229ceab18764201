package sdlwindow

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/emulator"
)

const (
	FontSize = 16
	InfoH    = chip8.HistorySize * FontSize

	// overlay columns, in pixels
	registersX = 160
	othersX    = 250
)

// keypad rows as laid out on the original keypad
var keypadRows = [4][4]uint8{
	{0x1, 0x2, 0x3, 0xc},
	{0x4, 0x5, 0x6, 0xd},
	{0x7, 0x8, 0x9, 0xe},
	{0xa, 0x0, 0xb, 0xf},
}

// overlayText lays out the debug information as three columns: the
// instruction history, the V registers and the remaining registers with the
// keypad.
func overlayText(s emulator.Snapshot) (history, registers, others []string) {
	history = s.History

	r := s.Registers
	for i := 0; i < 8; i++ {
		registers = append(registers, fmt.Sprintf("V%X=%02X  V%X=%02X", i, r.V[i], i+8, r.V[i+8]))
	}

	others = append(others,
		fmt.Sprintf("DT=%02X", r.DT),
		fmt.Sprintf("ST=%02X", r.ST),
		fmt.Sprintf("SP=%02X", r.SP),
		fmt.Sprintf(" I=%04X", r.I),
		fmt.Sprintf("OP=%04X", s.Opcode),
		"",
	)
	for i, row := range keypadRows {
		line := "     "
		if i == 0 {
			line = "KEYS "
		}
		for _, k := range row {
			if s.Keys[k] {
				line += fmt.Sprintf("%X", k)
			} else {
				line += "."
			}
		}
		others = append(others, line)
	}
	return history, registers, others
}

// renderOverlay draws the debug text into a width by InfoH mask.
func renderOverlay(s emulator.Snapshot, width int) *image.Alpha {
	img := image.NewAlpha(image.Rect(0, 0, width, InfoH))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: bitmapfont.Face,
	}
	ascent := bitmapfont.Face.Metrics().Ascent.Ceil()

	column := func(lines []string, x int) {
		for i, line := range lines {
			d.Dot = fixed.P(x, i*FontSize+ascent)
			d.DrawString(line)
		}
	}
	history, registers, others := overlayText(s)
	column(history, 4)
	column(registers, registersX)
	column(others, othersX)
	return img
}

// overlayPoints returns the lit pixels of the mask, offset vertically by top.
func overlayPoints(img *image.Alpha, top int32) []sdl.Point {
	var points []sdl.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A >= 0x80 {
				points = append(points, sdl.Point{X: int32(x), Y: int32(y) + top})
			}
		}
	}
	return points
}
