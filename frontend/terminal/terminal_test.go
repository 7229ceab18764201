package terminal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/emulator"
)

func TestKeyHold(t *testing.T) {
	var pressed [chip8.NumKeys]bool
	h := newKeyHold(100*time.Millisecond, func(key uint8, p bool) { pressed[key] = p })
	start := time.Now()

	h.press(0xA, start)
	h.press(0x2, start.Add(10*time.Millisecond))
	assert.True(t, pressed[0xA])
	assert.True(t, pressed[0x2])
	assert.Empty(t, h.release(start.Add(50*time.Millisecond)))

	// auto-repeat pushes the release back
	h.press(0xA, start.Add(90*time.Millisecond))
	assert.Empty(t, h.release(start.Add(100*time.Millisecond)))
	assert.Equal(t, []uint8{0x2}, h.release(start.Add(110*time.Millisecond)))
	assert.False(t, pressed[0x2])
	assert.True(t, pressed[0xA])

	assert.Equal(t, []uint8{0xA}, h.release(start.Add(time.Second)))
	assert.False(t, pressed[0xA])
	assert.Empty(t, h.release(start.Add(2*time.Second)))
}

func TestKeyHoldPressDuringRelease(t *testing.T) {
	var h *keyHold
	var events []bool
	start := time.Now()
	h = newKeyHold(100*time.Millisecond, func(key uint8, p bool) {
		events = append(events, p)
		if !p {
			// a press racing the release waits for it and wins
			go h.press(key, start.Add(time.Second))
		}
	})

	h.press(0x5, start)
	assert.Equal(t, []uint8{0x5}, h.release(start.Add(200*time.Millisecond)))
	assert.Eventually(t, func() bool {
		h.crit.Lock()
		defer h.crit.Unlock()
		return len(events) == 3
	}, time.Second, time.Millisecond)

	h.crit.Lock()
	assert.Equal(t, []bool{true, false, true}, events)
	h.crit.Unlock()
}

func TestCellAt(t *testing.T) {
	var d [chip8.DisplayW * chip8.DisplayH]uint8
	d[0*chip8.DisplayW+5] = chip8.PixelOn
	d[3*chip8.DisplayW+63] = chip8.PixelOn

	top, bottom := cellAt(&d, 5, 0)
	assert.True(t, top)
	assert.False(t, bottom)

	top, bottom = cellAt(&d, 63, 1)
	assert.False(t, top)
	assert.True(t, bottom)

	top, bottom = cellAt(&d, 0, 15)
	assert.False(t, top)
	assert.False(t, bottom)
}

func TestRegistersText(t *testing.T) {
	s := emulator.Snapshot{}
	s.Registers.V[0xA] = 0x3C
	s.Registers.PC = 0x204
	s.Registers.I = 0x050
	s.Keys[0xF] = true

	text := registersText(s)
	assert.Contains(t, text, "VA=3C")
	assert.Contains(t, text, "PC=204  I=050")
	assert.Contains(t, text, "...F")
	assert.NotContains(t, text, "HALTED")

	s.Paused = true
	assert.Contains(t, registersText(s), "STEP MODE")

	s.Halted = errors.New("chip8: stack [underflow]")
	text = registersText(s)
	assert.Contains(t, text, "HALTED")
	assert.True(t, strings.Contains(text, "underflow"), text)
}
