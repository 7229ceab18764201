// Package terminal runs the emulator inside a terminal. The framebuffer is
// drawn with half-block characters, two pixels to a cell, next to panels
// for the registers, the instruction history and the log.
//
// Terminals report key presses but not releases, so a keypad key is held
// down for keyHoldDuration after its last press (auto-repeat keeps a held key
// alive).
package terminal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tuboc/chip8vm/chip8"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/logger"
)

const (
	keyHoldDuration = 150 * time.Millisecond
	frameDuration   = time.Second / 60
	logLines        = 8
)

type Terminal struct {
	emu *emulator.Emulator
	app *tview.Application

	screen    *tview.Box
	registers *tview.TextView
	history   *tview.TextView
	logs      *tview.TextView

	// latest snapshot, written by the ticker and read by the draw function
	crit     sync.Mutex
	snapshot emulator.Snapshot

	keys *keyHold
}

func New(emu *emulator.Emulator) *Terminal {
	t := &Terminal{
		emu:  emu,
		app:  tview.NewApplication(),
		keys: newKeyHold(keyHoldDuration, emu.SetKey),
	}
	t.snapshot = emu.Snapshot()

	newTextView := func(title string) *tview.TextView {
		v := tview.NewTextView().SetDynamicColors(true)
		v.SetTitle(title).SetBorder(true)
		return v
	}

	t.screen = tview.NewBox()
	t.screen.SetTitle("CHIP-8").SetBorder(true)
	t.screen.SetDrawFunc(t.drawScreen)

	t.registers = newTextView("Registers")
	t.history = newTextView("History")
	t.logs = newTextView("Log")

	top := tview.NewFlex().
		AddItem(t.screen, chip8.DisplayW+2, 0, false).
		AddItem(t.registers, 0, 1, false)
	bottom := tview.NewFlex().
		AddItem(t.history, 0, 1, false).
		AddItem(t.logs, 0, 2, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, chip8.DisplayH/2+2, 0, false).
		AddItem(bottom, 0, 1, false)

	t.app.SetRoot(root, true)
	t.app.SetInputCapture(t.handleKey)
	return t
}

// Run takes over the terminal until Escape or Ctrl-C is pressed.
func (t *Terminal) Run() error {
	done := make(chan struct{})
	defer close(done)
	go t.tick(done)
	return t.app.Run()
}

func (t *Terminal) tick(done <-chan struct{}) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			t.keys.release(now)

			if err := t.emu.Advance(now.Sub(last)); err != nil && !emulator.IsHalt(err) {
				logger.Logf("terminal", "%v", err)
			}
			last = now

			s := t.emu.Snapshot()
			t.crit.Lock()
			t.snapshot = s
			t.crit.Unlock()

			t.app.QueueUpdateDraw(func() {
				t.registers.SetText(registersText(s))
				t.history.SetText(strings.Join(s.History, "\n"))
				t.logs.SetText(logTail(logLines))
			})
		}
	}
}

func (t *Terminal) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.app.Stop()
		return nil
	case tcell.KeyEnter:
		t.emu.SetPaused(false)
		return nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if err := t.emu.Reset(); err != nil {
			logger.Logf("terminal", "reset: %v", err)
		}
		return nil
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			if t.emu.Paused() {
				if err := t.emu.StepOnce(); err != nil {
					logger.Logf("terminal", "step: %v", err)
				}
			} else {
				t.emu.SetPaused(true)
			}
			return nil
		}
		if k, ok := emulator.KeyForRune(r); ok {
			t.keys.press(k, time.Now())
			t.emu.SetKey(k, true)
			return nil
		}
	}
	return ev
}

func (t *Terminal) drawScreen(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	t.crit.Lock()
	s := t.snapshot
	t.crit.Unlock()

	on := tcell.ColorGreen
	if s.Halted != nil {
		on = tcell.ColorRed
	}

	// inside the border
	ix, iy, iw, ih := x+1, y+1, width-2, height-2
	for row := 0; row < chip8.DisplayH/2 && row < ih; row++ {
		for col := 0; col < chip8.DisplayW && col < iw; col++ {
			top, bottom := cellAt(&s.Display, col, row)
			style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorBlack)
			if top {
				style = style.Foreground(on)
			}
			if bottom {
				style = style.Background(on)
			}
			screen.SetContent(ix+col, iy+row, '▀', nil, style)
		}
	}
	return ix, iy, iw, ih
}

// cellAt returns the two pixels shown by the terminal cell at col, row: the
// upper half block is the even display row, the background the odd one.
func cellAt(display *[chip8.DisplayW * chip8.DisplayH]uint8, col, row int) (top, bottom bool) {
	top = display[(2*row)*chip8.DisplayW+col] != chip8.PixelOff
	bottom = display[(2*row+1)*chip8.DisplayW+col] != chip8.PixelOff
	return top, bottom
}

func registersText(s emulator.Snapshot) string {
	r := s.Registers
	b := &strings.Builder{}
	for i, v := range r.V {
		fmt.Fprintf(b, "V%X=%02X", i, v)
		if i%4 == 3 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	fmt.Fprintf(b, "\nPC=%03X  I=%03X\n", r.PC, r.I)
	fmt.Fprintf(b, "DT=%02X  ST=%02X  SP=%X\n", r.DT, r.ST, r.SP)

	b.WriteString("\nKEYS ")
	for i, k := range []int{0x1, 0x2, 0x3, 0xc, 0x4, 0x5, 0x6, 0xd, 0x7, 0x8, 0x9, 0xe, 0xa, 0x0, 0xb, 0xf} {
		if s.Keys[k] {
			fmt.Fprintf(b, "%X", k)
		} else {
			b.WriteString(".")
		}
		if i%4 == 3 && i < 15 {
			b.WriteString("\n     ")
		}
	}
	b.WriteString("\n")

	switch {
	case s.Halted != nil:
		fmt.Fprintf(b, "\n[red]HALTED[-] %s\n", tview.Escape(s.Halted.Error()))
	case s.Paused:
		b.WriteString("\n[yellow]STEP MODE[-]\n")
	}
	return b.String()
}

func logTail(n int) string {
	b := &strings.Builder{}
	logger.Tail(b, n)
	return tview.Escape(strings.TrimRight(b.String(), "\n"))
}
