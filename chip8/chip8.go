// Package chip8 implements the CHIP-8 virtual machine: memory, registers,
// stack, timers, framebuffer and keypad, advanced one instruction at a time.
//
// The host is responsible for pacing. Step executes exactly one instruction
// and DecrementTimers ticks both timers once; a typical host calls Step several
// hundred times a second and DecrementTimers at 60 Hz.
package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	DisplayW      = 64
	DisplayH      = 32
	MemorySize    = 4096
	FontOffset    = 0x050
	FontGlyphSize = 5
	ProgramOffset = 0x200
	MaxROMSize    = MemorySize - ProgramOffset
	StackDepth    = 16
	NumKeys       = 16

	PixelOff uint8 = 0x00
	PixelOn  uint8 = 0xFF
)

// Chip8 is a single emulated machine. It is not safe for concurrent use.
type Chip8 struct {
	mem    [MemorySize]uint8          // memory
	pc     uint16                     // program counter
	v      [16]uint8                  // registers
	i      uint16                     // index register
	dt     uint8                      // delay timer
	st     uint8                      // sound timer
	sp     uint8                      // stack pointer, number of used slots
	stack  [StackDepth]uint16         // return addresses
	keys   [NumKeys]bool              // keypad state
	disp   [DisplayW * DisplayH]uint8 // framebuffer
	opcode uint16                     // most recently fetched instruction

	rand *rand.Rand

	history      [HistorySize]traceEntry
	historyIndex int
	historyLen   int
}

var fontSprites = [16 * FontGlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// New returns a machine with the font table loaded and PC at the program
// entry point. Random numbers for Cxnn are seeded from the current time.
func New() *Chip8 {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed is like New but seeds the random number generator used by
// Cxnn, which makes runs reproducible.
func NewWithSeed(seed int64) *Chip8 {
	c := &Chip8{
		pc:   ProgramOffset,
		rand: rand.New(rand.NewSource(seed)),
	}
	copy(c.mem[FontOffset:], fontSprites[:])
	return c
}

// LoadROM copies a program image into memory at ProgramOffset. The image is
// either copied whole or not at all.
func (c *Chip8) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(c.mem[ProgramOffset:], rom)
	return nil
}

// Step executes one instruction. On error the program counter is left
// pointing at the faulting instruction and no other state has changed.
func (c *Chip8) Step() error {
	pc := c.pc
	op, err := c.fetchOpcode()
	if err != nil {
		return err
	}
	if err := c.execOpcode(op); err != nil {
		c.pc = pc
		return fmt.Errorf("%03X-%04X: %w", pc, op, err)
	}
	c.trace(pc, op)
	return nil
}

// DecrementTimers ticks the delay and sound timers once. Neither goes below
// zero.
func (c *Chip8) DecrementTimers() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

// Display returns a copy of the framebuffer, row-major, DisplayW cells per
// row. Every cell is PixelOn or PixelOff.
func (c *Chip8) Display() [DisplayW * DisplayH]uint8 {
	return c.disp
}

// pixel reports whether the cell at x, y is lit.
func (c *Chip8) pixel(x, y int) bool {
	return c.disp[y*DisplayW+x] == PixelOn
}

// SetKey records the state of a keypad key. Keys outside 0x0-0xF are ignored.
func (c *Chip8) SetKey(key uint8, pressed bool) {
	if int(key) < NumKeys {
		c.keys[key] = pressed
	}
}

// Keys returns the current keypad state indexed by hex key value.
func (c *Chip8) Keys() [NumKeys]bool {
	return c.keys
}

// Beeping reports whether the buzzer should sound.
func (c *Chip8) Beeping() bool {
	return c.st > 0
}

// Opcode returns the most recently fetched instruction.
func (c *Chip8) Opcode() uint16 {
	return c.opcode
}

// State is a snapshot of the register file.
type State struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	DT    uint8
	ST    uint8
	Stack [StackDepth]uint16
}

// Registers returns a snapshot of the register file.
func (c *Chip8) Registers() State {
	return State{
		V:     c.v,
		I:     c.i,
		PC:    c.pc,
		SP:    c.sp,
		DT:    c.dt,
		ST:    c.st,
		Stack: c.stack,
	}
}

func (c *Chip8) fetchOpcode() (uint16, error) {
	if int(c.pc)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: fetch at %04X", ErrAddressOutOfRange, c.pc)
	}
	c.opcode = uint16(c.mem[c.pc])<<8 | uint16(c.mem[c.pc+1])
	c.pc += 2
	return c.opcode, nil
}

func (c *Chip8) updateCarryFlag(b bool) {
	if b {
		c.v[0xf] = 1
	} else {
		c.v[0xf] = 0
	}
}

func (c *Chip8) pushStack(v uint16) error {
	if int(c.sp) >= StackDepth {
		return ErrStackOverflow
	}
	c.stack[c.sp] = v
	c.sp++
	return nil
}

func (c *Chip8) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// checkRange fails if n bytes starting at I would run past the end of memory.
func (c *Chip8) checkRange(n int) error {
	if int(c.i)+n > MemorySize {
		return fmt.Errorf("%w: %d bytes at I=%04X", ErrAddressOutOfRange, n, c.i)
	}
	return nil
}

// draw XORs an n row sprite read from memory[I] onto the framebuffer at x, y.
// Coordinates wrap at the screen edges. Returns true if any lit pixel was
// turned off.
func (c *Chip8) draw(x, y, n uint8) (bool, error) {
	if err := c.checkRange(int(n)); err != nil {
		return false, err
	}

	flipped := false
	sprite := c.mem[c.i : int(c.i)+int(n)]
	for iy, row := range sprite {
		for ix := 0; ix < 8; ix++ {
			if (row>>(7-ix))&0x01 == 0 {
				continue
			}
			tx := (int(x) + ix) % DisplayW
			ty := (int(y) + iy) % DisplayH

			p := &c.disp[ty*DisplayW+tx]
			if *p == PixelOn {
				flipped = true
			}
			*p ^= PixelOn
		}
	}
	return flipped, nil
}

// pressedAnyKey returns the lowest pressed key.
func (c *Chip8) pressedAnyKey() (uint8, bool) {
	for i, pressed := range c.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}
