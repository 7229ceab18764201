package chip8

import "fmt"

// HistorySize is the number of executed instructions kept for History.
const HistorySize = 16

type traceEntry struct {
	pc uint16
	op uint16
}

func (c *Chip8) trace(pc, op uint16) {
	c.history[c.historyIndex] = traceEntry{pc: pc, op: op}
	c.historyIndex = (c.historyIndex + 1) % HistorySize
	if c.historyLen < HistorySize {
		c.historyLen++
	}
}

// History returns the most recently executed instructions, oldest first.
func (c *Chip8) History() []string {
	h := make([]string, 0, c.historyLen)
	start := (c.historyIndex - c.historyLen + HistorySize) % HistorySize
	for i := 0; i < c.historyLen; i++ {
		e := c.history[(start+i)%HistorySize]
		h = append(h, fmt.Sprintf("%03X-%04X %s", e.pc, e.op, Mnemonic(e.op)))
	}
	return h
}

// Mnemonic renders an opcode in conventional CHIP-8 assembly. Opcodes the
// machine ignores render as a DW directive.
func Mnemonic(op uint16) string {
	nnn := op & 0x0FFF
	nn := uint8(nnn & 0xff)
	x := uint8((nnn >> 8) & 0xf)
	y := uint8((nnn >> 4) & 0xf)
	n := nn & 0x0f

	switch op & 0xF000 {
	case 0x0000:
		switch op {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1000:
		return fmt.Sprintf("JP   #%03X", nnn)
	case 0x2000:
		return fmt.Sprintf("CALL #%03X", nnn)
	case 0x3000:
		return fmt.Sprintf("SE   V%X,#%02X", x, nn)
	case 0x4000:
		return fmt.Sprintf("SNE  V%X,#%02X", x, nn)
	case 0x5000:
		return fmt.Sprintf("SE   V%X,V%X", x, y)
	case 0x6000:
		return fmt.Sprintf("LD   V%X,#%02X", x, nn)
	case 0x7000:
		return fmt.Sprintf("ADD  V%X,#%02X", x, nn)
	case 0x8000:
		switch n {
		case 0x0:
			return fmt.Sprintf("LD   V%X,V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR   V%X,V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND  V%X,V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR  V%X,V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD  V%X,V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB  V%X,V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR  V%X", x)
		case 0x7:
			return fmt.Sprintf("SUBN V%X,V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL  V%X", x)
		}
	case 0x9000:
		return fmt.Sprintf("SNE  V%X,V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("LD   I,#%03X", nnn)
	case 0xB000:
		return fmt.Sprintf("JP   V0,#%03X", nnn)
	case 0xC000:
		return fmt.Sprintf("RND  V%X,#%02X", x, nn)
	case 0xD000:
		return fmt.Sprintf("DRW  V%X,V%X,%d", x, y, n)
	case 0xE000:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP  V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF000:
		switch nn {
		case 0x07:
			return fmt.Sprintf("LD   V%X,DT", x)
		case 0x0A:
			return fmt.Sprintf("LD   V%X,K", x)
		case 0x15:
			return fmt.Sprintf("LD   DT,V%X", x)
		case 0x18:
			return fmt.Sprintf("LD   ST,V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD  I,V%X", x)
		case 0x29:
			return fmt.Sprintf("LD   F,V%X", x)
		case 0x33:
			return fmt.Sprintf("LD   B,V%X", x)
		case 0x55:
			return fmt.Sprintf("LD   [I],V%X", x)
		case 0x65:
			return fmt.Sprintf("LD   V%X,[I]", x)
		}
	}
	return fmt.Sprintf("DW   #%04X", op)
}
