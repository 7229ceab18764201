package chip8

import "errors"

var (
	// ErrROMTooLarge is returned by LoadROM when the image does not fit
	// between ProgramOffset and the end of memory.
	ErrROMTooLarge = errors.New("chip8: rom too large")

	// ErrStackOverflow is returned when 2nnn is executed with all sixteen
	// stack slots in use.
	ErrStackOverflow = errors.New("chip8: stack overflow")

	// ErrStackUnderflow is returned when 00EE is executed with an empty stack.
	ErrStackUnderflow = errors.New("chip8: stack underflow")

	// ErrAddressOutOfRange is returned when an instruction fetch or an access
	// through I would run past the end of memory.
	ErrAddressOutOfRange = errors.New("chip8: address out of range")
)
