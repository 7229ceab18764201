package emulator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuboc/chip8vm/chip8"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"terminal", func(c *Config) { c.Frontend = FrontendTerminal }, true},
		{"zero instructions", func(c *Config) { c.InstructionsPerSecond = 0 }, false},
		{"negative timer", func(c *Config) { c.TimerHz = -60 }, false},
		{"instructions too fast", func(c *Config) { c.InstructionsPerSecond = 2000000000 }, false},
		{"timer too fast", func(c *Config) { c.TimerHz = MaxRate + 1 }, false},
		{"fastest", func(c *Config) { c.InstructionsPerSecond = MaxRate; c.TimerHz = MaxRate }, true},
		{"zero scale", func(c *Config) { c.Scale = 0 }, false},
		{"unknown frontend", func(c *Config) { c.Frontend = "x11" }, false},
		{"wav with odd timer", func(c *Config) { c.WavFile = "out.wav"; c.TimerHz = 13 }, false},
		{"wav", func(c *Config) { c.WavFile = "out.wav" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestClock(t *testing.T) {
	c := NewClock(600, 60)

	steps, ticks := c.Advance(100 * time.Millisecond)
	assert.Equal(t, 60, steps)
	assert.Equal(t, 6, ticks)

	// fractions carry over
	steps, ticks = c.Advance(time.Millisecond)
	assert.Equal(t, 0, steps)
	assert.Equal(t, 0, ticks)
	steps, _ = c.Advance(time.Millisecond)
	assert.Equal(t, 1, steps)

	steps, ticks = c.Advance(-time.Second)
	assert.Equal(t, 0, steps)
	assert.Equal(t, 0, ticks)
}

func TestClockCatchUpIsCapped(t *testing.T) {
	c := NewClock(600, 60)
	steps, ticks := c.Advance(10 * time.Second)
	assert.Equal(t, 150, steps)
	assert.Equal(t, 15, ticks)
}

func TestClockHighRates(t *testing.T) {
	c := NewClock(2000000000, MaxRate)
	steps, ticks := c.Advance(time.Millisecond)
	assert.Equal(t, int(time.Millisecond), steps)
	assert.Equal(t, 1000, ticks)

	assert.Panics(t, func() { NewClock(0, 60) })
}

func TestKeyForRune(t *testing.T) {
	k, ok := KeyForRune('Q')
	assert.True(t, ok)
	assert.Equal(t, uint8(0x4), k)

	k, ok = KeyForRune('v')
	assert.True(t, ok)
	assert.Equal(t, uint8(0xf), k)

	_, ok = KeyForRune('p')
	assert.False(t, ok)

	seen := map[uint8]bool{}
	for _, k := range KeyLayout {
		seen[k] = true
	}
	assert.Len(t, seen, chip8.NumKeys)
}

func TestAdvanceRunsInstructionsAndTimers(t *testing.T) {
	// V0 = 0xFF, DT = V0, loop adding one to V1 forever
	rom := []byte{0x60, 0xFF, 0xF0, 0x15, 0x71, 0x01, 0x12, 0x04}
	e, err := New(rom, testConfig())
	require.NoError(t, err)

	require.NoError(t, e.Advance(100*time.Millisecond))
	s := e.Snapshot()

	// 60 instructions: two setup, then 29 loops of two
	assert.Equal(t, uint8(29), s.Registers.V[1])
	assert.Equal(t, uint8(0xFF-6), s.Registers.DT)
	assert.Equal(t, uint16(0x1204), s.Opcode)
	assert.Len(t, s.History, chip8.HistorySize)
	assert.Nil(t, s.Halted)
}

func TestPauseAndFocusStopTheMachine(t *testing.T) {
	rom := []byte{0x71, 0x01, 0x12, 0x00}
	cfg := testConfig()
	cfg.StepMode = true
	e, err := New(rom, cfg)
	require.NoError(t, err)
	assert.True(t, e.Paused())

	require.NoError(t, e.Advance(100*time.Millisecond))
	assert.Equal(t, uint16(0x200), e.Snapshot().Registers.PC)

	require.NoError(t, e.StepOnce())
	assert.Equal(t, uint16(0x202), e.Snapshot().Registers.PC)

	e.TogglePause()
	assert.False(t, e.Paused())
	e.SetFocus(false)
	require.NoError(t, e.Advance(100*time.Millisecond))
	assert.Equal(t, uint16(0x202), e.Snapshot().Registers.PC)

	// time spent unfocused is not made up
	e.SetFocus(true)
	require.NoError(t, e.Advance(10*time.Millisecond))
	assert.Equal(t, uint8(1+3), e.Snapshot().Registers.V[1])
}

func TestHaltAndReset(t *testing.T) {
	rom := []byte{0x60, 0x05, 0x00, 0xEE}
	e, err := New(rom, testConfig())
	require.NoError(t, err)

	err = e.Advance(100 * time.Millisecond)
	require.ErrorIs(t, err, chip8.ErrStackUnderflow)
	assert.True(t, IsHalt(err))
	assert.ErrorIs(t, e.Halted(), chip8.ErrStackUnderflow)

	s := e.Snapshot()
	assert.Equal(t, uint16(0x202), s.Registers.PC)
	assert.Equal(t, uint8(5), s.Registers.V[0])

	// halted machines stay put
	require.NoError(t, e.Advance(100*time.Millisecond))
	assert.ErrorIs(t, e.StepOnce(), chip8.ErrStackUnderflow)

	require.NoError(t, e.Reset())
	assert.NoError(t, e.Halted())
	s = e.Snapshot()
	assert.Equal(t, uint16(0x200), s.Registers.PC)
	assert.Equal(t, uint8(0), s.Registers.V[0])
}

func TestNewRejectsLargeROM(t *testing.T) {
	_, err := New(make([]byte, chip8.MaxROMSize+1), testConfig())
	assert.ErrorIs(t, err, chip8.ErrROMTooLarge)
	assert.False(t, IsHalt(err))
}

func TestSetKeyReachesMachine(t *testing.T) {
	rom := []byte{0xF3, 0x0A}
	e, err := New(rom, testConfig())
	require.NoError(t, err)

	require.NoError(t, e.Advance(50*time.Millisecond))
	assert.Equal(t, uint16(0x200), e.Snapshot().Registers.PC)

	e.SetKey(0xB, true)
	assert.True(t, e.Snapshot().Keys[0xB])
	require.NoError(t, e.StepOnce())
	s := e.Snapshot()
	assert.Equal(t, uint16(0x202), s.Registers.PC)
	assert.Equal(t, uint8(0xB), s.Registers.V[3])
}

func TestBuzzerRecording(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "buzzer.wav")

	// ST = 3, then spin
	rom := []byte{0x60, 0x03, 0xF0, 0x18, 0x12, 0x04}
	cfg := testConfig()
	cfg.WavFile = filename
	e, err := New(rom, cfg)
	require.NoError(t, err)

	require.NoError(t, e.Advance(100*time.Millisecond))
	assert.Equal(t, uint8(0), e.Snapshot().Registers.ST)
	require.NoError(t, e.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Greater(t, len(data), 44)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))

	// closing twice is harmless
	require.NoError(t, e.Close())
}

func TestWavWriter(t *testing.T) {
	_, err := NewWavWriter("x.wav", 13)
	assert.Error(t, err)

	aw, err := NewWavWriter(filepath.Join(t.TempDir(), "x.wav"), 60)
	require.NoError(t, err)

	aw.Tick(false)
	assert.Equal(t, WavSampleRate/60, aw.samples())
	for _, s := range aw.buffer {
		assert.Equal(t, wavSilence, s.Values[0])
	}

	aw.Tick(true)
	assert.Equal(t, 2*WavSampleRate/60, aw.samples())
	high, low := 0, 0
	for _, s := range aw.buffer[WavSampleRate/60:] {
		switch s.Values[0] {
		case wavSilence + wavAmplitude:
			high++
		case wavSilence - wavAmplitude:
			low++
		}
	}
	assert.Equal(t, WavSampleRate/60, high+low)
	assert.InDelta(t, high, low, float64(WavSampleRate/wavToneHz))

	require.NoError(t, aw.Close())
}
