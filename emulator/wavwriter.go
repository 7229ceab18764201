package emulator

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"

	"github.com/tuboc/chip8vm/logger"
)

const (
	WavSampleRate = 44100
	wavToneHz     = 440

	// 8 bit PCM is unsigned, silence sits in the middle
	wavSilence   = 128
	wavAmplitude = 48
)

// WavWriter records the buzzer. One block of samples is collected for every
// timer tick and the file is written when the writer is closed.
type WavWriter struct {
	filename       string
	samplesPerTick int
	phase          int
	buffer         []wav.Sample
}

func NewWavWriter(filename string, timerHz int) (*WavWriter, error) {
	if timerHz <= 0 || WavSampleRate%timerHz != 0 {
		return nil, fmt.Errorf("wavwriter: unsupported timer rate %d", timerHz)
	}
	return &WavWriter{
		filename:       filename,
		samplesPerTick: WavSampleRate / timerHz,
		buffer:         make([]wav.Sample, 0),
	}, nil
}

// Tick appends one timer period of square wave when beeping, silence
// otherwise. The wave phase runs on through silence so that consecutive
// beeps join without a click.
func (aw *WavWriter) Tick(beeping bool) {
	halfWave := WavSampleRate / wavToneHz / 2
	for i := 0; i < aw.samplesPerTick; i++ {
		w := wav.Sample{}
		switch {
		case !beeping:
			w.Values[0] = wavSilence
		case (aw.phase/halfWave)%2 == 0:
			w.Values[0] = wavSilence + wavAmplitude
		default:
			w.Values[0] = wavSilence - wavAmplitude
		}
		aw.buffer = append(aw.buffer, w)
		aw.phase++
	}
}

// samples returns the number of samples recorded so far.
func (aw *WavWriter) samples() int {
	return len(aw.buffer)
}

// Close writes the recording to disk.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 1, uint32(WavSampleRate), 8)

	logger.Logf("wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)
	if err := enc.WriteSamples(aw.buffer); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
