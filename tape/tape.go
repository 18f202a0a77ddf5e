// Package tape renders the sequenced voice offline and writes it as WAV.
package tape

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"go-wavedraw/sequencer"
	"go-wavedraw/synth"
)

// Record plays d worth of the voice, advancing seq at its tempo, and returns
// the mono samples.
func Record(seq *sequencer.Manager, v *synth.Voice, sampleRate int, d time.Duration) []float32 {
	n := int(d.Seconds() * float64(sampleRate))
	out := make([]float32, n)

	perStep := max(1, int(math.Round(seq.StepDuration().Seconds()*float64(sampleRate))))
	for i := range out {
		if i%perStep == 0 {
			seq.Advance()
		}
		out[i] = v.Next()
	}
	return out
}

// WriteWAV writes 16-bit mono PCM.
func WriteWAV(path string, sampleRate int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		s = max(-1, min(1, s))
		buf.Data[i] = int(s * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
