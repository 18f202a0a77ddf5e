package synth

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// Voice is a wavetable oscillator. Wave, gain and frequency can be changed
// from any goroutine while the audio thread reads.
type Voice struct {
	sampleRate float64

	wave atomic.Pointer[Wave]
	gain atomic.Uint64 // float64 bits
	freq atomic.Uint64 // float64 bits

	phase float64 // audio thread only
}

// NewVoice creates a voice playing a sine at freq Hz with full gain.
func NewVoice(sampleRate int, freq float64) *Voice {
	v := &Voice{sampleRate: float64(sampleRate)}
	w := Sine(DefaultTableSize)
	v.wave.Store(&w)
	v.SetGain(1)
	v.SetFrequency(freq)
	return v
}

// SetWave swaps the wavetable. The phase is kept so the switch is seamless.
func (v *Voice) SetWave(w Wave) {
	v.wave.Store(&w)
}

// Wave returns the current wavetable.
func (v *Voice) Wave() Wave {
	return *v.wave.Load()
}

// SetGain sets the output level, clamped to [0,1].
func (v *Voice) SetGain(g float64) {
	g = math.Max(0, math.Min(1, g))
	v.gain.Store(math.Float64bits(g))
}

func (v *Voice) Gain() float64 {
	return math.Float64frombits(v.gain.Load())
}

// SetFrequency sets the pitch in Hz. Non-positive values are ignored.
func (v *Voice) SetFrequency(hz float64) {
	if hz <= 0 {
		return
	}
	v.freq.Store(math.Float64bits(hz))
}

func (v *Voice) Frequency() float64 {
	return math.Float64frombits(v.freq.Load())
}

// Next returns the next sample and advances the phase.
func (v *Voice) Next() float32 {
	w := *v.wave.Load()
	s := w.At(v.phase) * v.Gain()

	v.phase += v.Frequency() / v.sampleRate
	if v.phase >= 1 {
		v.phase -= math.Floor(v.phase)
	}
	return float32(s)
}

// Read fills p with mono float32 little-endian samples. It never fails, so
// an audio player can pull from it indefinitely.
func (v *Voice) Read(p []byte) (int, error) {
	n := len(p) / 4
	for i := range n {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v.Next()))
	}
	return n * 4, nil
}
