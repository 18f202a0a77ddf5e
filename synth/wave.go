// Package synth turns spectra from the waveform grid into sound: a
// single-cycle wavetable and an oscillator voice that reads it.
package synth

import (
	"fmt"
	"math"
)

// DefaultTableSize is the number of samples in a wave built without an
// explicit size.
const DefaultTableSize = 2048

// Wave is a single-cycle waveform normalized to a peak of 1.
type Wave []float64

// NewWave builds a wave from Fourier coefficients the way a periodic wave is
// defined for an oscillator:
//
//	w(t) = Σ real[k]·cos(2πkt) + imag[k]·sin(2πkt), k ≥ 1
//
// The DC term at index 0 is ignored. The result is scaled so its peak
// magnitude is 1; an all-zero spectrum stays silent.
func NewWave(real, imag []float64, size int) Wave {
	if size <= 0 {
		size = DefaultTableSize
	}
	n := min(len(real), len(imag))

	w := make(Wave, size)
	peak := 0.0
	for i := range w {
		t := float64(i) / float64(size)
		sum := 0.0
		for k := 1; k < n; k++ {
			a := 2 * math.Pi * float64(k) * t
			sum += real[k]*math.Cos(a) + imag[k]*math.Sin(a)
		}
		w[i] = sum
		peak = max(peak, math.Abs(sum))
	}

	if peak > 1e-12 {
		for i := range w {
			w[i] /= peak
		}
	} else {
		clear(w)
	}
	return w
}

// Sine returns a plain sine wave, used until the first spectrum arrives.
func Sine(size int) Wave {
	return NewWave([]float64{0, 0}, []float64{0, 1}, size)
}

func (w Wave) String() string {
	return fmt.Sprintf("Wave(size=%d)", len(w))
}

// At returns the wave at fractional phase, wrapped to [0,1). It uses
// 4-point Catmull-Rom interpolation, linear for very short waves.
func (w Wave) At(phase float64) float64 {
	n := len(w)
	if n == 0 {
		return 0
	}
	p := math.Mod(phase, 1)
	if p < 0 {
		p++
	}
	pos := p * float64(n)
	i0 := int(pos) % n
	t := pos - math.Floor(pos)

	if n < 4 {
		i1 := (i0 + 1) % n
		return w[i0]*(1-t) + w[i1]*t
	}

	im1 := (i0 - 1 + n) % n
	i1 := (i0 + 1) % n
	i2 := (i0 + 2) % n
	a0 := -0.5*w[im1] + 1.5*w[i0] - 1.5*w[i1] + 0.5*w[i2]
	a1 := w[im1] - 2.5*w[i0] + 2*w[i1] - 0.5*w[i2]
	a2 := -0.5*w[im1] + 0.5*w[i1]
	return ((a0*t+a1)*t+a2)*t + w[i0]
}

// Silent reports whether every sample is zero.
func (w Wave) Silent() bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}
