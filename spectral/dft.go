// Package spectral converts short time-domain sequences into frequency bins.
//
// The transform is the direct O(N²) DFT. Inputs are grid resolutions of a few
// dozen points, so a fast transform buys nothing and the direct sum keeps the
// coefficients easy to reason about.
package spectral

import "math"

// Transform returns the real and imaginary parts of the discrete Fourier
// transform of x, scaled by 1/N:
//
//	real[k] =  1/N · Σ x[n]·cos(2πkn/N)
//	imag[k] = -1/N · Σ x[n]·sin(2πkn/N)
//
// Both slices have len(x) entries. An empty input yields empty outputs.
func Transform(x []float64) (real, imag []float64) {
	n := len(x)
	real = make([]float64, n)
	imag = make([]float64, n)
	if n == 0 {
		return real, imag
	}

	fn := float64(n)
	for k := 0; k < n; k++ {
		var re, im float64
		for i, v := range x {
			angle := 2 * math.Pi * float64(k) * float64(i) / fn
			re += v * math.Cos(angle) / fn
			im -= v * math.Sin(angle) / fn
		}
		real[k] = re
		imag[k] = im
	}
	return real, imag
}

// Magnitudes returns |X[k]| for each bin.
func Magnitudes(real, imag []float64) []float64 {
	n := min(len(real), len(imag))
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = math.Hypot(real[k], imag[k])
	}
	return out
}

// Dominant returns the harmonic (k ≥ 1, up to Nyquist) with the largest
// magnitude, or 0 when every harmonic is silent.
func Dominant(real, imag []float64) int {
	mags := Magnitudes(real, imag)
	best, bestMag := 0, 1e-12
	for k := 1; k <= len(mags)/2; k++ {
		if mags[k] > bestMag {
			best, bestMag = k, mags[k]
		}
	}
	return best
}
