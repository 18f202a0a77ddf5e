package spectral

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mjibson/go-dsp/fft"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= tolerance {
		return true
	}
	return diff <= tolerance*math.Max(math.Abs(a), math.Abs(b))
}

func randomSignal(r *rand.Rand, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = r.Float64()*2 - 1
	}
	return x
}

func TestTransformZeroInput(t *testing.T) {
	for n := 1; n <= 32; n++ {
		re, im := Transform(make([]float64, n))
		if len(re) != n || len(im) != n {
			t.Fatalf("n=%d: got lengths %d/%d", n, len(re), len(im))
		}
		for k := 0; k < n; k++ {
			if re[k] != 0 || im[k] != 0 {
				t.Fatalf("n=%d bin %d: got (%v, %v), want zero", n, k, re[k], im[k])
			}
		}
	}
}

func TestTransformLinear(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for _, n := range []int{1, 2, 5, 20, 33} {
		x := randomSignal(r, n)
		y := randomSignal(r, n)
		a, b := 0.75, -1.5

		mixed := make([]float64, n)
		for i := range mixed {
			mixed[i] = a*x[i] + b*y[i]
		}

		xr, xi := Transform(x)
		yr, yi := Transform(y)
		mr, mi := Transform(mixed)

		for k := 0; k < n; k++ {
			if want := a*xr[k] + b*yr[k]; !approxEqual(mr[k], want) {
				t.Errorf("n=%d real[%d] = %v, want %v", n, k, mr[k], want)
			}
			if want := a*xi[k] + b*yi[k]; !approxEqual(mi[k], want) {
				t.Errorf("n=%d imag[%d] = %v, want %v", n, k, mi[k], want)
			}
		}
	}
}

func TestTransformMatchesFFT(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, n := range []int{4, 5, 16, 20} {
		x := randomSignal(r, n)
		re, im := Transform(x)
		spectrum := fft.FFTReal(x)

		for k := 0; k < n; k++ {
			wantRe := real(spectrum[k]) / float64(n)
			wantIm := imag(spectrum[k]) / float64(n)
			if !approxEqual(re[k], wantRe) || !approxEqual(im[k], wantIm) {
				t.Errorf("n=%d bin %d: got (%v, %v), want (%v, %v)", n, k, re[k], im[k], wantRe, wantIm)
			}
		}
	}
}

// Alternating ±1 over four samples only has energy at the Nyquist bin.
func TestTransformNyquistFixture(t *testing.T) {
	re, im := Transform([]float64{-1, 1, -1, 1})

	wantRe := []float64{0, 0, -1, 0}
	for k := range wantRe {
		if !approxEqual(re[k], wantRe[k]) {
			t.Errorf("real[%d] = %v, want %v", k, re[k], wantRe[k])
		}
		if !approxEqual(im[k], 0) {
			t.Errorf("imag[%d] = %v, want 0", k, im[k])
		}
	}
}

func TestTransformSingleCosine(t *testing.T) {
	n := 8
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * float64(i) / float64(n))
	}
	re, im := Transform(x)

	// a real cosine splits evenly between bin 1 and its mirror N-1
	for k := 0; k < n; k++ {
		want := 0.0
		if k == 1 || k == n-1 {
			want = 0.5
		}
		if !approxEqual(re[k], want) {
			t.Errorf("real[%d] = %v, want %v", k, re[k], want)
		}
		if !approxEqual(im[k], 0) {
			t.Errorf("imag[%d] = %v, want 0", k, im[k])
		}
	}

	if got := Dominant(re, im); got != 1 {
		t.Errorf("Dominant = %d, want 1", got)
	}
}

func TestDominantSilent(t *testing.T) {
	re, im := Transform(make([]float64, 6))
	if got := Dominant(re, im); got != 0 {
		t.Errorf("Dominant of silence = %d, want 0", got)
	}
}

func TestMagnitudes(t *testing.T) {
	got := Magnitudes([]float64{3, 0}, []float64{4, -2})
	if got[0] != 5 || got[1] != 2 {
		t.Errorf("Magnitudes = %v, want [5 2]", got)
	}
}
