package audio

import (
	"math"
	"testing"
)

func TestBitreverse(t *testing.T) {
	expectEqual(t, bitReverse(0, 8), 0)
	expectEqual(t, bitReverse(1, 8), 4)
	expectEqual(t, bitReverse(2, 8), 2)
	expectEqual(t, bitReverse(3, 8), 6)
	expectEqual(t, bitReverse(4, 8), 1)
	expectEqual(t, bitReverse(5, 8), 5)
	expectEqual(t, bitReverse(6, 8), 3)
	expectEqual(t, bitReverse(7, 8), 7)
}

func TestFFT(t *testing.T) {
	f := newFFT(8)
	x := make([]complex128, 8)
	for i, v := range []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25} {
		x[i] = complex(v, 0)
	}
	f.calc(x)
	expectNearlyEqual(t, real(x[0]), 4)
	expectNearlyEqual(t, real(x[1]), -(1 + math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[2]), 0)
	expectNearlyEqual(t, real(x[3]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[4]), 0)
	expectNearlyEqual(t, real(x[5]), -(1 - math.Sqrt(2)/2))
	expectNearlyEqual(t, real(x[6]), 0)
	expectNearlyEqual(t, real(x[7]), -(1 + math.Sqrt(2)/2))
	for i := range x {
		expectNearlyEqual(t, imag(x[i]), 0)
	}
}

func TestCalcAbsFindsSingleTone(t *testing.T) {
	const n = 64
	f := newFFT(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 5 * float64(i) / n)
	}
	f.calcAbs(x)
	peak := 0
	for i := 1; i < n/2; i++ {
		if x[i] > x[peak] {
			peak = i
		}
	}
	expectEqual(t, peak, 5)
	expectNearlyEqual(t, x[5], n/2)
}
