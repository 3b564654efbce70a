package audio

import (
	"log"
	"math"
	"math/cmplx"
)

// ----- FFT ----- //

// fft is a forward radix-2 transform with precomputed twiddle and
// bit-reversal tables, used for the spectrum view.
type fft struct {
	bitReverseTable []int
	wTable          []complex128
}

func newFFT(length int) *fft {
	return &fft{
		bitReverseTable: makeBitReverseTable(length),
		wTable:          makeWTable(length),
	}
}

func makeBitReverseTable(n int) []int {
	table := make([]int, n)
	for i := 0; i < n; i++ {
		table[i] = bitReverse(i, n)
	}
	return table
}

func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n = n >> 1 {
		m = m<<1 + k&1
		k = k >> 1
	}
	return m
}

func makeWTable(n int) []complex128 {
	table := make([]complex128, n)
	w := -2.0 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		table[i] = cmplx.Exp(complex(0, w*float64(i)))
	}
	return table
}

func (f *fft) calc(x []complex128) {
	n := len(x)
	if n != len(f.bitReverseTable) {
		log.Fatalf("length should be %v", len(f.bitReverseTable))
	}
	for i := 0; i < n; i++ {
		rev := f.bitReverseTable[i]
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for m := 1; m < n; m = m << 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := f.wTable[n/step*k]
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] = x[i] + tmp
			}
		}
	}
}

// calcAbs replaces x with the magnitudes of its transform.
func (f *fft) calcAbs(x []float64) {
	n := len(x)
	cx := make([]complex128, n)
	for i := 0; i < n; i++ {
		cx[i] = complex(x[i], 0)
	}
	f.calc(cx)
	for i := 0; i < n; i++ {
		x[i] = cmplx.Abs(cx[i])
	}
}

func hannWindow(data []float64) {
	n := len(data)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(i)/float64(n))
		data[i] = data[i] * w
	}
}
