package audio

import (
	"sync/atomic"
	"testing"
)

func TestScopeRollsBlocksIn(t *testing.T) {
	s := newScopeBuffer(8)
	expectEqual(t, s.tryWrite([]float64{1, 2, 3, 4}), true)
	expectEqual(t, s.tryWrite([]float64{5, 6, 7, 8}), true)

	out := make([]float64, 8)
	s.snapshot(out)
	for i, want := range []float64{1, 2, 3, 4, 5, 6, 7, 8} {
		expectEqual(t, out[i], want)
	}
}

func TestScopeKeepsTailOfOversizedBlock(t *testing.T) {
	s := newScopeBuffer(4)
	block := []float64{1, 2, 3, 4, 5, 6}
	expectEqual(t, s.tryWrite(block), true)

	out := make([]float64, 4)
	s.snapshot(out)
	for i, want := range []float64{3, 4, 5, 6} {
		expectEqual(t, out[i], want)
	}
}

func TestScopeWriterSkipsWhenHeld(t *testing.T) {
	s := newScopeBuffer(4)
	atomic.StoreInt32(&s.busy, 1)
	expectEqual(t, s.tryWrite([]float64{1, 2, 3, 4}), false)
	atomic.StoreInt32(&s.busy, 0)

	out := make([]float64, 4)
	s.snapshot(out)
	for i, v := range out {
		if v != 0 {
			t.Errorf("sample %d: skipped write must not touch the buffer, got %v", i, v)
		}
	}
}
