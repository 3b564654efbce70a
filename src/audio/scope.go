package audio

import (
	"runtime"
	"sync/atomic"
)

// ----- Scope Buffer ----- //

// scopeBuffer is a rolling window of recent samples shared with the
// visualization reader. The render context only ever makes a non-blocking
// attempt to update it: if the reader holds the guard, the block is skipped.
type scopeBuffer struct {
	busy int32
	data []float64
}

func newScopeBuffer(size int) *scopeBuffer {
	return &scopeBuffer{data: make([]float64, size)}
}

// tryWrite rolls the block into the buffer. It reports false without
// touching the buffer when the reader currently holds it.
func (s *scopeBuffer) tryWrite(block []float64) bool {
	if !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		return false
	}
	n := len(block)
	if n >= len(s.data) {
		copy(s.data, block[n-len(s.data):])
	} else {
		copy(s.data, s.data[n:])
		copy(s.data[len(s.data)-n:], block)
	}
	atomic.StoreInt32(&s.busy, 0)
	return true
}

// snapshot copies the buffer for the reader. The reader may wait; the
// writer never does.
func (s *scopeBuffer) snapshot(dst []float64) {
	for !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		runtime.Gosched()
	}
	copy(dst, s.data)
	atomic.StoreInt32(&s.busy, 0)
}
