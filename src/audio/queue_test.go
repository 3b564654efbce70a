package audio

import "testing"

func TestQueuePreservesOrder(t *testing.T) {
	q := newCommandQueue()
	q.push(noteOnCmd{freq: 440})
	q.push(continuousUpdateCmd{portamento: 0.5})
	q.push(noteOffCmd{})

	cmd, ok := q.pop()
	expectEqual(t, ok, true)
	expectEqual(t, cmd, noteOnCmd{freq: 440})
	cmd, ok = q.pop()
	expectEqual(t, ok, true)
	expectEqual(t, cmd, continuousUpdateCmd{portamento: 0.5})
	cmd, ok = q.pop()
	expectEqual(t, ok, true)
	expectEqual(t, cmd, noteOffCmd{})
	_, ok = q.pop()
	expectEqual(t, ok, false)
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := newCommandQueue()
	for i := 0; i < queueCapacity; i++ {
		expectEqual(t, q.push(noteOnCmd{freq: float64(i)}), true)
	}
	// the 17th push must not block
	expectEqual(t, q.push(noteOffCmd{}), false)

	count := 0
	for {
		_, ok := q.pop()
		if !ok {
			break
		}
		count++
	}
	expectEqual(t, count, queueCapacity)
}
