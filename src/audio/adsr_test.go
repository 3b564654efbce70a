package audio

import "testing"

func TestAdsrFollowsGate(t *testing.T) {
	gate := newSharedValue(0)
	a := newAdsr(gate,
		newSharedValue(0.001), // attack, 48 samples
		newSharedValue(0.01),
		newSharedValue(0.5),
		newSharedValue(0.01),
		48000)

	buf := make([]float64, 48000)
	a.process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: expected idle silence, got %v", i, v)
		}
	}

	gate.set(1)
	a.process(buf)
	if buf[20] <= buf[10] {
		t.Errorf("attack should rise: %v then %v", buf[10], buf[20])
	}
	peak := 0.0
	for _, v := range buf {
		if v > peak {
			peak = v
		}
	}
	expectNearlyEqual(t, peak, 1)
	// a full second is far past the decay; we must sit at the sustain level
	expectNearlyEqual(t, buf[len(buf)-1], 0.5)

	gate.set(0)
	a.process(buf)
	expectNearlyEqual(t, buf[len(buf)-1], 0)
	expectEqual(t, a.phase, phaseIdle)
}

func TestAdsrZeroTimesAreInstant(t *testing.T) {
	gate := newSharedValue(1)
	a := newAdsr(gate,
		newSharedValue(0),
		newSharedValue(0),
		newSharedValue(0.8),
		newSharedValue(0),
		48000)

	buf := make([]float64, 16)
	a.process(buf)
	expectEqual(t, buf[0], 1.0)
	expectNearlyEqual(t, buf[2], 0.8)

	gate.set(0)
	a.process(buf)
	expectEqual(t, buf[0], 0.0)
}

func TestAdsrRetrigger(t *testing.T) {
	gate := newSharedValue(1)
	a := newAdsr(gate,
		newSharedValue(0.01),
		newSharedValue(0.01),
		newSharedValue(0.5),
		newSharedValue(0.5),
		48000)

	buf := make([]float64, 4800)
	a.process(buf)
	gate.set(0)
	a.process(buf[:64])
	tail := buf[63]
	if tail <= 0 {
		t.Fatalf("expected a release tail, got %v", tail)
	}

	// a new gate re-enters attack from the current value, without a reset
	gate.set(1)
	a.process(buf[:64])
	if buf[0] < tail {
		t.Errorf("retrigger should continue upward from %v, got %v", tail, buf[0])
	}
}
