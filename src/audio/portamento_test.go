package audio

import "testing"

func TestPortamentoInstantWhenAmountZero(t *testing.T) {
	p := newPortamento(440)
	p.setTarget(880)
	buf := make([]float64, glideInterval)
	p.process(buf)
	for i, v := range buf {
		if v != 880 {
			t.Fatalf("sample %d: expected 880, got %v", i, v)
		}
	}
}

func TestPortamentoHoldsBetweenTicks(t *testing.T) {
	p := newPortamento(440)
	p.setAmount(0.5)
	p.setTarget(880)
	buf := make([]float64, 2*glideInterval)
	p.process(buf)

	for i := 1; i < glideInterval; i++ {
		expectEqual(t, buf[i], buf[0])
	}
	for i := glideInterval + 1; i < 2*glideInterval; i++ {
		expectEqual(t, buf[i], buf[glideInterval])
	}
	if buf[glideInterval] <= buf[0] {
		t.Errorf("expected the glide to advance between ticks")
	}
}

func TestPortamentoReachesTargetAndSnaps(t *testing.T) {
	p := newPortamento(440)
	p.setAmount(0.9)
	p.setTarget(880)
	buf := make([]float64, glideInterval)

	prev := 440.0
	reached := false
	for i := 0; i < 300; i++ {
		p.process(buf)
		if buf[0] < prev {
			t.Fatalf("glide went backwards: %v -> %v", prev, buf[0])
		}
		prev = buf[0]
		if buf[0] == 880 {
			reached = true
			break
		}
	}
	if !reached {
		t.Errorf("glide never snapped to the target, stuck at %v", prev)
	}
}

func TestPortamentoAmountClamped(t *testing.T) {
	p := newPortamento(440)
	p.setAmount(2) // clamps to 0.999, still a finite glide
	p.setTarget(880)
	buf := make([]float64, glideInterval)
	p.process(buf)
	if buf[0] <= 440 {
		t.Errorf("expected some progress toward the target, got %v", buf[0])
	}
	if buf[0] >= 880 {
		t.Errorf("expected a glide, not an instant jump, got %v", buf[0])
	}
}
