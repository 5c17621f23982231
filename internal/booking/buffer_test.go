package booking

import (
	"testing"
	"time"
)

func TestEffectiveWindowEvent(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	start := time.Date(2026, 6, 15, 18, 0, 0, 0, edt)
	end := time.Date(2026, 6, 15, 22, 0, 0, 0, edt)

	effStart, effEnd := EffectiveWindow(start, end, true)

	if !effStart.Equal(time.Date(2026, 6, 15, 17, 0, 0, 0, edt)) {
		t.Fatalf("expected start buffered to 5 PM, got %v", effStart)
	}
	if !effEnd.Equal(time.Date(2026, 6, 15, 23, 0, 0, 0, edt)) {
		t.Fatalf("expected end buffered to 11 PM, got %v", effEnd)
	}
	if got := effEnd.Sub(effStart); got != end.Sub(start)+2*time.Hour {
		t.Fatalf("expected effective span = requested span + 2h, got %s", got)
	}
}

func TestEffectiveWindowTour(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, est)
	end := time.Date(2026, 3, 10, 15, 0, 0, 0, est)

	effStart, effEnd := EffectiveWindow(start, end, false)

	if !effStart.Equal(start) || !effEnd.Equal(end) {
		t.Fatalf("tour window must be unchanged, got %v - %v", effStart, effEnd)
	}
}

func TestEffectiveWindowPreservesOffset(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	start := time.Date(2026, 6, 15, 18, 0, 0, 0, edt)
	end := time.Date(2026, 6, 16, 0, 0, 0, 0, edt)

	effStart, effEnd := EffectiveWindow(start, end, true)

	if _, off := effStart.Zone(); off != -4*3600 {
		t.Fatalf("expected start to keep -04:00 offset, got %d", off)
	}
	if _, off := effEnd.Zone(); off != -4*3600 {
		t.Fatalf("expected end to keep -04:00 offset, got %d", off)
	}
}

func TestEffectiveWindowDeterministic(t *testing.T) {
	start := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 15, 22, 0, 0, 0, time.UTC)

	s1, e1 := EffectiveWindow(start, end, true)
	s2, e2 := EffectiveWindow(start, end, true)
	if !s1.Equal(s2) || !e1.Equal(e2) {
		t.Fatal("same raw request must yield the same effective window")
	}
}
