package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	start := c.Now()
	if d := c.Since(start); d < 0 {
		t.Errorf("Since() = %v, want non-negative", d)
	}
}

func TestMockClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(base)

	if got := c.Now(); !got.Equal(base) {
		t.Errorf("Now() = %v, want %v", got, base)
	}
	if got := c.Now(); !got.Equal(base) {
		t.Errorf("Now() without step moved to %v", got)
	}

	c.Advance(5 * time.Second)
	if got := c.Since(base); got != 5*time.Second {
		t.Errorf("Since() = %v, want 5s", got)
	}

	later := base.Add(time.Hour)
	c.Set(later)
	if got := c.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", got, later)
	}
}

func TestSteppingClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSteppingClock(base, 40*time.Millisecond)

	start := c.Now()
	if !start.Equal(base) {
		t.Fatalf("first Now() = %v, want %v", start, base)
	}
	if got := c.Since(start); got != 40*time.Millisecond {
		t.Errorf("Since() = %v, want 40ms", got)
	}
	if got := c.Since(start); got != 80*time.Millisecond {
		t.Errorf("second Since() = %v, want 80ms", got)
	}
}
