package consensus

import (
	"math"
	"testing"
)

func TestBrierScore_Perfect(t *testing.T) {
	if got := BrierScore(60, 60); got != 0 {
		t.Fatalf("brier=%v want 0", got)
	}
}

func TestBrierScore_Bounds(t *testing.T) {
	cases := []struct{ p, o float64 }{
		{0, 100}, {100, 0}, {0, 0}, {100, 100}, {33, 71}, {50, 50},
	}
	for _, c := range cases {
		got := BrierScore(c.p, c.o)
		if got < 0 || got > 1 {
			t.Fatalf("BrierScore(%v,%v)=%v out of [0,1]", c.p, c.o, got)
		}
	}
	if got := BrierScore(0, 100); got != 1 {
		t.Fatalf("maximally wrong score=%v want 1", got)
	}
}

func TestBrierScore_KnownValues(t *testing.T) {
	cases := []struct {
		p, o, want float64
	}{
		{30, 60, 0.09},
		{50, 60, 0.01},
		{70, 60, 0.01},
	}
	for _, c := range cases {
		got := BrierScore(c.p, c.o)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("BrierScore(%v,%v)=%v want %v", c.p, c.o, got, c.want)
		}
	}
}
