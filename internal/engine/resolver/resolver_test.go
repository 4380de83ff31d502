package resolver

import (
	"testing"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
)

func TestResolveThresholdSymmetry(t *testing.T) {
	r := New(100)

	cases := []struct {
		x    float64
		want Decision
	}{
		{x: 150, want: Commit(enums.DirectionRight)},
		{x: -150, want: Commit(enums.DirectionLeft)},
		{x: 50, want: Cancel},
		{x: 100, want: Cancel},
		{x: -100, want: Cancel},
		{x: 0, want: Cancel},
		{x: 100.5, want: Commit(enums.DirectionRight)},
	}
	for _, tc := range cases {
		got := r.Resolve(gesture.Offset{X: tc.x, Y: 999})
		if got != tc.want {
			t.Fatalf("unexpected decision for x=%v: got %+v want %+v", tc.x, got, tc.want)
		}
	}
}

func TestResolveIgnoresVerticalOffset(t *testing.T) {
	r := New(100)
	if got := r.Resolve(gesture.Offset{X: 10, Y: -5000}); got.IsCommit() {
		t.Fatalf("vertical drag must not commit: %+v", got)
	}
}

func TestNewFallsBackToDefaultThreshold(t *testing.T) {
	if got := New(0).Threshold(); got != 100 {
		t.Fatalf("unexpected default threshold: got %v want 100", got)
	}
	if got := New(64).Threshold(); got != 64 {
		t.Fatalf("configured threshold ignored: got %v", got)
	}
}
