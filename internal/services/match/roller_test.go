package match

import (
	"sync"
	"testing"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

func TestRollConvergesToProbability(t *testing.T) {
	const n = 100000
	r := NewSeeded(0.2, 42, 1024)
	c := model.Candidate{ID: "c1"}

	matches := 0
	for i := 0; i < n; i++ {
		if r.Roll(c).Matched {
			matches++
		}
	}

	rate := float64(matches) / n
	if rate < 0.19 || rate > 0.21 {
		t.Fatalf("unexpected match rate: got %.4f want within [0.19,0.21]", rate)
	}
}

func TestRollCarriesCandidateOnlyOnMatch(t *testing.T) {
	c := model.Candidate{ID: "c9", Name: "Emily"}
	r := NewRoller(0.2, NewFixed(0.05, 0.2, 0.9))

	first := r.Roll(c)
	if !first.Matched || first.Candidate.ID != "c9" {
		t.Fatalf("expected match with candidate, got %+v", first)
	}
	if got := r.Roll(c); !got.Matched || got.Candidate.ID != "c9" {
		t.Fatalf("sample equal to p must match: %+v", got)
	}
	if got := r.Roll(c); got.Matched || got.Candidate.ID != "" {
		t.Fatalf("no match must not reference a candidate: %+v", got)
	}
}

func TestRollZeroProbabilityIgnoresZeroSample(t *testing.T) {
	r := NewRoller(0, NewFixed(0))
	if got := r.Roll(model.Candidate{ID: "c1"}); got.Matched {
		t.Fatalf("unexpected match with p=0: %+v", got)
	}
}

func TestRollerBounds(t *testing.T) {
	c := model.Candidate{ID: "x"}
	never := NewSeeded(0, 1, 2)
	always := NewSeeded(1, 1, 2)
	for i := 0; i < 1000; i++ {
		if never.Roll(c).Matched {
			t.Fatalf("p=0 produced a match")
		}
		if !always.Roll(c).Matched {
			t.Fatalf("p=1 missed a match")
		}
	}
	if got := NewRoller(1.5, nil).Probability(); got != 0.2 {
		t.Fatalf("invalid p must fall back to default, got %v", got)
	}
}

func TestRollIsSafeForConcurrentSessions(t *testing.T) {
	r := NewSeeded(0.5, 7, 7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Roll(model.Candidate{ID: "c"})
			}
		}()
	}
	wg.Wait()
}
