package match

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/rules"
)

// Sampler yields uniform values in [0,1).
type Sampler interface {
	Float64() float64
}

// Roller decides whether a liked candidate matches back.
type Roller struct {
	mu      sync.Mutex
	p       float64
	sampler Sampler
}

// NewRoller builds a roller with match probability p. A nil sampler uses a
// time-seeded PCG; p outside [0,1] falls back to the default.
func NewRoller(p float64, sampler Sampler) *Roller {
	if p < 0 || p > 1 {
		p = rules.MatchProbability
	}
	if sampler == nil {
		seed := uint64(time.Now().UnixNano())
		sampler = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &Roller{p: p, sampler: sampler}
}

// NewSeeded returns a deterministic roller.
func NewSeeded(p float64, seed1, seed2 uint64) *Roller {
	return NewRoller(p, rand.New(rand.NewPCG(seed1, seed2)))
}

func (r *Roller) Probability() float64 {
	return r.p
}

// Roll samples once; the candidate matches when the sample is at most p.
// p == 0 never matches.
func (r *Roller) Roll(c model.Candidate) model.MatchOutcome {
	r.mu.Lock()
	u := r.sampler.Float64()
	r.mu.Unlock()

	if r.p > 0 && u <= r.p {
		return model.MatchOutcome{Matched: true, Candidate: c}
	}
	return model.MatchOutcome{Matched: false}
}

// Fixed is a Sampler that replays values in order and then repeats the last.
type Fixed struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 1
	}
	if f.next >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.next]
	f.next++
	return v
}
