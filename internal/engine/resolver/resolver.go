package resolver

import (
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/rules"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
)

type Outcome string

const (
	OutcomeCommit Outcome = "commit"
	OutcomeCancel Outcome = "cancel"
)

// Decision is the discrete result of a swipe. Direction is set only for commits.
type Decision struct {
	Outcome   Outcome
	Direction enums.Direction
}

func (d Decision) IsCommit() bool {
	return d.Outcome == OutcomeCommit
}

var Cancel = Decision{Outcome: OutcomeCancel}

type Resolver struct {
	threshold float64
}

// New returns a resolver with horizontal threshold t; t <= 0 uses the default.
func New(t float64) Resolver {
	if t <= 0 {
		t = rules.SwipeThreshold
	}
	return Resolver{threshold: t}
}

func (r Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve decides a drag. Only the horizontal component counts and the
// threshold itself is a cancel.
func (r Resolver) Resolve(offset gesture.Offset) Decision {
	t := r.threshold
	if t <= 0 {
		t = rules.SwipeThreshold
	}
	switch {
	case offset.X > t:
		return Commit(enums.DirectionRight)
	case offset.X < -t:
		return Commit(enums.DirectionLeft)
	default:
		return Cancel
	}
}

// Commit builds the decision for a button tap.
func Commit(dir enums.Direction) Decision {
	return Decision{Outcome: OutcomeCommit, Direction: dir}
}
