package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrBusy            = errors.New("session is busy")
	ErrClosed          = errors.New("session is closed")
	ErrNoSession       = errors.New("no active discovery session")
	ErrDependenciesNil = errors.New("discovery dependencies are not configured")
)

type State string

const (
	StateIdle        State = "idle"
	StateDragging    State = "dragging"
	StateExiting     State = "exiting"
	StateCelebrating State = "celebrating"
	StateExhausted   State = "exhausted"
	StateClosed      State = "closed"
)

type EventKind string

const (
	EventCommit    EventKind = "commit"
	EventSnapBack  EventKind = "snap_back"
	EventDenied    EventKind = "denied"
	EventMatch     EventKind = "match"
	EventAdvanced  EventKind = "advanced"
	EventExhausted EventKind = "exhausted"
)

type Event struct {
	Kind      EventKind
	SessionID string
	UserID    string
	Candidate model.Candidate
	Direction enums.Direction
	Cursor    int
	Quota     *quota.Decision
	At        time.Time
}

type Listener interface {
	OnEvent(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

type ResultKind string

const (
	ResultIgnored   ResultKind = "ignored"
	ResultDragging  ResultKind = "dragging"
	ResultSnapBack  ResultKind = "snap_back"
	ResultCommitted ResultKind = "committed"
	ResultDenied    ResultKind = "denied"
	ResultExhausted ResultKind = "exhausted"
)

// Result is the synchronous outcome of one session operation.
type Result struct {
	Kind      ResultKind
	Direction enums.Direction
	Candidate model.Candidate
	Matched   bool
	Quota     *quota.Decision
	Cursor    int
	// Pending is true when the card advance waits for the exit delay or a celebration.
	Pending bool
}

// QuotaGate is the like quota consulted for every right commit.
type QuotaGate interface {
	TryConsume(ctx context.Context, userID string, tier enums.SubscriptionTier, today time.Time) (quota.Decision, error)
}

type Roller interface {
	Roll(c model.Candidate) model.MatchOutcome
}

type TierSource interface {
	Tier(ctx context.Context, userID string) (enums.SubscriptionTier, error)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler runs callbacks on time.AfterFunc goroutines.
var RealScheduler Scheduler = realScheduler{}

type Config struct {
	SwipeThreshold     float64
	ExitDelay          time.Duration
	CelebrationTimeout time.Duration
}

type Dependencies struct {
	Gate      QuotaGate
	Roller    Roller
	Tiers     TierSource
	Scheduler Scheduler
	Now       func() time.Time
}

// View is a read-only copy of the session state.
type View struct {
	SessionID    string
	UserID       string
	State        State
	Cursor       int
	QueueLen     int
	Current      *model.Candidate
	Celebrating  *model.Candidate
	Dragging     bool
	Offset       gesture.Offset
	LastActivity time.Time
}

func (v View) Exhausted() bool {
	return v.Cursor >= v.QueueLen
}
