package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/gesture"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/engine/resolver"
)

type phase int

const (
	phaseIdle phase = iota
	phaseExiting
	phaseCelebrating
)

// Session is one user's pass through a candidate queue. Every operation and
// timer callback is serialized by mu; listeners run after mu is released.
type Session struct {
	id     string
	userID string
	cfg    Config
	deps   Dependencies

	resolver resolver.Resolver

	mu        sync.Mutex
	queue     []model.Candidate
	cursor    int
	tracker   gesture.Tracker
	phase     phase
	celebrant *model.Candidate
	timer     Timer
	timerSeq  uint64
	closed    bool
	touched   time.Time

	outbox      []Event
	listeners   []Listener
	dispatching bool
}

func NewSession(id, userID string, queue []model.Candidate, deps Dependencies, cfg Config) (*Session, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if deps.Gate == nil || deps.Roller == nil {
		return nil, ErrDependenciesNil
	}
	if deps.Scheduler == nil {
		deps.Scheduler = RealScheduler
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.ExitDelay < 0 {
		cfg.ExitDelay = 0
	}

	s := &Session{
		id:       id,
		userID:   userID,
		cfg:      cfg,
		deps:     deps,
		resolver: resolver.New(cfg.SwipeThreshold),
		queue:    cloneCandidates(queue),
	}
	s.touched = deps.Now()
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// Subscribe registers a listener for all subsequent events.
func (s *Session) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Pointer feeds one pointer/touch sample. A drag release resolves through the
// same commit path as Swipe.
func (s *Session) Pointer(ctx context.Context, ev gesture.PointerEvent) (Result, error) {
	if ev == nil {
		return Result{Kind: ResultIgnored}, nil
	}
	defer s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrClosed
	}
	s.touched = s.deps.Now()

	if ev.Phase() == gesture.PhaseStart && s.phase != phaseIdle {
		return Result{Kind: ResultIgnored, Cursor: s.cursor}, nil
	}

	wasActive := s.tracker.Active()
	handled := s.tracker.Handle(ev)
	if !handled.Ended {
		if s.tracker.Active() {
			return Result{Kind: ResultDragging, Cursor: s.cursor}, nil
		}
		if wasActive && ev.Phase() == gesture.PhaseLeave {
			s.emit(Event{Kind: EventSnapBack, Cursor: s.cursor})
			return Result{Kind: ResultSnapBack, Cursor: s.cursor}, nil
		}
		return Result{Kind: ResultIgnored, Cursor: s.cursor}, nil
	}

	decision := s.resolver.Resolve(handled.Offset)
	if !decision.IsCommit() {
		s.emit(Event{Kind: EventSnapBack, Cursor: s.cursor})
		return Result{Kind: ResultSnapBack, Cursor: s.cursor}, nil
	}
	return s.commitLocked(ctx, decision)
}

// Swipe is the button path: a direct Like/Pass without gesture math.
func (s *Session) Swipe(ctx context.Context, dir enums.Direction) (Result, error) {
	if dir != enums.DirectionLeft && dir != enums.DirectionRight {
		return Result{}, ErrValidation
	}
	defer s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrClosed
	}
	s.touched = s.deps.Now()
	// a tap in the middle of a drag supersedes it
	s.tracker.Cancel()
	return s.commitLocked(ctx, resolver.Commit(dir))
}

// commitLocked is the single commit path for drags and taps.
func (s *Session) commitLocked(ctx context.Context, decision resolver.Decision) (Result, error) {
	dir := decision.Direction
	if s.phase != phaseIdle {
		return Result{}, ErrBusy
	}
	if s.cursor >= len(s.queue) {
		return Result{Kind: ResultExhausted, Cursor: s.cursor}, nil
	}

	candidate := s.queue[s.cursor]
	result := Result{
		Kind:      ResultCommitted,
		Direction: dir,
		Candidate: candidate,
		Cursor:    s.cursor,
	}

	matched := false
	if dir.IsLike() {
		tier := enums.TierFree
		if s.deps.Tiers != nil {
			resolved, err := s.deps.Tiers.Tier(ctx, s.userID)
			if err != nil {
				return Result{}, fmt.Errorf("resolve subscription tier: %w", err)
			}
			tier = resolved
		}

		decision, err := s.deps.Gate.TryConsume(ctx, s.userID, tier, s.deps.Now())
		if err != nil {
			return Result{}, fmt.Errorf("quota check: %w", err)
		}
		result.Quota = &decision
		if !decision.Allowed {
			s.emit(Event{Kind: EventDenied, Candidate: candidate, Direction: dir, Cursor: s.cursor, Quota: &decision})
			result.Kind = ResultDenied
			return result, nil
		}
		matched = s.deps.Roller.Roll(candidate).Matched
	}

	s.emit(Event{Kind: EventCommit, Candidate: candidate, Direction: dir, Cursor: s.cursor, Quota: result.Quota})

	if matched {
		result.Matched = true
		s.emit(Event{Kind: EventMatch, Candidate: candidate, Direction: dir, Cursor: s.cursor})
		if s.cfg.CelebrationTimeout > 0 {
			c := candidate
			s.celebrant = &c
			s.phase = phaseCelebrating
			s.scheduleAdvanceLocked(s.cfg.CelebrationTimeout)
			result.Pending = true
			return result, nil
		}
	}

	if s.cfg.ExitDelay <= 0 {
		s.advanceLocked()
		result.Cursor = s.cursor
		return result, nil
	}

	s.phase = phaseExiting
	s.scheduleAdvanceLocked(s.cfg.ExitDelay)
	result.Pending = true
	return result, nil
}

// DismissCelebration ends a match celebration and advances the queue.
// It reports false when no celebration was showing.
func (s *Session) DismissCelebration() bool {
	defer s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phase != phaseCelebrating {
		return false
	}
	s.touched = s.deps.Now()
	s.stopTimerLocked()
	s.advanceLocked()
	return true
}

// Refill appends a new batch to the queue; the cursor keeps counting.
// Candidates already queued in this session, swiped or not, are skipped.
func (s *Session) Refill(batch []model.Candidate) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	seen := make(map[string]struct{}, len(s.queue))
	for _, c := range s.queue {
		seen[c.ID] = struct{}{}
	}
	added := 0
	for _, c := range batch {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		s.queue = append(s.queue, cloneCandidate(c))
		added++
	}
	s.touched = s.deps.Now()
	return added
}

// Close cancels pending timers; later operations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.tracker.Cancel()
	s.outbox = nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:    s.id,
		UserID:       s.userID,
		State:        s.stateLocked(),
		Cursor:       s.cursor,
		QueueLen:     len(s.queue),
		Dragging:     s.tracker.Active(),
		Offset:       s.tracker.Offset(),
		LastActivity: s.touched,
	}
	if s.cursor < len(s.queue) {
		c := s.queue[s.cursor]
		v.Current = &c
	}
	if s.celebrant != nil {
		c := *s.celebrant
		v.Celebrating = &c
	}
	return v
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) stateLocked() State {
	switch {
	case s.closed:
		return StateClosed
	case s.phase == phaseCelebrating:
		return StateCelebrating
	case s.phase == phaseExiting:
		return StateExiting
	case s.cursor >= len(s.queue):
		return StateExhausted
	case s.tracker.Active():
		return StateDragging
	default:
		return StateIdle
	}
}

func (s *Session) scheduleAdvanceLocked(d time.Duration) {
	s.stopTimerLocked()
	s.timerSeq++
	seq := s.timerSeq
	s.timer = s.deps.Scheduler.AfterFunc(d, func() { s.onTimer(seq) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// invalidates callbacks that already started
	s.timerSeq++
}

func (s *Session) onTimer(seq uint64) {
	defer s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || seq != s.timerSeq || s.phase == phaseIdle {
		return
	}
	s.timer = nil
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	s.phase = phaseIdle
	s.celebrant = nil
	s.cursor++
	s.emit(Event{Kind: EventAdvanced, Cursor: s.cursor})
	if s.cursor == len(s.queue) {
		s.emit(Event{Kind: EventExhausted, Cursor: s.cursor})
	}
}

func (s *Session) emit(ev Event) {
	ev.SessionID = s.id
	ev.UserID = s.userID
	ev.At = s.deps.Now()
	s.outbox = append(s.outbox, ev)
}

// flush delivers queued events in order. Only one goroutine drains at a time;
// events queued meanwhile are picked up by the active drainer.
func (s *Session) flush() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.outbox) > 0 {
		batch := s.outbox
		s.outbox = nil
		listeners := append([]Listener(nil), s.listeners...)
		s.mu.Unlock()

		for _, ev := range batch {
			for _, l := range listeners {
				l.OnEvent(ev)
			}
		}

		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

func cloneCandidates(in []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(in))
	for _, c := range in {
		out = append(out, cloneCandidate(c))
	}
	return out
}

func cloneCandidate(c model.Candidate) model.Candidate {
	c.Photos = append([]string(nil), c.Photos...)
	c.Interests = append([]string(nil), c.Interests...)
	return c
}
