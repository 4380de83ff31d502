package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
)

// EventMsg carries a session event into the bubbletea loop.
type EventMsg discovery.Event

// Sender is the part of *tea.Program the relay needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Relay forwards session events to a running program in order. Listeners
// fire while Update may be running a session call, so delivery happens on
// a separate goroutine. Events before Attach are dropped.
type Relay struct {
	mu      sync.Mutex
	target  Sender
	pending []discovery.Event
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func NewRelay() *Relay {
	return &Relay{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (r *Relay) Attach(target Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target != nil || r.closed {
		return
	}
	r.target = target
	go r.pump()
}

func (r *Relay) OnEvent(ev discovery.Event) {
	r.mu.Lock()
	if r.target == nil || r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, ev)
	select {
	case r.wake <- struct{}{}:
	default:
	}
	r.mu.Unlock()
}

// Close stops delivery and waits for the pump to exit.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.target != nil
	close(r.wake)
	r.mu.Unlock()

	if started {
		<-r.done
	}
}

func (r *Relay) pump() {
	defer close(r.done)
	for range r.wake {
		for {
			r.mu.Lock()
			batch := r.pending
			r.pending = nil
			target := r.target
			r.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, ev := range batch {
				target.Send(EventMsg(ev))
			}
		}
	}
}
