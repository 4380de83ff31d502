package gesture

import "testing"

func TestTrackerOffsetFromOrigin(t *testing.T) {
	var tr Tracker
	tr.Begin(Point{X: 10, Y: 20})
	tr.Update(Point{X: 160, Y: 5})

	offset, ok := tr.End()
	if !ok {
		t.Fatalf("expected active drag to end")
	}
	if offset != (Offset{X: 150, Y: -15}) {
		t.Fatalf("unexpected offset: got %+v", offset)
	}
	if tr.Active() {
		t.Fatalf("tracker must be idle after end")
	}
}

func TestTrackerRedundantBeginRebasesOrigin(t *testing.T) {
	var tr Tracker
	tr.Begin(Point{X: 0, Y: 0})
	tr.Update(Point{X: 90, Y: 0})
	tr.Begin(Point{X: 50, Y: 0})

	if got := tr.Offset(); got != (Offset{}) {
		t.Fatalf("offset must reset on re-begin: got %+v", got)
	}
	tr.Update(Point{X: 80, Y: 0})
	offset, _ := tr.End()
	if offset.X != 30 {
		t.Fatalf("unexpected offset after rebase: got %v want 30", offset.X)
	}
}

func TestTrackerIgnoresOutOfOrderEvents(t *testing.T) {
	var tr Tracker
	tr.Update(Point{X: 500, Y: 0})
	if tr.Active() {
		t.Fatalf("move without begin must not activate")
	}
	if _, ok := tr.End(); ok {
		t.Fatalf("end without begin must report ok=false")
	}

	tr.Begin(Point{})
	tr.Update(Point{X: 120})
	tr.End()
	tr.Update(Point{X: 999})
	if got := tr.Offset(); got != (Offset{}) {
		t.Fatalf("stray move after end changed offset: %+v", got)
	}
}

func TestTrackerCancelIsIdempotent(t *testing.T) {
	var tr Tracker
	tr.Cancel()
	tr.Begin(Point{})
	tr.Update(Point{X: 300})
	tr.Cancel()
	tr.Cancel()
	if tr.Active() {
		t.Fatalf("tracker active after cancel")
	}
	if _, ok := tr.End(); ok {
		t.Fatalf("end after cancel must report ok=false")
	}
}

func TestHandleMouseAndTouchShareMath(t *testing.T) {
	mouse := []PointerEvent{
		MouseEvent{Kind: PhaseStart, X: 100, Y: 100},
		MouseEvent{Kind: PhaseMove, X: 180, Y: 110},
		MouseEvent{Kind: PhaseEnd, X: 240, Y: 120},
	}
	touch := []PointerEvent{
		TouchEvent{Kind: PhaseStart, Touches: []Point{{X: 100, Y: 100}, {X: 1, Y: 1}}},
		TouchEvent{Kind: PhaseMove, Touches: []Point{{X: 240, Y: 120}}},
		TouchEvent{Kind: PhaseEnd},
	}

	run := func(events []PointerEvent) Result {
		var tr Tracker
		var last Result
		for _, ev := range events {
			last = tr.Handle(ev)
		}
		return last
	}

	m := run(mouse)
	tc := run(touch)
	if !m.Ended || !tc.Ended {
		t.Fatalf("both streams must end a drag: mouse=%+v touch=%+v", m, tc)
	}
	if m.Offset != tc.Offset {
		t.Fatalf("mouse and touch offsets differ: mouse=%+v touch=%+v", m.Offset, tc.Offset)
	}
	if m.Offset.X != 140 {
		t.Fatalf("unexpected offset: got %v want 140", m.Offset.X)
	}
}

func TestHandleLeaveCancelsDrag(t *testing.T) {
	var tr Tracker
	tr.Handle(MouseEvent{Kind: PhaseStart, X: 0})
	tr.Handle(MouseEvent{Kind: PhaseMove, X: 400})
	if res := tr.Handle(MouseEvent{Kind: PhaseLeave, X: 400}); res.Ended {
		t.Fatalf("leave must not produce a final offset")
	}
	if res := tr.Handle(MouseEvent{Kind: PhaseEnd, X: 400}); res.Ended {
		t.Fatalf("end after leave must be ignored")
	}
}

func TestParsePhase(t *testing.T) {
	if _, err := ParsePhase("start"); err != nil {
		t.Fatalf("parse start: %v", err)
	}
	if _, err := ParsePhase("wiggle"); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
