package gesture

import "fmt"

type Phase string

const (
	PhaseStart Phase = "start"
	PhaseMove  Phase = "move"
	PhaseEnd   Phase = "end"
	PhaseLeave Phase = "leave"
)

func ParsePhase(raw string) (Phase, error) {
	switch Phase(raw) {
	case PhaseStart, PhaseMove, PhaseEnd, PhaseLeave:
		return Phase(raw), nil
	default:
		return "", fmt.Errorf("unknown pointer phase %q", raw)
	}
}

// PointerEvent is a single input sample from any pointing device.
type PointerEvent interface {
	Phase() Phase
	// Position reports where the event happened. ok is false for events that
	// carry no coordinates (a touch end with no remaining touches).
	Position() (Point, bool)
}

// MouseEvent is a mouse button/motion sample.
type MouseEvent struct {
	Kind Phase
	X    float64
	Y    float64
}

func (e MouseEvent) Phase() Phase { return e.Kind }

func (e MouseEvent) Position() (Point, bool) {
	return Point{X: e.X, Y: e.Y}, true
}

// TouchEvent carries the active touch points; only the first one is tracked.
type TouchEvent struct {
	Kind    Phase
	Touches []Point
}

func (e TouchEvent) Phase() Phase { return e.Kind }

func (e TouchEvent) Position() (Point, bool) {
	if len(e.Touches) == 0 {
		return Point{}, false
	}
	return e.Touches[0], true
}

// Result describes what Handle did with an event.
type Result struct {
	// Ended is true when the event finished an active drag; Offset is then
	// the final offset to resolve.
	Ended  bool
	Offset Offset
}

// Handle routes an event to Begin/Update/End/Cancel.
func (t *Tracker) Handle(ev PointerEvent) Result {
	if ev == nil {
		return Result{}
	}

	switch ev.Phase() {
	case PhaseStart:
		if p, ok := ev.Position(); ok {
			t.Begin(p)
		}
	case PhaseMove:
		if p, ok := ev.Position(); ok {
			t.Update(p)
		}
	case PhaseEnd:
		if p, ok := ev.Position(); ok {
			t.Update(p)
		}
		offset, ok := t.End()
		if ok {
			return Result{Ended: true, Offset: offset}
		}
	case PhaseLeave:
		t.Cancel()
	}
	return Result{}
}
