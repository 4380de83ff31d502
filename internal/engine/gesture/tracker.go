package gesture

// Point is a position on the tracking surface.
type Point struct {
	X float64
	Y float64
}

// Offset is the displacement of the pointer from the drag origin.
type Offset struct {
	X float64
	Y float64
}

func (p Point) Sub(o Point) Offset {
	return Offset{X: p.X - o.X, Y: p.Y - o.Y}
}

// Tracker converts a pointer stream into an offset from the drag origin.
// It is not safe for concurrent use; the owning session serializes calls.
type Tracker struct {
	origin Point
	offset Offset
	active bool
}

// Begin starts a drag. A redundant start re-bases the origin.
func (t *Tracker) Begin(p Point) {
	t.origin = p
	t.offset = Offset{}
	t.active = true
}

// Update moves the pointer. Stray moves outside a drag are ignored.
func (t *Tracker) Update(p Point) {
	if !t.active {
		return
	}
	t.offset = p.Sub(t.origin)
}

// End finishes the drag and returns the final offset. ok is false when no
// drag was active.
func (t *Tracker) End() (Offset, bool) {
	if !t.active {
		return Offset{}, false
	}
	final := t.offset
	t.reset()
	return final, true
}

// Cancel drops the drag without producing an offset.
func (t *Tracker) Cancel() {
	t.reset()
}

func (t *Tracker) Active() bool {
	return t.active
}

// Offset returns the live offset, zero when idle.
func (t *Tracker) Offset() Offset {
	return t.offset
}

func (t *Tracker) reset() {
	t.origin = Point{}
	t.offset = Offset{}
	t.active = false
}
