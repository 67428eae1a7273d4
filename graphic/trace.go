package graphic

import (
	"github.com/noriah/teletrace/util"
)

// BasePadding keeps the trace line off the chart edges.
const BasePadding = 2.0

// TraceState is where a trace is in its life cycle.
type TraceState int

// Trace states
const (
	TraceEmpty  TraceState = iota // no points
	TraceSingle                   // one point, no connector yet
	TraceSteady                   // two or more points
)

func (s TraceState) String() string {
	switch s {
	case TraceEmpty:
		return "empty"
	case TraceSingle:
		return "single"
	case TraceSteady:
		return "steady"
	default:
		return "unknown"
	}
}

// Trace is the scrolling line of one channel, kept as quad geometry.
//
// Every update moves all existing geometry left by one sample spacing and
// appends a connector to the previous point (if any) and a square around the
// new point. Old geometry is never rebuilt.
type Trace struct {
	color Color

	origin    Point // bottom left of the drawable area
	width     float64
	height    float64
	spacing   float64
	halfThick float64

	samples *util.Ring[float64]
	points  *util.Ring[Point]
	queue   *util.Ring[Quad]
	steady  bool
}

// NewTrace returns an empty trace drawn inside bounds. sampleSize is the
// number of samples visible across the width.
func NewTrace(bounds Rect, sampleSize int, thickness float64, c Color) *Trace {
	if sampleSize < 2 {
		sampleSize = 2
	}

	t := &Trace{
		color:   c,
		samples: util.NewRing[float64](sampleSize),
		points:  util.NewRing[Point](2),
		// N point squares and N-1 connectors
		queue: util.NewRing[Quad](2*sampleSize - 1),
	}

	t.layout(bounds, thickness)

	return t
}

func (t *Trace) layout(bounds Rect, thickness float64) {
	t.origin = Point{bounds.X + BasePadding, bounds.Y + bounds.H - BasePadding}
	t.width = bounds.W - 2*BasePadding
	t.height = bounds.H - 2*BasePadding
	t.spacing = t.width / float64(t.samples.Cap()-1)
	t.halfThick = thickness / 2
}

// Update adds value to the trace. rate is the playback rate of the
// simulation: positive adds the sample, zero does nothing and negative
// clears the trace.
func (t *Trace) Update(rate, value float64) {
	switch {
	case rate == 0:
		return
	case rate < 0:
		t.Clear()
		return
	}

	t.points.Each(func(p *Point) { p.X -= t.spacing })
	t.queue.Each(func(q *Quad) { q.ShiftX(-t.spacing) })

	t.samples.Push(value)

	p := Point{
		X: t.origin.X + t.width,
		Y: t.origin.Y - value*t.height,
	}

	lag, hasLag := t.points.Last()
	t.points.Push(p)

	if hasLag {
		t.queue.Push(t.connector(lag, p))
		t.steady = true
	}

	t.queue.Push(t.square(p))
}

// connector joins lag to p with a ribbon of constant thickness. It offsets
// opposite corners instead of mitering, which is close enough at the widths
// used.
func (t *Trace) connector(lag, p Point) Quad {
	h := t.halfThick

	if (p.X > lag.X) == (p.Y > lag.Y) {
		p1 := Point{lag.X + h, lag.Y - h}
		p2 := Point{p.X + h, p.Y - h}
		p3 := Point{p.X - h, p.Y + h}
		p4 := Point{lag.X - h, lag.Y + h}
		return Quad{p4, p3, p2, p1}
	}

	p1 := Point{lag.X - h, lag.Y - h}
	p2 := Point{p.X - h, p.Y - h}
	p3 := Point{p.X + h, p.Y + h}
	p4 := Point{lag.X + h, lag.Y + h}
	return Quad{p4, p3, p2, p1}
}

// square gives each point a cap so the line keeps its width at the joints.
func (t *Trace) square(p Point) Quad {
	h := t.halfThick

	return Quad{
		{p.X - h, p.Y + h},
		{p.X + h, p.Y + h},
		{p.X + h, p.Y - h},
		{p.X - h, p.Y - h},
	}
}

// Draw fills every queued quad.
func (t *Trace) Draw(c Canvas) error {
	for i := 0; i < t.queue.Len(); i++ {
		if err := c.FillQuad(t.queue.At(i), t.color); err != nil {
			return err
		}
	}

	return nil
}

// Clear drops all points and geometry.
func (t *Trace) Clear() {
	t.samples.Clear()
	t.points.Clear()
	t.queue.Clear()
	t.steady = false
}

// State returns the life cycle state.
func (t *Trace) State() TraceState {
	switch {
	case t.points.Len() == 0:
		return TraceEmpty
	case !t.steady:
		return TraceSingle
	default:
		return TraceSteady
	}
}

// SetColor changes the color used by Draw.
func (t *Trace) SetColor(c Color) {
	t.color = c
}

// Color returns the trace color.
func (t *Trace) Color() Color {
	return t.color
}

// Quads returns a copy of the render queue, oldest first.
func (t *Trace) Quads() []Quad {
	return t.queue.Slice()
}

// Samples returns a copy of the visible samples, oldest first.
func (t *Trace) Samples() []float64 {
	return t.samples.Slice()
}

// Capacity returns the maximum render queue length.
func (t *Trace) Capacity() int {
	return t.queue.Cap()
}
