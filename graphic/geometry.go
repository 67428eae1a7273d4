package graphic

import (
	"github.com/noriah/teletrace/telemetry"
)

// GeometryRenderer draws every channel as a Trace of quads.
type GeometryRenderer struct {
	cfg    ChartConfig
	traces []*channelTrace
}

type channelTrace struct {
	ch telemetry.Channel
	*Trace
}

var _ TraceRenderer = (*GeometryRenderer)(nil)

// NewGeometryRenderer returns a renderer with no channels.
func NewGeometryRenderer(cfg ChartConfig) *GeometryRenderer {
	return &GeometryRenderer{cfg: cfg}
}

func (g *GeometryRenderer) find(ch telemetry.Channel) int {
	for i, t := range g.traces {
		if t.ch == ch {
			return i
		}
	}

	return -1
}

// AddChannel adds an empty trace for ch.
func (g *GeometryRenderer) AddChannel(ch telemetry.Channel, c Color) {
	if i := g.find(ch); i >= 0 {
		g.traces[i].SetColor(c)
		return
	}

	g.traces = append(g.traces, &channelTrace{
		ch:    ch,
		Trace: NewTrace(g.cfg.Bounds, g.cfg.SampleSize(), g.cfg.TraceWidth, c),
	})
}

// RemoveChannel drops the trace of ch.
func (g *GeometryRenderer) RemoveChannel(ch telemetry.Channel) {
	if i := g.find(ch); i >= 0 {
		g.traces = append(g.traces[:i], g.traces[i+1:]...)
	}
}

// SetColor changes the color of ch.
func (g *GeometryRenderer) SetColor(ch telemetry.Channel, c Color) {
	if i := g.find(ch); i >= 0 {
		g.traces[i].SetColor(c)
	}
}

// Update feeds every trace its sample.
func (g *GeometryRenderer) Update(rate float64, samples []Sample) {
	for _, s := range samples {
		if i := g.find(s.Channel); i >= 0 {
			g.traces[i].Update(rate, s.Value)
		}
	}
}

// Render draws the traces in the order they were added.
func (g *GeometryRenderer) Render(c Canvas) error {
	for _, t := range g.traces {
		if err := t.Draw(c); err != nil {
			return err
		}
	}

	return nil
}

// Clear empties every trace.
func (g *GeometryRenderer) Clear() {
	for _, t := range g.traces {
		t.Clear()
	}
}

// Trace returns the trace of ch, or nil.
func (g *GeometryRenderer) Trace(ch telemetry.Channel) *Trace {
	if i := g.find(ch); i >= 0 {
		return g.traces[i].Trace
	}

	return nil
}

// Channels returns the traced channels in draw order.
func (g *GeometryRenderer) Channels() []telemetry.Channel {
	out := make([]telemetry.Channel, len(g.traces))
	for i, t := range g.traces {
		out[i] = t.ch
	}

	return out
}
