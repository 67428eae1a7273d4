package graphic

import (
	"log/slog"

	"github.com/noriah/teletrace/telemetry"
)

// Sample is one conditioned value of a channel.
type Sample struct {
	Channel telemetry.Channel
	Value   float64 // [0, 1]
}

// ChartConfig places and sizes the trace chart.
type ChartConfig struct {
	Bounds     Rect    // chart area on the canvas
	TraceWidth float64 // line thickness in pixels
	SampleRate float64 // samples per second
	TimeWindow float64 // seconds of history shown by the geometry renderer
}

// SampleSize returns the number of samples the geometry renderer keeps.
func (cfg ChartConfig) SampleSize() int {
	n := int(cfg.SampleRate * cfg.TimeWindow)
	if n < 2 {
		n = 2
	}

	return n
}

// TraceRenderer draws the scrolling history of a set of channels. All
// channels advance together on Update.
type TraceRenderer interface {
	// AddChannel starts tracing ch. Adding a channel twice only updates its
	// color.
	AddChannel(ch telemetry.Channel, c Color)

	// RemoveChannel stops tracing ch. Unknown channels are ignored.
	RemoveChannel(ch telemetry.Channel)

	// SetColor changes the color of a traced channel.
	SetColor(ch telemetry.Channel, c Color)

	// Update advances every channel by one sample. rate is the playback
	// rate: positive scrolls, zero holds and negative clears. Channels
	// without a value in samples are left alone.
	Update(rate float64, samples []Sample)

	// Render draws the current history.
	Render(c Canvas) error

	// Clear drops all history.
	Clear()
}

// Selection is the outcome of SelectRenderer.
type Selection struct {
	Renderer TraceRenderer

	// Compositor is true when the scroll compositor was set up, false when
	// the geometry renderer is used.
	Compositor bool
}

// SelectRenderer sets up the scroll compositor when an allocator is given
// and falls back to the geometry renderer if it is nil or its setup fails.
func SelectRenderer(alloc Allocator, cfg ChartConfig, log *slog.Logger) Selection {
	if alloc != nil {
		sc := NewScrollCompositor(alloc, cfg, log)
		err := sc.Setup()
		if err == nil {
			return Selection{Renderer: sc, Compositor: true}
		}

		if log != nil {
			log.Warn("falling back to geometry traces", "err", err)
		}
	}

	return Selection{Renderer: NewGeometryRenderer(cfg)}
}
