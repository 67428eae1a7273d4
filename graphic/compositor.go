package graphic

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/noriah/teletrace/telemetry"
)

// ScrollCompositor keeps the trace history as pixels. Every update shifts
// the picture one pixel left and draws the new sample of each channel into
// the rightmost column, so column k always holds the sample taken k updates
// before the newest.
type ScrollCompositor struct {
	alloc Allocator
	cfg   ChartConfig
	log   *slog.Logger

	primary Target
	scratch Target

	width  int
	height int

	channels []*compChannel
}

type compChannel struct {
	ch     telemetry.Channel
	color  Color
	prev   float64
	primed bool
}

var _ TraceRenderer = (*ScrollCompositor)(nil)

// NewScrollCompositor returns a compositor. Setup must succeed before it is
// used. Failed updates are logged to log, which may be nil.
func NewScrollCompositor(alloc Allocator, cfg ChartConfig, log *slog.Logger) *ScrollCompositor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ScrollCompositor{alloc: alloc, cfg: cfg, log: log}
}

// Setup (re)allocates the primary and scratch targets at the chart size.
// Failures wrap ErrUnavailable.
func (sc *ScrollCompositor) Setup() error {
	sc.release()

	w, h := int(sc.cfg.Bounds.W), int(sc.cfg.Bounds.H)
	if w < 1 || h < 1 {
		return errors.Wrapf(ErrUnavailable, "chart too small (%dx%d)", w, h)
	}

	if sc.alloc == nil {
		return errors.Wrap(ErrUnavailable, "no target allocator")
	}

	primary, err := sc.alloc.NewTarget(w, h)
	if err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}

	scratch, err := sc.alloc.NewTarget(w, h)
	if err != nil {
		primary.Dispose()
		return errors.Wrap(ErrUnavailable, err.Error())
	}

	sc.primary, sc.scratch = primary, scratch
	sc.width, sc.height = w, h

	sc.Clear()

	return nil
}

// Resize changes the chart layout and reallocates the targets.
func (sc *ScrollCompositor) Resize(cfg ChartConfig) error {
	sc.cfg = cfg
	return sc.Setup()
}

func (sc *ScrollCompositor) release() {
	if sc.primary != nil {
		sc.primary.Dispose()
		sc.primary = nil
	}

	if sc.scratch != nil {
		sc.scratch.Dispose()
		sc.scratch = nil
	}
}

// Dispose releases the targets.
func (sc *ScrollCompositor) Dispose() {
	sc.release()
}

func (sc *ScrollCompositor) find(ch telemetry.Channel) *compChannel {
	for _, c := range sc.channels {
		if c.ch == ch {
			return c
		}
	}

	return nil
}

// AddChannel starts drawing ch from the next update on.
func (sc *ScrollCompositor) AddChannel(ch telemetry.Channel, c Color) {
	if cc := sc.find(ch); cc != nil {
		cc.color = c
		return
	}

	sc.channels = append(sc.channels, &compChannel{ch: ch, color: c})
}

// RemoveChannel stops drawing ch. Its history scrolls out on its own.
func (sc *ScrollCompositor) RemoveChannel(ch telemetry.Channel) {
	for i, c := range sc.channels {
		if c.ch == ch {
			sc.channels = append(sc.channels[:i], sc.channels[i+1:]...)
			return
		}
	}
}

// SetColor changes the color of new columns for ch.
func (sc *ScrollCompositor) SetColor(ch telemetry.Channel, c Color) {
	if cc := sc.find(ch); cc != nil {
		cc.color = c
	}
}

// Update scrolls the picture and draws the new column of every channel.
func (sc *ScrollCompositor) Update(rate float64, samples []Sample) {
	switch {
	case sc.primary == nil, rate == 0:
		return
	case rate < 0:
		sc.Clear()
		return
	}

	if err := sc.shift(); err != nil {
		sc.log.Warn("scroll failed, update skipped", "err", err)
		return
	}

	sc.primary.SetBlend(BlendAdditive)

	for _, s := range samples {
		cc := sc.find(s.Channel)
		if cc == nil {
			continue
		}

		if !cc.primed {
			cc.prev = s.Value
			cc.primed = true
		}

		if err := sc.drawColumn(cc.prev, s.Value, cc.color); err != nil {
			sc.log.Warn("column failed", "channel", cc.ch, "err", err)
		}
		cc.prev = s.Value
	}

	sc.primary.SetBlend(BlendAlpha)
	sc.primary.GenerateMips()
}

// shift moves the primary picture one pixel left. A target cannot be read
// and written at once, so the copy goes through the scratch target:
// primary -> scratch shifted, then scratch -> primary unshifted. The
// scratch target is cleared first, so the rightmost column comes back
// transparent before the new samples are drawn. The copy back replaces
// every pixel of primary, which is only touched once scratch is complete:
// a failure at either hop leaves the picture as it was.
func (sc *ScrollCompositor) shift() error {
	sc.scratch.Clear()
	if err := sc.scratch.Blit(sc.primary, -1, 0); err != nil {
		return errors.Wrap(err, "shift into scratch")
	}

	return errors.Wrap(sc.primary.Blit(sc.scratch, 0, 0), "copy back")
}

// drawColumn draws the segment from prev to cur in the rightmost column.
// The trace width is added to the lower end of the segment so a flat trace
// is still TraceWidth pixels tall.
func (sc *ScrollCompositor) drawColumn(prev, cur float64, c Color) error {
	tw := sc.cfg.TraceWidth
	usable := float64(sc.height) - tw

	yPrev := (1 - prev) * usable
	yCur := (1 - cur) * usable

	var top, bottom float64

	if cur >= prev {
		// up: the line rises from prev to cur
		top = yCur
		bottom = yPrev + tw
	} else {
		// down
		top = yPrev
		bottom = yCur + tw
	}

	col := Rect{
		X: float64(sc.width - 1),
		Y: top,
		W: 1,
		H: bottom - top,
	}

	return FillRect(sc.primary, col, c)
}

// Render presents the primary target at the chart position.
func (sc *ScrollCompositor) Render(c Canvas) error {
	if sc.primary == nil {
		return nil
	}

	b := sc.cfg.Bounds
	return c.DrawTarget(sc.primary, Rect{b.X, b.Y, float64(sc.width), float64(sc.height)}, 1)
}

// Clear erases the picture and forgets the previous values.
func (sc *ScrollCompositor) Clear() {
	if sc.primary != nil {
		sc.primary.Clear()
	}

	if sc.scratch != nil {
		sc.scratch.Clear()
	}

	for _, c := range sc.channels {
		c.primed = false
	}
}

// Primary returns the target holding the picture.
func (sc *ScrollCompositor) Primary() Target {
	return sc.primary
}
