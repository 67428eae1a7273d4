package graphic

import (
	"math"
	"strconv"

	"github.com/noriah/teletrace/telemetry"
)

// BarGap is the horizontal space between two bars.
const BarGap = 8.0

var (
	trackShade = 0.25
	stopIdle   = Gray(0.42)
	clipColor  = Color{1, 0, 0, 1}
)

// BarLabel formats a pedal value as a percentage. The slot only fits two
// digits, so a full 100 reads "00".
func BarLabel(v float64) string {
	rounded := int(math.RoundToEven(v * 100))
	if rounded == 100 {
		return "00"
	}

	return strconv.Itoa(rounded)
}

// BarConfig lays out the bar gauges to the right of the chart.
type BarConfig struct {
	Origin      Point   // top left of the chart
	ChartWidth  float64 // bars start after the chart
	ChartHeight float64
	BarWidth    float64
	Opacity     float64

	ShowValue   bool
	EndStop     bool
	BaseStop    bool
	FlashOnClip bool
}

// Bar is one gauge to draw.
type Bar struct {
	Channel telemetry.Channel
	Value   float64
	Color   Color
}

// BarGauges draws vertical fill gauges for the pedals and force feedback.
type BarGauges struct {
	cfg BarConfig
}

// NewBarGauges returns the gauges for cfg.
func NewBarGauges(cfg BarConfig) *BarGauges {
	return &BarGauges{cfg: cfg}
}

// SetConfig replaces the layout.
func (g *BarGauges) SetConfig(cfg BarConfig) {
	g.cfg = cfg
}

// Track returns the background rectangle of the i-th bar.
func (g *BarGauges) Track(i int) Rect {
	cfg := g.cfg

	r := Rect{
		X: cfg.Origin.X + cfg.ChartWidth + float64(i)*(cfg.BarWidth+BarGap) + 10,
		Y: cfg.Origin.Y,
		W: cfg.BarWidth,
		H: cfg.ChartHeight,
	}

	if cfg.ShowValue {
		r.Y += cfg.BarWidth * 1.1
		r.H -= cfg.BarWidth * 1.1
	}

	return r
}

// Draw draws bars left to right.
func (g *BarGauges) Draw(c Canvas, bars []Bar) error {
	for i, b := range bars {
		if err := g.drawBar(c, i, b); err != nil {
			return err
		}
	}

	return nil
}

func (g *BarGauges) drawBar(c Canvas, i int, b Bar) error {
	cfg := g.cfg
	track := g.Track(i)

	if err := FillRect(c, track, Gray(trackShade).WithAlpha(cfg.Opacity)); err != nil {
		return err
	}

	v := unit(b.Value)
	clipping := v >= 1

	fill := b.Color.WithAlpha(1)
	if clipping && cfg.FlashOnClip && b.Channel == telemetry.ForceFeedback {
		fill = clipColor
	}

	h := track.H * v
	if h > 0 {
		r := Rect{track.X, track.Y + track.H - h, track.W, h}
		if err := FillRect(c, r, fill); err != nil {
			return err
		}
	}

	stop := math.Max(2, math.Round(cfg.BarWidth*0.2))

	if cfg.EndStop {
		col := stopIdle
		if clipping {
			col = fill
		}

		r := Rect{track.X, track.Y, track.W, stop}
		if err := FillRect(c, r, col); err != nil {
			return err
		}
	}

	if cfg.BaseStop {
		col := stopIdle
		if v > 0 {
			col = fill
		}

		r := Rect{track.X, track.Y + track.H - stop, track.W, stop}
		if err := FillRect(c, r, col); err != nil {
			return err
		}
	}

	if cfg.ShowValue {
		p := Point{track.X, cfg.Origin.Y}
		if err := c.Text(BarLabel(v), p, cfg.BarWidth, Gray(1)); err != nil {
			return err
		}
	}

	return nil
}
