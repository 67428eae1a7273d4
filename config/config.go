// Package config holds the overlay settings and their persisted form, a flat
// map of keys to primitive values.
package config

import (
	"math"

	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/telemetry"
)

// Config is the overlay configuration.
type Config struct {
	// Traces
	ShowThrottle  bool
	ShowBrake     bool
	ShowClutch    bool
	ShowSteering  bool
	ShowHandbrake bool
	ShowGX        bool
	ShowGZ        bool
	ShowFFB       bool

	// Bars
	ShowThrottleBar  bool
	ShowBrakeBar     bool
	ShowClutchBar    bool
	ShowHandbrakeBar bool
	ShowFFBBar       bool
	ShowBarValue     bool
	PedalsEndStop    bool
	PedalsBaseStop   bool
	FFBFlashOnClip   bool

	// Chart
	ShowGraphLines     bool
	ShowTelemetryLabel bool
	OpenSettingsClick  bool
	PreferCompositor   bool

	// Wheel
	ShowWheel      bool
	WheelShowGear  bool
	WheelShowSpeed bool
	Metric         bool

	// AppHeight is the chart height in pixels
	AppHeight int
	// AppWidth is the chart width in pixels
	AppWidth int
	// SampleRate is the number of samples taken every second
	SampleRate int
	// TimeWindow is the number of seconds shown by the geometry traces
	TimeWindow float64
	// TraceSize is the trace line thickness in pixels
	TraceSize int
	// Opacity of the backgrounds
	Opacity float64
	// DenoiseG is the number of g readings averaged together
	DenoiseG int
	// Padding around the chart
	Padding int
	// BarWidth is the width of pedal bars
	BarWidth int
	// SteeringSensitivity is the steering angle, in degrees, shown at the
	// chart edges
	SteeringSensitivity int
	// WheelDepth is the wheel rim thickness
	WheelDepth int
	// WheelAngle is the width of the wheel marker in degrees
	WheelAngle int

	// Colors of every channel
	Colors map[telemetry.Channel]graphic.Color

	// Dirty is set when the stored values differ from the config, and the
	// config should be saved.
	Dirty bool
}

// NewZeroConfig returns a zero config
// it is the "default"
func NewZeroConfig() Config {
	return Config{
		ShowThrottle:      true,
		ShowBrake:         true,
		OpenSettingsClick: true,
		Metric:            true,
		WheelShowGear:     true,
		WheelShowSpeed:    true,
		PedalsEndStop:     true,
		FFBFlashOnClip:    true,
		PreferCompositor:  true,

		AppHeight:           100,
		AppWidth:            300,
		SampleRate:          40,
		TimeWindow:          7,
		TraceSize:           2,
		Opacity:             0.5,
		DenoiseG:            5,
		Padding:             0,
		BarWidth:            10,
		SteeringSensitivity: 720,
		WheelDepth:          8,
		WheelAngle:          15,

		Colors: DefaultColors(),
	}
}

// DefaultColors returns the default trace colors.
func DefaultColors() map[telemetry.Channel]graphic.Color {
	return map[telemetry.Channel]graphic.Color{
		telemetry.Throttle:      {R: 0.16, G: 1, B: 0, A: 1},
		telemetry.Brake:         {R: 1, G: 0.16, B: 0, A: 1},
		telemetry.Clutch:        {R: 0.16, G: 1, B: 1, A: 1},
		telemetry.Steering:      {R: 0.9, G: 0.9, B: 0.9, A: 1},
		telemetry.Handbrake:     {R: 0, G: 0.16, B: 1, A: 1},
		telemetry.LateralG:      {R: 1, G: 0.9, B: 0, A: 1},
		telemetry.LongitudinalG: {R: 0.5, G: 0, B: 0.9, A: 1},
		telemetry.ForceFeedback: {R: 0.55, G: 0.55, B: 0.55, A: 1},
	}
}

// Reset restores the defaults. The result is dirty so it gets saved.
func (cfg *Config) Reset() {
	*cfg = NewZeroConfig()
	cfg.Dirty = true
}

// Trace reports whether the trace of ch is shown.
func (cfg *Config) Trace(ch telemetry.Channel) bool {
	switch ch {
	case telemetry.Throttle:
		return cfg.ShowThrottle
	case telemetry.Brake:
		return cfg.ShowBrake
	case telemetry.Clutch:
		return cfg.ShowClutch
	case telemetry.Steering:
		return cfg.ShowSteering
	case telemetry.Handbrake:
		return cfg.ShowHandbrake
	case telemetry.LateralG:
		return cfg.ShowGX
	case telemetry.LongitudinalG:
		return cfg.ShowGZ
	case telemetry.ForceFeedback:
		return cfg.ShowFFB
	default:
		return false
	}
}

// BarChannels are the channels that can be shown as bars, in bar order.
var BarChannels = []telemetry.Channel{
	telemetry.Throttle,
	telemetry.Brake,
	telemetry.Clutch,
	telemetry.Handbrake,
	telemetry.ForceFeedback,
}

// Bar reports whether ch is shown as a bar.
func (cfg *Config) Bar(ch telemetry.Channel) bool {
	switch ch {
	case telemetry.Throttle:
		return cfg.ShowThrottleBar
	case telemetry.Brake:
		return cfg.ShowBrakeBar
	case telemetry.Clutch:
		return cfg.ShowClutchBar
	case telemetry.Handbrake:
		return cfg.ShowHandbrakeBar
	case telemetry.ForceFeedback:
		return cfg.ShowFFBBar
	default:
		return false
	}
}

// Bars returns the number of bars shown.
func (cfg *Config) Bars() int {
	var n int
	for _, ch := range BarChannels {
		if cfg.Bar(ch) {
			n++
		}
	}
	return n
}

// Color returns the color of ch, or white when it has none.
func (cfg *Config) Color(ch telemetry.Channel) graphic.Color {
	if c, ok := cfg.Colors[ch]; ok {
		return c
	}
	return graphic.Gray(1)
}

// LabelWidth is the width of the telemetry label strip, zero when hidden.
func (cfg *Config) LabelWidth() int {
	if !cfg.ShowTelemetryLabel {
		return 0
	}

	h := float64(cfg.AppHeight + 2*cfg.Padding)
	return int(math.RoundToEven(258.0 / 1250.0 * h))
}

// Origin returns the top left corner of the chart in the window.
func (cfg *Config) Origin() graphic.Point {
	x := float64(cfg.Padding)
	if cfg.ShowTelemetryLabel {
		x += float64(cfg.LabelWidth() + 6)
	}

	return graphic.Point{X: x, Y: float64(cfg.Padding)}
}

// WindowSize returns the window size needed to show everything enabled.
func (cfg *Config) WindowSize() (int, int) {
	w := cfg.AppWidth + 2*cfg.Padding
	h := cfg.AppHeight + 2*cfg.Padding

	if n := cfg.Bars(); n > 0 {
		w += n*(cfg.BarWidth+int(graphic.BarGap)) + 2
	}

	if cfg.ShowTelemetryLabel {
		w += cfg.LabelWidth() + 6
	}

	if cfg.ShowWheel {
		w += cfg.AppHeight + cfg.Padding
	}

	return w, h
}

type intRange struct {
	v      *int
	lo, hi int
}

type floatRange struct {
	v      *float64
	lo, hi float64
}

// Sanitize clamps every value into its settings range. A clamped config is
// dirty.
func (cfg *Config) Sanitize() {
	ints := []intRange{
		{&cfg.AppHeight, 10, 1000},
		{&cfg.AppWidth, 10, 1000},
		{&cfg.SampleRate, 1, 100},
		{&cfg.TraceSize, 1, 10},
		{&cfg.DenoiseG, 1, 50},
		{&cfg.Padding, 0, 30},
		{&cfg.BarWidth, 1, 50},
		{&cfg.SteeringSensitivity, 100, 1000},
		{&cfg.WheelDepth, 1, 30},
		{&cfg.WheelAngle, 1, 40},
	}

	for _, r := range ints {
		switch {
		case *r.v < r.lo:
			*r.v = r.lo
			cfg.Dirty = true
		case *r.v > r.hi:
			*r.v = r.hi
			cfg.Dirty = true
		default:
		}
	}

	floats := []floatRange{
		{&cfg.TimeWindow, 1, 60},
		{&cfg.Opacity, 0, 1},
	}

	for _, r := range floats {
		switch {
		case math.IsNaN(*r.v):
			*r.v = r.lo
			cfg.Dirty = true
		case *r.v < r.lo:
			*r.v = r.lo
			cfg.Dirty = true
		case *r.v > r.hi:
			*r.v = r.hi
			cfg.Dirty = true
		default:
		}
	}

	if cfg.Colors == nil {
		cfg.Colors = DefaultColors()
		cfg.Dirty = true
	}

	for ch, c := range cfg.Colors {
		clamped := graphic.Color{R: unit(c.R), G: unit(c.G), B: unit(c.B), A: unit(c.A)}
		if clamped != c {
			cfg.Colors[ch] = clamped
			cfg.Dirty = true
		}
	}
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
