// Package dsp conditions raw telemetry into the [0, 1] range drawn by the
// traces and gauges.
package dsp

import (
	"math"

	"github.com/noriah/teletrace/telemetry"
	"github.com/noriah/teletrace/util"
)

const (
	// DefaultBound is the starting autoscale bound for g-force channels.
	DefaultBound = 2.8

	// DefaultDenoise is the default moving average window size.
	DefaultDenoise = 5

	// DefaultSensitivity is the steering angle in degrees that maps to the
	// full [0, 1] range (two full turns lock to lock).
	DefaultSensitivity = 720.0

	// OutlierFactor limits how far past the current bound a reading may be
	// before it enters the window.
	OutlierFactor = 1.1
)

// Conditioner turns one raw reading into a value in [0, 1].
type Conditioner interface {
	Condition(raw float64) float64
}

// Clamp passes values through, clamped to [0, 1]. Inverted clamps output
// 1 - raw.
type Clamp struct {
	Invert bool
}

// Condition clamps raw.
func (c Clamp) Condition(raw float64) float64 {
	raw = sanitize(raw)

	if c.Invert {
		raw = 1 - raw
	}

	return clamp(raw, 0, 1)
}

// DenoiseConfig configures a Denoise conditioner.
type DenoiseConfig struct {
	Window int     // number of readings averaged
	Bound  float64 // initial autoscale bound
}

// Denoise averages signed readings and maps them onto [0, 1] around 0.5.
//
// The bound only grows. When the mean of the window is larger than the bound,
// the bound becomes the mean.
type Denoise struct {
	window *util.MovingWindow
	bound  float64
}

// NewDenoise returns a denoise conditioner. Zero fields take defaults.
func NewDenoise(cfg DenoiseConfig) *Denoise {
	if cfg.Window < 1 {
		cfg.Window = DefaultDenoise
	}

	if cfg.Bound <= 0 {
		cfg.Bound = DefaultBound
	}

	return &Denoise{
		window: util.NewMovingWindow(cfg.Window),
		bound:  cfg.Bound,
	}
}

// Condition pushes raw into the window and returns the scaled mean.
func (d *Denoise) Condition(raw float64) float64 {
	limit := d.bound * OutlierFactor

	d.window.Update(clamp(-sanitize(raw), -limit, limit))

	return d.Value()
}

// Value returns the scaled mean of the window without adding a reading. An
// empty window reads as 0.5.
func (d *Denoise) Value() float64 {
	if d.window.Len() == 0 {
		return 0.5
	}

	mean := d.window.Mean()
	if math.Abs(mean) > d.bound {
		d.bound = math.Abs(mean)
	}

	return 0.5 + mean/(2*d.bound)
}

// SetWindow resizes the moving average window, dropping the oldest readings
// if needed.
func (d *Denoise) SetWindow(size int) {
	d.window.Resize(size)
}

// Window returns the moving average window size.
func (d *Denoise) Window() int {
	return d.window.Cap()
}

// Bound returns the current autoscale bound.
func (d *Denoise) Bound() float64 {
	return d.bound
}

// Angular maps a steering angle in degrees onto [0, 1], 0.5 being straight
// ahead.
type Angular struct {
	// Sensitivity is the lock to lock angle in degrees.
	Sensitivity float64
}

// Condition maps the angle.
func (a *Angular) Condition(angle float64) float64 {
	sens := a.Sensitivity
	if sens <= 0 {
		sens = DefaultSensitivity
	}

	return clamp(0.5-sanitize(angle)/sens, 0, 1)
}

// Degrees is the inverse of Condition: the wheel angle drawn for a
// normalized value.
func (a *Angular) Degrees(norm float64) float64 {
	sens := a.Sensitivity
	if sens <= 0 {
		sens = DefaultSensitivity
	}

	return (0.5 - norm) * sens
}

// Settings are the live tunables of a conditioner set.
type Settings struct {
	Denoise     int
	Sensitivity float64
}

// Set holds one conditioner per channel.
type Set struct {
	conds    map[telemetry.Channel]Conditioner
	steering *Angular
	denoise  []*Denoise
}

// NewSet builds the conditioner for every channel:
//   - throttle, brake, handbrake and force feedback are clamped
//   - clutch is clamped and inverted
//   - lateral and longitudinal g are denoised and autoscaled
//   - steering is mapped by angle
func NewSet(s Settings) *Set {
	set := &Set{
		conds:    make(map[telemetry.Channel]Conditioner),
		steering: &Angular{Sensitivity: s.Sensitivity},
	}

	for _, ch := range telemetry.Channels() {
		switch ch {
		case telemetry.Clutch:
			set.conds[ch] = Clamp{Invert: true}

		case telemetry.LateralG, telemetry.LongitudinalG:
			d := NewDenoise(DenoiseConfig{Window: s.Denoise})
			set.denoise = append(set.denoise, d)
			set.conds[ch] = d

		case telemetry.Steering:
			set.conds[ch] = set.steering

		default:
			set.conds[ch] = Clamp{}
		}
	}

	return set
}

// Apply updates the tunables. Autoscale bounds are kept.
func (s *Set) Apply(st Settings) {
	if st.Denoise < 1 {
		st.Denoise = DefaultDenoise
	}

	s.steering.Sensitivity = st.Sensitivity
	for _, d := range s.denoise {
		d.SetWindow(st.Denoise)
	}
}

// Get returns the conditioner of ch.
func (s *Set) Get(ch telemetry.Channel) Conditioner {
	return s.conds[ch]
}

// Steering returns the steering conditioner.
func (s *Set) Steering() *Angular {
	return s.steering
}

// Condition conditions every channel of f into out, which is indexed by
// channel.
func (s *Set) Condition(f telemetry.Frame, out []float64) {
	for _, ch := range telemetry.Channels() {
		out[ch] = s.conds[ch].Condition(f.Raw(ch))
	}
}

// sanitize reads a missing (NaN) sample as zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
