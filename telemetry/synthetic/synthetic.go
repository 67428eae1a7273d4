// Package synthetic provides a generated telemetry source. It drives a car
// around an endless sequence of corners so every channel moves.
package synthetic

import (
	"math"

	"github.com/noriah/teletrace/telemetry"
)

// CornerPeriod is the time in seconds between two corners of the same
// direction.
const CornerPeriod = 8.0

func init() {
	telemetry.RegisterBackend("synthetic", telemetry.BackendFunc(
		func(p telemetry.Params) (telemetry.Source, error) {
			return New(p.SampleRate), nil
		}))
}

// Source is a generated telemetry source.
type Source struct {
	step float64
	rate float64
	t    float64
}

var _ telemetry.Source = (*Source)(nil)
var _ telemetry.RateController = (*Source)(nil)

// New returns a source expected to be polled sampleRate times per second.
func New(sampleRate float64) *Source {
	if sampleRate <= 0 {
		sampleRate = 1
	}

	return &Source{
		step: 1 / sampleRate,
		rate: 1,
	}
}

// Poll advances the generator clock by one sample scaled by the playback
// rate and returns the frame at the new time.
func (s *Source) Poll() (telemetry.Frame, error) {
	s.t += s.step * s.rate
	return At(s.t), nil
}

// PlaybackRate returns the current rate.
func (s *Source) PlaybackRate() float64 {
	return s.rate
}

// SetPlaybackRate sets the rate.
func (s *Source) SetPlaybackRate(rate float64) {
	s.rate = rate
}

// Close does nothing.
func (s *Source) Close() error {
	return nil
}

// At returns the frame at time t seconds.
func At(t float64) telemetry.Frame {
	phase := 2 * math.Pi * t / CornerPeriod

	// positive half is a straight, negative half is a braking zone followed
	// by the corner itself.
	s := math.Sin(phase)

	throttle := clamp(s*1.4, 0, 1)
	brake := clamp(-s*1.6-0.25, 0, 1)

	steer := 180 * math.Sin(phase/2) * math.Max(0, -s)

	speed := 140 + 90*math.Sin(phase-math.Pi/3)

	// a little deterministic chatter to give the denoiser something to do
	chatter := 0.08 * math.Sin(37*phase) * math.Sin(11*phase)

	latG := (steer/180)*2.2*(speed/230) + chatter
	lonG := throttle*0.55 - brake*1.9 + chatter

	ffb := clamp(math.Abs(latG)/2.2+0.05, 0, 1.2)

	var f telemetry.Frame
	f.Throttle = throttle
	f.Brake = brake
	f.Clutch = 1
	f.Handbrake = 0
	f.FFB = ffb
	f.Steering = steer
	f.AccG = [3]float64{latG, 1, lonG}
	f.Gear = gearFor(speed)
	f.SpeedKMH = speed
	f.SpeedMPH = speed / 1.609344

	return f
}

func gearFor(kmh float64) int {
	gear := 2 + int(kmh/45)
	if gear > 7 {
		gear = 7
	}

	return gear
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
