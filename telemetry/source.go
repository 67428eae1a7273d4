// Package telemetry defines the raw signals read from the simulator and the
// backends that produce them.
package telemetry

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Frame is one raw reading of every signal.
type Frame struct {
	Throttle  float64 // [0, 1]
	Brake     float64 // [0, 1]
	Clutch    float64 // [0, 1] as reported by the simulator, 1 is pedal up
	Handbrake float64 // [0, 1]
	FFB       float64 // last force feedback value, [0, 1] when not clipping
	Steering  float64 // steering wheel angle in degrees

	// AccG is the acceleration in g along x (lateral), y (vertical) and
	// z (longitudinal).
	AccG [3]float64

	// Gear uses the simulator numbering: 0 reverse, 1 neutral, n is gear n-1.
	Gear int

	SpeedKMH float64
	SpeedMPH float64
}

// Raw returns the unconditioned value of a channel.
func (f Frame) Raw(ch Channel) float64 {
	switch ch {
	case Throttle:
		return f.Throttle
	case Brake:
		return f.Brake
	case Clutch:
		return f.Clutch
	case Handbrake:
		return f.Handbrake
	case ForceFeedback:
		return f.FFB
	case Steering:
		return f.Steering
	case LateralG:
		return f.AccG[0]
	case LongitudinalG:
		return f.AccG[2]
	default:
		return 0
	}
}

// GearString formats a simulator gear number.
func GearString(gear int) string {
	switch gear {
	case 0:
		return "R"
	case 1:
		return "N"
	default:
		return strconv.Itoa(gear - 1)
	}
}

// Source produces frames for the focused car.
type Source interface {
	// Poll reads the latest frame.
	Poll() (Frame, error)

	// PlaybackRate is the replay time multiplier: positive while time runs,
	// zero while paused, negative while rewinding.
	PlaybackRate() float64

	Close() error
}

// RateController is implemented by sources whose playback rate can be
// driven from the host (pause, rewind).
type RateController interface {
	SetPlaybackRate(rate float64)
}

// Params are source params
type Params struct {
	Path       string  // recording to read, for file backed sources
	SampleRate float64 // rate at which Poll is expected to be called
	Loop       bool    // restart from the beginning when a recording ends
}

// Backend opens sources.
type Backend interface {
	Open(Params) (Source, error)
}

// BackendFunc adapts a function to a Backend.
type BackendFunc func(Params) (Source, error)

// Open calls f.
func (f BackendFunc) Open(p Params) (Source, error) {
	return f(p)
}

var backends = map[string]Backend{}

// RegisterBackend registers a backend globally. This function is not
// thread-safe, and most packages should call it on init().
func RegisterBackend(name string, b Backend) {
	backends[name] = b
}

// BackendNames returns the registered backend names, sorted.
func BackendNames() []string {
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}

// Open opens a source from the named backend.
func Open(name string, p Params) (Source, error) {
	b, ok := backends[name]
	if !ok {
		return nil, errors.Errorf("backend not found: %q", name)
	}

	src, err := b.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s source", name)
	}

	return src, nil
}
