package telemetry

// Channel identifies one telemetry signal that can be traced.
type Channel int

// Channels, in the order their traces are stacked (first is drawn first).
const (
	LongitudinalG Channel = iota
	LateralG
	ForceFeedback
	Steering
	Clutch
	Handbrake
	Throttle
	Brake

	channelCount
)

var channelNames = [channelCount]string{
	LongitudinalG: "gz",
	LateralG:      "gx",
	ForceFeedback: "ffb",
	Steering:      "steering",
	Clutch:        "clutch",
	Handbrake:     "handbrake",
	Throttle:      "throttle",
	Brake:         "brake",
}

// Channels returns every channel in draw order.
func Channels() []Channel {
	out := make([]Channel, channelCount)
	for i := range out {
		out[i] = Channel(i)
	}

	return out
}

// Valid reports whether ch is a known channel.
func (ch Channel) Valid() bool {
	return ch >= 0 && ch < channelCount
}

// String returns the config key prefix of the channel.
func (ch Channel) String() string {
	if !ch.Valid() {
		return "unknown"
	}

	return channelNames[ch]
}
