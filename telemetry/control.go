package telemetry

// Command is a playback request from a host.
type Command int

// Commands
const (
	CommandNone   Command = iota
	CommandPause          // toggles between paused and running
	CommandRewind         // toggles between rewinding and running
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandPause:
		return "pause"
	case CommandRewind:
		return "rewind"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// Control applies cmd to the playback rate of src. It returns the new rate
// and false when src has no controllable rate or cmd does not change it.
func Control(src Source, cmd Command) (float64, bool) {
	rc, ok := src.(RateController)
	if !ok {
		return src.PlaybackRate(), false
	}

	rate := src.PlaybackRate()

	switch cmd {
	case CommandPause:
		if rate == 0 {
			rate = 1
		} else {
			rate = 0
		}

	case CommandRewind:
		if rate < 0 {
			rate = 1
		} else {
			rate = -1
		}

	default:
		return rate, false
	}

	rc.SetPlaybackRate(rate)

	return rate, true
}
