// Package replay plays back recorded telemetry from a CSV file.
//
// The first row is a header naming the columns. Known columns are throttle,
// brake, clutch, handbrake, ffb, steering, gx, gy, gz, gear, speed_kmh.
// Unknown columns are ignored and missing ones read as zero. One row is one
// sample.
package replay

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/noriah/teletrace/telemetry"
)

func init() {
	telemetry.RegisterBackend("replay", telemetry.BackendFunc(
		func(p telemetry.Params) (telemetry.Source, error) {
			if p.Path == "" {
				return nil, errors.New("no recording path given")
			}

			src, err := Open(p.Path)
			if err != nil {
				return nil, err
			}

			src.Loop = p.Loop
			return src, nil
		}))
}

// Source replays frames.
type Source struct {
	frames []telemetry.Frame

	// Loop restarts playback at the other end when the recording runs out.
	Loop bool

	pos  float64
	rate float64
}

var _ telemetry.Source = (*Source)(nil)
var _ telemetry.RateController = (*Source)(nil)

// Open reads a recording from path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open recording")
	}
	defer f.Close()

	return Read(f)
}

// Read reads a recording.
func Read(r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
	}

	src := &Source{rate: 1, pos: -1}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		frame, err := parseRecord(columns, record)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		src.frames = append(src.frames, frame)
	}

	if len(src.frames) == 0 {
		return nil, errors.New("recording has no samples")
	}

	return src, nil
}

var known = map[string]bool{
	"throttle": true, "brake": true, "clutch": true, "handbrake": true,
	"ffb": true, "steering": true, "gx": true, "gy": true, "gz": true,
	"gear": true, "speed_kmh": true,
}

func parseRecord(columns, record []string) (telemetry.Frame, error) {
	var f telemetry.Frame

	for i, field := range record {
		if i >= len(columns) {
			break
		}

		field = strings.TrimSpace(field)
		if field == "" || !known[columns[i]] {
			continue
		}

		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return f, errors.Wrapf(err, "column %q", columns[i])
		}

		switch columns[i] {
		case "throttle":
			f.Throttle = v
		case "brake":
			f.Brake = v
		case "clutch":
			f.Clutch = v
		case "handbrake":
			f.Handbrake = v
		case "ffb":
			f.FFB = v
		case "steering":
			f.Steering = v
		case "gx":
			f.AccG[0] = v
		case "gy":
			f.AccG[1] = v
		case "gz":
			f.AccG[2] = v
		case "gear":
			f.Gear = int(v)
		case "speed_kmh":
			f.SpeedKMH = v
			f.SpeedMPH = v / 1.609344
		}
	}

	return f, nil
}

// Poll moves the play head by the playback rate and returns the frame under
// it. A rate of 1 plays one row per poll.
func (s *Source) Poll() (telemetry.Frame, error) {
	s.pos += s.rate

	n := float64(len(s.frames))

	switch {
	case (s.pos >= n || s.pos < 0) && s.Loop:
		// Mod keeps the sign, and -0 + n would land past the end
		s.pos = math.Mod(math.Mod(s.pos, n)+n, n)
	case s.pos >= n:
		s.pos = n - 1
	case s.pos < 0:
		s.pos = 0
	}

	return s.frames[int(s.pos)], nil
}

// Len returns the number of recorded frames.
func (s *Source) Len() int {
	return len(s.frames)
}

// Position returns the index of the frame last returned by Poll.
func (s *Source) Position() int {
	if s.pos < 0 {
		return 0
	}

	return int(s.pos)
}

// PlaybackRate returns the current rate.
func (s *Source) PlaybackRate() float64 {
	return s.rate
}

// SetPlaybackRate sets the rate.
func (s *Source) SetPlaybackRate(rate float64) {
	s.rate = rate
}

// Close does nothing, the recording is read fully by Open.
func (s *Source) Close() error {
	return nil
}
