package config

import (
	"math"
	"strconv"
	"strings"

	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/telemetry"
)

// Values is the persisted form of a config: keys mapped to booleans,
// integers, floats and color tuples of four 0-100 integers.
type Values map[string]any

type kind int

const (
	kindBool kind = iota
	kindInt
	kindFloat
)

type field struct {
	key  string
	kind kind
	b    *bool
	i    *int
	f    *float64
}

func (cfg *Config) fields() []field {
	b := func(key string, v *bool) field { return field{key: key, kind: kindBool, b: v} }
	i := func(key string, v *int) field { return field{key: key, kind: kindInt, i: v} }
	f := func(key string, v *float64) field { return field{key: key, kind: kindFloat, f: v} }

	return []field{
		b("show_throttle", &cfg.ShowThrottle),
		b("show_brake", &cfg.ShowBrake),
		b("show_clutch", &cfg.ShowClutch),
		b("show_steering", &cfg.ShowSteering),
		b("show_handbrake", &cfg.ShowHandbrake),
		b("show_gx", &cfg.ShowGX),
		b("show_gz", &cfg.ShowGZ),
		b("show_ffb", &cfg.ShowFFB),
		b("show_throttle_bar", &cfg.ShowThrottleBar),
		b("show_brake_bar", &cfg.ShowBrakeBar),
		b("show_clutch_bar", &cfg.ShowClutchBar),
		b("show_handbrake_bar", &cfg.ShowHandbrakeBar),
		b("show_ffb_bar", &cfg.ShowFFBBar),
		b("show_bar_value", &cfg.ShowBarValue),
		b("show_graph_lines", &cfg.ShowGraphLines),
		b("show_telemetry_label", &cfg.ShowTelemetryLabel),
		b("show_wheel", &cfg.ShowWheel),
		b("open_settings_click", &cfg.OpenSettingsClick),
		b("metric", &cfg.Metric),
		b("wheel_show_gear", &cfg.WheelShowGear),
		b("wheel_show_speed", &cfg.WheelShowSpeed),
		b("pedals_end_stop", &cfg.PedalsEndStop),
		b("pedals_base_stop", &cfg.PedalsBaseStop),
		b("ffb_flash_on_clip", &cfg.FFBFlashOnClip),
		b("prefer_compositor", &cfg.PreferCompositor),

		i("app_height", &cfg.AppHeight),
		i("app_width", &cfg.AppWidth),
		i("sample_rate", &cfg.SampleRate),
		i("trace_size", &cfg.TraceSize),
		i("denoise_g", &cfg.DenoiseG),
		i("padding", &cfg.Padding),
		i("bar_width", &cfg.BarWidth),
		i("steering_sensitivity", &cfg.SteeringSensitivity),
		i("wheel_depth", &cfg.WheelDepth),
		i("wheel_angle", &cfg.WheelAngle),

		f("time_window", &cfg.TimeWindow),
		f("opacity", &cfg.Opacity),
	}
}

// ColorKey returns the key holding the color of ch.
func ColorKey(ch telemetry.Channel) string {
	return ch.String() + "_color"
}

// Keys returns every key a config is stored under.
func Keys() []string {
	cfg := NewZeroConfig()

	var keys []string
	for _, f := range cfg.fields() {
		keys = append(keys, f.key)
	}

	for _, ch := range telemetry.Channels() {
		keys = append(keys, ColorKey(ch))
	}

	return keys
}

// Load builds a config from stored values. Missing or unreadable keys keep
// their default and make the config dirty, as does a float stored for an
// integer key. The result is sanitized.
func Load(vals Values) Config {
	cfg := NewZeroConfig()

	for _, f := range cfg.fields() {
		raw, ok := vals[f.key]
		if !ok {
			cfg.Dirty = true
			continue
		}

		var exact bool

		switch f.kind {
		case kindBool:
			ok = parseBool(raw, f.b)
			exact = true
		case kindInt:
			ok, exact = parseInt(raw, f.i)
		case kindFloat:
			ok = parseFloat(raw, f.f)
			exact = true
		}

		if !ok || !exact {
			cfg.Dirty = true
		}
	}

	for _, ch := range telemetry.Channels() {
		c, ok := parseColor(vals[ColorKey(ch)])
		if !ok {
			cfg.Dirty = true
			continue
		}

		cfg.Colors[ch] = c
	}

	cfg.Sanitize()

	return cfg
}

// Values returns the config in its stored form.
func (cfg *Config) Values() Values {
	vals := Values{}

	for _, f := range cfg.fields() {
		switch f.kind {
		case kindBool:
			vals[f.key] = *f.b
		case kindInt:
			vals[f.key] = *f.i
		case kindFloat:
			vals[f.key] = *f.f
		}
	}

	for _, ch := range telemetry.Channels() {
		vals[ColorKey(ch)] = colorValue(cfg.Color(ch))
	}

	return vals
}

func parseBool(raw any, dst *bool) bool {
	switch v := raw.(type) {
	case bool:
		*dst = v
		return true

	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false
		}

		*dst = b
		return true

	default:
		return false
	}
}

// parseInt reports whether raw could be read and whether it was an integer.
func parseInt(raw any, dst *int) (ok, exact bool) {
	switch v := raw.(type) {
	case int:
		*dst = v
		return true, true

	case int64:
		*dst = int(v)
		return true, true

	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false, false
		}

		*dst = int(v)
		return true, false

	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
			return true, true
		}

		var f float64
		if !parseFloat(s, &f) {
			return false, false
		}

		return parseInt(f, dst)

	default:
		return false, false
	}
}

func parseFloat(raw any, dst *float64) bool {
	var f float64

	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return false
		}
		f = n
	default:
		return false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}

	*dst = f
	return true
}

// parseColor reads four 0-100 integers, as a sequence or as the legacy
// "r,g,b,a" string.
func parseColor(raw any) (graphic.Color, bool) {
	var parts []any

	switch v := raw.(type) {
	case []any:
		parts = v
	case []int:
		for _, n := range v {
			parts = append(parts, n)
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			parts = append(parts, s)
		}
	default:
		return graphic.Color{}, false
	}

	if len(parts) != 4 {
		return graphic.Color{}, false
	}

	var ch [4]float64
	for i, p := range parts {
		var n int
		if ok, exact := parseInt(p, &n); !ok || !exact {
			return graphic.Color{}, false
		}

		ch[i] = float64(n) / 100
	}

	return graphic.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

func colorValue(c graphic.Color) []int {
	return []int{
		int(math.Round(c.R * 100)),
		int(math.Round(c.G * 100)),
		int(math.Round(c.B * 100)),
		int(math.Round(c.A * 100)),
	}
}
