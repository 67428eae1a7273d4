package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/telemetry"
)

func TestLoadEmptyUsesDefaults(t *testing.T) {
	cfg := Load(Values{})

	assert.True(t, cfg.Dirty)

	cfg.Dirty = false
	want := NewZeroConfig()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.ShowWheel = true
	cfg.AppWidth = 420
	cfg.Opacity = 0.8
	cfg.Colors[telemetry.Brake] = graphic.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}

	got := Load(cfg.Values())
	assert.False(t, got.Dirty)

	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestLoadInvalidKeyIsDirty(t *testing.T) {
	zero := NewZeroConfig()
	vals := zero.Values()
	vals["app_width"] = "wide"
	vals["show_brake"] = 3

	cfg := Load(vals)
	assert.True(t, cfg.Dirty)
	assert.Equal(t, 300, cfg.AppWidth)
	assert.True(t, cfg.ShowBrake)
}

func TestLoadFloatForInt(t *testing.T) {
	zero := NewZeroConfig()
	vals := zero.Values()
	vals["trace_size"] = 3.7

	cfg := Load(vals)
	assert.Equal(t, 3, cfg.TraceSize)
	assert.True(t, cfg.Dirty)

	vals["trace_size"] = "4.0"
	cfg = Load(vals)
	assert.Equal(t, 4, cfg.TraceSize)
	assert.True(t, cfg.Dirty)
}

func TestLoadNonFiniteFloatKeepsDefault(t *testing.T) {
	zero := NewZeroConfig()
	vals := zero.Values()
	vals["time_window"] = math.NaN()
	vals["opacity"] = math.Inf(1)

	cfg := Load(vals)
	assert.True(t, cfg.Dirty)
	assert.Equal(t, 7.0, cfg.TimeWindow)
	assert.Equal(t, 0.5, cfg.Opacity)

	vals["time_window"] = "-Inf"
	cfg = Load(vals)
	assert.Equal(t, 7.0, cfg.TimeWindow)
}

func TestLoadLegacyStrings(t *testing.T) {
	zero := NewZeroConfig()
	vals := zero.Values()
	vals["show_clutch"] = "True"
	vals["sample_rate"] = "60"
	vals["opacity"] = "0.25"
	vals["throttle_color"] = "10,20,30,40"

	cfg := Load(vals)
	assert.False(t, cfg.Dirty)
	assert.True(t, cfg.ShowClutch)
	assert.Equal(t, 60, cfg.SampleRate)
	assert.Equal(t, 0.25, cfg.Opacity)
	assert.Equal(t, graphic.Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}, cfg.Color(telemetry.Throttle))
}

func TestLoadBadColor(t *testing.T) {
	zero := NewZeroConfig()
	vals := zero.Values()
	vals["gx_color"] = []any{1, 2, 3}

	cfg := Load(vals)
	assert.True(t, cfg.Dirty)
	assert.Equal(t, DefaultColors()[telemetry.LateralG], cfg.Color(telemetry.LateralG))
}

func TestSanitize(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.AppHeight = 5
	cfg.SampleRate = 500
	cfg.Opacity = -1
	cfg.TimeWindow = 100
	cfg.Colors[telemetry.Clutch] = graphic.Color{R: 2, A: 1}

	cfg.Sanitize()

	assert.True(t, cfg.Dirty)
	assert.Equal(t, 10, cfg.AppHeight)
	assert.Equal(t, 100, cfg.SampleRate)
	assert.Equal(t, 0.0, cfg.Opacity)
	assert.Equal(t, 60.0, cfg.TimeWindow)
	assert.Equal(t, graphic.Color{R: 1, A: 1}, cfg.Color(telemetry.Clutch))

	clean := NewZeroConfig()
	clean.Sanitize()
	assert.False(t, clean.Dirty)
}

func TestReset(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.AppWidth = 999
	cfg.Reset()

	assert.Equal(t, 300, cfg.AppWidth)
	assert.True(t, cfg.Dirty)
}

func TestBarsAndTraces(t *testing.T) {
	cfg := NewZeroConfig()
	assert.Equal(t, 0, cfg.Bars())
	assert.True(t, cfg.Trace(telemetry.Throttle))
	assert.False(t, cfg.Trace(telemetry.Steering))

	cfg.ShowBrakeBar = true
	cfg.ShowFFBBar = true
	assert.Equal(t, 2, cfg.Bars())
	assert.True(t, cfg.Bar(telemetry.ForceFeedback))
	assert.False(t, cfg.Bar(telemetry.Steering))
}

func TestWindowSize(t *testing.T) {
	cfg := NewZeroConfig()
	cfg.Padding = 5

	w, h := cfg.WindowSize()
	assert.Equal(t, 310, w)
	assert.Equal(t, 110, h)

	cfg.ShowThrottleBar = true
	cfg.ShowBrakeBar = true
	w, _ = cfg.WindowSize()
	assert.Equal(t, 310+2*18+2, w)

	cfg.ShowTelemetryLabel = true
	// round(258 / 1250 * 110) = round(22.704)
	assert.Equal(t, 23, cfg.LabelWidth())
	w, _ = cfg.WindowSize()
	assert.Equal(t, 310+38+23+6, w)
	assert.Equal(t, graphic.Point{X: 5 + 23 + 6, Y: 5}, cfg.Origin())
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "time_window")
	assert.Contains(t, keys, "ffb_color")
	zero := NewZeroConfig()
	assert.Len(t, keys, len(zero.Values()))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s := FileStore{Path: filepath.Join(dir, "sub", "config.yaml")}

	vals, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, vals)

	cfg := NewZeroConfig()
	cfg.ShowGX = true
	cfg.Opacity = 0.75
	require.NoError(t, s.Save(cfg.Values()))

	vals, err = s.Load()
	require.NoError(t, err)

	got := Load(vals)
	assert.False(t, got.Dirty)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("file round trip (-want +got):\n%s", diff)
	}
}

func TestFileStoreBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_width: [1, 2\n"), 0o644))

	_, err := FileStore{Path: path}.Load()
	assert.Error(t, err)

	_, err = Open(FileStore{Path: path})
	assert.Error(t, err)
}

func TestFlush(t *testing.T) {
	store := &MemStore{}

	cfg, err := Open(store)
	require.NoError(t, err)
	require.True(t, cfg.Dirty)

	wrote, err := Flush(store, &cfg)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.False(t, cfg.Dirty)
	assert.Equal(t, 1, store.Saves)

	wrote, err = Flush(store, &cfg)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 1, store.Saves)

	again, err := Open(store)
	require.NoError(t, err)
	assert.False(t, again.Dirty)
}
