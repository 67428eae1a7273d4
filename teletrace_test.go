package teletrace_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noriah/teletrace"
	"github.com/noriah/teletrace/config"
	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/graphic/raster"
	"github.com/noriah/teletrace/telemetry"
)

type fakeSource struct {
	frame  telemetry.Frame
	rate   float64
	err    error
	polls  int
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rate: 1,
		frame: telemetry.Frame{
			Throttle: 0.5,
			Brake:    0.25,
			Clutch:   1,
			Steering: 90,
			Gear:     4,
			SpeedKMH: 120,
			SpeedMPH: 74.5,
		},
	}
}

func (s *fakeSource) Poll() (telemetry.Frame, error) {
	s.polls++
	return s.frame, s.err
}

func (s *fakeSource) PlaybackRate() float64        { return s.rate }
func (s *fakeSource) SetPlaybackRate(rate float64) { s.rate = rate }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// brokenCanvas fails every draw.
type brokenCanvas struct{}

var errBroken = errors.New("broken")

func (brokenCanvas) FillQuad(graphic.Quad, graphic.Color) error { return errBroken }
func (brokenCanvas) Line(_, _ graphic.Point, _ float64, _ graphic.Color) error { return errBroken }
func (brokenCanvas) Text(string, graphic.Point, float64, graphic.Color) error { return errBroken }
func (brokenCanvas) DrawTarget(graphic.Target, graphic.Rect, float64) error { return errBroken }

func testConfig() config.Config {
	cfg := config.NewZeroConfig()
	cfg.SampleRate = 20
	cfg.PreferCompositor = false
	return cfg
}

func newOverlay(t *testing.T, opts teletrace.Options) (*teletrace.Overlay, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	o, err := teletrace.New(opts)
	require.NoError(t, err)

	return o, &buf
}

func traceOf(t *testing.T, o *teletrace.Overlay, ch telemetry.Channel) *graphic.Trace {
	t.Helper()

	g, ok := o.Renderer().(*graphic.GeometryRenderer)
	require.True(t, ok, "geometry renderer expected")

	tr := g.Trace(ch)
	require.NotNil(t, tr)
	return tr
}

func TestNewRequiresSource(t *testing.T) {
	_, err := teletrace.New(teletrace.Options{Config: testConfig()})
	assert.Error(t, err)
}

func TestUpdateCadence(t *testing.T) {
	src := newFakeSource()
	o, _ := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	for i := 0; i < 3; i++ {
		o.Update(0.05)
	}
	assert.Equal(t, 3, src.polls)

	o.Update(0.03)
	assert.Equal(t, 3, src.polls)

	// 0.06 is past the period; the extra 0.01 is dropped
	o.Update(0.03)
	assert.Equal(t, 4, src.polls)

	o.Update(0.04)
	assert.Equal(t, 4, src.polls)

	assert.Equal(t, 4, o.Ticks())
	assert.Len(t, traceOf(t, o, telemetry.Throttle).Samples(), 4)
}

func TestConditionedValues(t *testing.T) {
	src := newFakeSource()
	o, _ := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	assert.Equal(t, 0.5, o.Value(telemetry.Steering))

	o.Update(0.05)

	assert.Equal(t, 0.5, o.Value(telemetry.Throttle))
	assert.Equal(t, 0.25, o.Value(telemetry.Brake))
	assert.Equal(t, 0.0, o.Value(telemetry.Clutch))
	// 0.5 - 90/720
	assert.Equal(t, 0.375, o.Value(telemetry.Steering))

	assert.Equal(t, []float64{0.5}, traceOf(t, o, telemetry.Throttle).Samples())
	assert.Equal(t, []float64{0.25}, traceOf(t, o, telemetry.Brake).Samples())
}

func TestPauseHoldsTraces(t *testing.T) {
	src := newFakeSource()
	o, _ := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	o.Update(0.05)
	o.Update(0.05)
	before := traceOf(t, o, telemetry.Throttle).Quads()

	o.Control(telemetry.CommandPause)
	assert.Equal(t, 0.0, src.rate)
	assert.Equal(t, 0.0, o.PlaybackRate())

	for i := 0; i < 10; i++ {
		o.Update(0.05)
	}

	assert.Equal(t, 2, src.polls)
	assert.Equal(t, before, traceOf(t, o, telemetry.Throttle).Quads())

	o.Control(telemetry.CommandPause)
	o.Update(0.05)
	assert.Equal(t, 3, src.polls)
}

func TestRewindClearsTraces(t *testing.T) {
	src := newFakeSource()
	o, _ := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	o.Update(0.05)
	o.Update(0.05)
	require.Equal(t, graphic.TraceSteady, traceOf(t, o, telemetry.Throttle).State())

	o.Control(telemetry.CommandRewind)
	assert.Equal(t, -1.0, src.rate)

	o.Update(0.05)
	assert.Equal(t, 3, src.polls)
	assert.Equal(t, graphic.TraceEmpty, traceOf(t, o, telemetry.Throttle).State())
}

func TestPlaybackRateRefresh(t *testing.T) {
	src := newFakeSource()
	o, _ := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	src.rate = 0
	o.Update(0.05)
	assert.Equal(t, 1.0, o.PlaybackRate())

	o.Update(0.05)
	assert.Equal(t, 0.0, o.PlaybackRate())
	assert.Equal(t, 2, src.polls)

	o.Update(0.05)
	assert.Equal(t, 2, src.polls)
}

func TestPollErrorSkipsTick(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("shared memory gone")

	o, buf := newOverlay(t, teletrace.Options{Config: testConfig(), Source: src})

	o.Update(0.05)
	assert.Equal(t, 1, src.polls)
	assert.Equal(t, 0, o.Ticks())
	assert.Contains(t, buf.String(), "poll failed")
	assert.Contains(t, buf.String(), "shared memory gone")
	assert.Equal(t, graphic.TraceEmpty, traceOf(t, o, telemetry.Throttle).State())
}

func TestSavesDirtyConfig(t *testing.T) {
	src := newFakeSource()
	store := &config.MemStore{}

	cfg := testConfig()
	cfg.Dirty = true

	o, buf := newOverlay(t, teletrace.Options{Config: cfg, Source: src, Store: store})

	o.Update(0.05)
	assert.Equal(t, 0, store.Saves)

	o.Update(0.05)
	assert.Equal(t, 1, store.Saves)
	assert.Contains(t, buf.String(), "config saved")
	assert.False(t, o.Config().Dirty)

	saved := config.Load(store.Vals)
	assert.Equal(t, 20, saved.SampleRate)

	o.Update(0.1)
	assert.Equal(t, 1, store.Saves)
}

func TestCompositorSelection(t *testing.T) {
	cfg := config.NewZeroConfig()

	o, _ := newOverlay(t, teletrace.Options{
		Config:    cfg,
		Source:    newFakeSource(),
		Allocator: raster.Allocator{},
	})
	assert.True(t, o.Compositor())
	assert.IsType(t, &graphic.ScrollCompositor{}, o.Renderer())

	cfg.PreferCompositor = false
	o.Apply(cfg)
	assert.False(t, o.Compositor())
	assert.IsType(t, &graphic.GeometryRenderer{}, o.Renderer())

	o, buf := newOverlay(t, teletrace.Options{
		Config:    config.NewZeroConfig(),
		Source:    newFakeSource(),
		Allocator: raster.Allocator{MaxPixels: 100},
	})
	assert.False(t, o.Compositor())
	assert.Contains(t, buf.String(), "falling back")
}

func TestApplyLayout(t *testing.T) {
	cfg := testConfig()
	o, _ := newOverlay(t, teletrace.Options{Config: cfg, Source: newFakeSource()})

	w, h := o.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 100, h)

	cfg.ShowSteering = true
	cfg.ShowBrake = false
	cfg.ShowThrottleBar = true
	cfg.AppWidth = 5000
	o.Apply(cfg)

	g := o.Renderer().(*graphic.GeometryRenderer)
	assert.Equal(t, []telemetry.Channel{telemetry.Steering, telemetry.Throttle}, g.Channels())

	assert.Equal(t, 1000, o.Config().AppWidth)
	assert.True(t, o.Config().Dirty)

	w, _ = o.Size()
	assert.Equal(t, 1000+10+8+2, w)
}

func TestRender(t *testing.T) {
	cfg := testConfig()
	cfg.ShowGraphLines = true
	cfg.ShowTelemetryLabel = true
	cfg.ShowThrottleBar = true
	cfg.ShowFFBBar = true
	cfg.ShowWheel = true
	cfg.Opacity = 1

	o, buf := newOverlay(t, teletrace.Options{Config: cfg, Source: newFakeSource()})

	for i := 0; i < 5; i++ {
		o.Update(0.05)
	}

	w, h := o.Size()
	img := raster.New(w, h)
	require.NoError(t, o.Render(img, 1.0/60))
	assert.NotContains(t, buf.String(), "frame skipped")

	live := o.Config()
	origin := live.Origin()
	px := img.At(int(origin.X)+1, int(origin.Y)+1)
	assert.NotZero(t, px.A, "chart background")

	// the wheel rim crosses its horizontal center line
	last := img.At(w-3, h/2)
	assert.NotZero(t, last.A, "wheel rim")
}

func TestRenderFailureSkipsFrame(t *testing.T) {
	o, buf := newOverlay(t, teletrace.Options{Config: testConfig(), Source: newFakeSource()})

	err := o.Render(brokenCanvas{}, 1.0/60)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBroken))
	assert.Contains(t, buf.String(), "frame skipped")

	// state is untouched, the next tick still samples
	o.Update(0.05)
	assert.Equal(t, 1, o.Ticks())
}

func TestClose(t *testing.T) {
	src := newFakeSource()
	store := &config.MemStore{}

	cfg := testConfig()
	cfg.Dirty = true

	o, _ := newOverlay(t, teletrace.Options{Config: cfg, Source: src, Store: store})

	require.NoError(t, o.Close())
	assert.True(t, src.closed)
	assert.Equal(t, 1, store.Saves)
}
