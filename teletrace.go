// Package teletrace is a telemetry overlay for racing simulators. It turns
// the driver inputs and car dynamics of every tick into scrolling traces, bar
// gauges and a steering wheel, drawn on whatever surface the host provides.
package teletrace

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/noriah/teletrace/config"
	"github.com/noriah/teletrace/dsp"
	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/telemetry"
	"github.com/noriah/teletrace/util"
)

// LowFrequency is the period, in seconds, of the refresh that reads the
// playback rate and saves the config.
const LowFrequency = 0.1

// Options configure an Overlay.
type Options struct {
	Config config.Config
	Store  config.Store // where dirty configs are saved, may be nil
	Source telemetry.Source

	// Allocator makes the off-screen targets of the scroll compositor. When
	// nil, or when it fails, traces are drawn as geometry.
	Allocator graphic.Allocator

	Logger *slog.Logger
}

// Overlay is the whole overlay state. It is driven by a host calling Update
// on every tick and Render on every frame, from one goroutine.
type Overlay struct {
	cfg   config.Config
	store config.Store
	src   telemetry.Source
	alloc graphic.Allocator
	log   *slog.Logger

	cond       *dsp.Set
	renderer   graphic.TraceRenderer
	compositor bool

	chart graphic.ChartConfig
	bars  *graphic.BarGauges
	wheel *graphic.Wheel

	sample  *util.Throttle
	lowFreq *util.Throttle

	rate    float64
	frame   telemetry.Frame
	values  []float64 // conditioned, indexed by channel
	samples []graphic.Sample
	ticks   int
}

// New builds an overlay and lays it out for opts.Config.
func New(opts Options) (*Overlay, error) {
	if opts.Source == nil {
		return nil, errors.New("no telemetry source")
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	o := &Overlay{
		store:   opts.Store,
		src:     opts.Source,
		alloc:   opts.Allocator,
		log:     log,
		bars:    graphic.NewBarGauges(graphic.BarConfig{}),
		wheel:   graphic.NewWheel(graphic.WheelConfig{}),
		sample:  util.NewThrottle(0),
		lowFreq: util.NewThrottle(LowFrequency),
		rate:    opts.Source.PlaybackRate(),
		values:  make([]float64, len(telemetry.Channels())),
	}

	o.Apply(opts.Config)

	// wheel straight until the first sample
	o.values[telemetry.Steering] = 0.5

	return o, nil
}

// Apply switches to cfg and lays out every component again. Trace history is
// dropped, autoscale bounds are kept.
func (o *Overlay) Apply(cfg config.Config) {
	cfg.Sanitize()
	o.cfg = cfg

	settings := dsp.Settings{
		Denoise:     cfg.DenoiseG,
		Sensitivity: float64(cfg.SteeringSensitivity),
	}

	if o.cond == nil {
		o.cond = dsp.NewSet(settings)
	} else {
		o.cond.Apply(settings)
	}

	o.sample.SetTimeout(1 / float64(cfg.SampleRate))

	origin := cfg.Origin()

	o.chart = graphic.ChartConfig{
		Bounds: graphic.Rect{
			X: origin.X,
			Y: origin.Y,
			W: float64(cfg.AppWidth),
			H: float64(cfg.AppHeight),
		},
		TraceWidth: float64(cfg.TraceSize),
		SampleRate: float64(cfg.SampleRate),
		TimeWindow: cfg.TimeWindow,
	}

	o.selectRenderer()

	o.bars.SetConfig(graphic.BarConfig{
		Origin:      origin,
		ChartWidth:  float64(cfg.AppWidth),
		ChartHeight: float64(cfg.AppHeight),
		BarWidth:    float64(cfg.BarWidth),
		Opacity:     cfg.Opacity,
		ShowValue:   cfg.ShowBarValue,
		EndStop:     cfg.PedalsEndStop,
		BaseStop:    cfg.PedalsBaseStop,
		FlashOnClip: cfg.FFBFlashOnClip,
	})

	o.wheel.SetConfig(o.wheelConfig())
}

func (o *Overlay) selectRenderer() {
	if sc, ok := o.renderer.(*graphic.ScrollCompositor); ok {
		sc.Dispose()
	}

	alloc := o.alloc
	if !o.cfg.PreferCompositor {
		alloc = nil
	}

	sel := graphic.SelectRenderer(alloc, o.chart, o.log)
	o.renderer = sel.Renderer
	o.compositor = sel.Compositor

	for _, ch := range telemetry.Channels() {
		if o.cfg.Trace(ch) {
			o.renderer.AddChannel(ch, o.cfg.Color(ch))
		}
	}

	o.log.Debug("trace renderer ready", "compositor", o.compositor)
}

func (o *Overlay) wheelConfig() graphic.WheelConfig {
	cfg := o.cfg
	if !cfg.ShowWheel {
		return graphic.WheelConfig{}
	}

	origin := cfg.Origin()

	x := origin.X + float64(cfg.AppWidth)
	if n := cfg.Bars(); n > 0 {
		x += float64(n)*(float64(cfg.BarWidth)+graphic.BarGap) + 2
	}

	size := float64(cfg.AppHeight)

	return graphic.WheelConfig{
		Center:    graphic.Point{X: x + float64(cfg.Padding) + size/2, Y: origin.Y + size/2},
		Radius:    size/2 - graphic.BasePadding,
		Depth:     float64(cfg.WheelDepth),
		Angle:     float64(cfg.WheelAngle),
		Opacity:   cfg.Opacity,
		ShowGear:  cfg.WheelShowGear,
		ShowSpeed: cfg.WheelShowSpeed,
		Metric:    cfg.Metric,
	}
}

// Update advances the overlay clock by dt seconds. Once a sample period has
// passed, and time is not paused, a frame is read, conditioned and fed to
// the traces.
func (o *Overlay) Update(dt float64) {
	o.sample.Advance(dt)
	o.lowFreq.Advance(dt)

	if o.sample.Ready() && o.rate != 0 {
		o.sample.Fire()
		o.tick()
	}

	if o.lowFreq.Ready() {
		o.lowFreq.Fire()
		o.refresh()
	}
}

func (o *Overlay) tick() {
	frame, err := o.src.Poll()
	if err != nil {
		o.log.Warn("poll failed, tick skipped", "err", err)
		return
	}

	o.frame = frame
	o.cond.Condition(frame, o.values)
	o.ticks++

	o.samples = o.samples[:0]
	for _, ch := range telemetry.Channels() {
		if o.cfg.Trace(ch) {
			o.samples = append(o.samples, graphic.Sample{Channel: ch, Value: o.values[ch]})
		}
	}

	o.renderer.Update(o.rate, o.samples)
}

func (o *Overlay) refresh() {
	o.rate = o.src.PlaybackRate()

	if o.store == nil {
		return
	}

	wrote, err := config.Flush(o.store, &o.cfg)
	if err != nil {
		o.log.Warn("failed to save config", "err", err)
		return
	}

	if wrote {
		o.log.Info("config saved")
	}
}

// Control applies a playback command to the source.
func (o *Overlay) Control(cmd telemetry.Command) {
	rate, ok := telemetry.Control(o.src, cmd)
	if !ok {
		return
	}

	o.rate = rate
	o.log.Debug("playback", "cmd", cmd, "rate", rate)
}

// Render draws a frame. A failed draw is logged and the rest of the frame is
// skipped, the overlay state is not affected.
func (o *Overlay) Render(c graphic.Canvas, dt float64) error {
	if err := o.render(c); err != nil {
		o.log.Warn("frame skipped", "err", err)
		return err
	}

	return nil
}

func (o *Overlay) render(c graphic.Canvas) error {
	cfg := &o.cfg
	b := o.chart.Bounds

	if err := graphic.DrawBackground(c, b, cfg.Opacity); err != nil {
		return errors.Wrap(err, "background")
	}

	if cfg.ShowTelemetryLabel {
		if err := o.drawLabel(c); err != nil {
			return errors.Wrap(err, "label")
		}
	}

	if cfg.ShowGraphLines {
		if err := graphic.DrawGrid(c, b, cfg.Opacity); err != nil {
			return errors.Wrap(err, "grid")
		}
	}

	if err := o.renderer.Render(c); err != nil {
		return errors.Wrap(err, "traces")
	}

	if bars := o.barValues(); len(bars) > 0 {
		if err := o.bars.Draw(c, bars); err != nil {
			return errors.Wrap(err, "bars")
		}
	}

	if cfg.ShowWheel {
		if err := o.wheel.Draw(c, o.wheelState()); err != nil {
			return errors.Wrap(err, "wheel")
		}
	}

	return nil
}

// telemetryLabel is written top to bottom in the label strip.
const telemetryLabel = "TELEMETRY"

func (o *Overlay) drawLabel(c graphic.Canvas) error {
	cfg := &o.cfg
	w := float64(cfg.LabelWidth())
	_, h := cfg.WindowSize()

	strip := graphic.Rect{X: 0, Y: 0, W: w, H: float64(h)}
	if err := graphic.FillRect(c, strip, graphic.Gray(0.1).WithAlpha(cfg.Opacity)); err != nil {
		return err
	}

	step := float64(h) / float64(len(telemetryLabel))
	size := step * 0.9
	if size > w {
		size = w
	}

	for i, r := range telemetryLabel {
		p := graphic.Point{X: w/2 - size/4, Y: float64(i) * step}
		if err := c.Text(string(r), p, size, graphic.Gray(1)); err != nil {
			return err
		}
	}

	return nil
}

func (o *Overlay) barValues() []graphic.Bar {
	var bars []graphic.Bar
	for _, ch := range config.BarChannels {
		if o.cfg.Bar(ch) {
			bars = append(bars, graphic.Bar{
				Channel: ch,
				Value:   o.values[ch],
				Color:   o.cfg.Color(ch),
			})
		}
	}

	return bars
}

func (o *Overlay) wheelState() graphic.WheelState {
	speed := o.frame.SpeedMPH
	if o.cfg.Metric {
		speed = o.frame.SpeedKMH
	}

	return graphic.WheelState{
		Degrees: o.cond.Steering().Degrees(o.values[telemetry.Steering]),
		Gear:    telemetry.GearString(o.frame.Gear),
		Speed:   speed,
		Color:   o.cfg.Color(telemetry.Steering),
	}
}

// Size returns the window size the overlay needs.
func (o *Overlay) Size() (int, int) {
	return o.cfg.WindowSize()
}

// Config returns the active config.
func (o *Overlay) Config() config.Config {
	return o.cfg
}

// Compositor reports whether traces are drawn by the scroll compositor.
func (o *Overlay) Compositor() bool {
	return o.compositor
}

// Renderer returns the active trace renderer.
func (o *Overlay) Renderer() graphic.TraceRenderer {
	return o.renderer
}

// Value returns the latest conditioned value of ch.
func (o *Overlay) Value(ch telemetry.Channel) float64 {
	return o.values[ch]
}

// Ticks returns the number of samples taken.
func (o *Overlay) Ticks() int {
	return o.ticks
}

// PlaybackRate returns the last playback rate seen.
func (o *Overlay) PlaybackRate() float64 {
	return o.rate
}

// Close saves a dirty config and closes the source.
func (o *Overlay) Close() error {
	if sc, ok := o.renderer.(*graphic.ScrollCompositor); ok {
		sc.Dispose()
	}

	var saveErr error
	if o.store != nil {
		if _, err := config.Flush(o.store, &o.cfg); err != nil {
			saveErr = errors.Wrap(err, "failed to save config")
		}
	}

	if err := o.src.Close(); err != nil {
		return errors.Wrap(err, "failed to close source")
	}

	return saveErr
}
