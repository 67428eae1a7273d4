package graphic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// wheelSegments is the number of quads the rim is built from.
const wheelSegments = 48

// WheelConfig lays out the wheel gauge.
type WheelConfig struct {
	Center  Point
	Radius  float64
	Depth   float64 // rim thickness in pixels
	Angle   float64 // width of the top marker in degrees
	Opacity float64

	ShowGear  bool
	ShowSpeed bool
	Metric    bool
}

// WheelState is what the wheel shows in one frame.
type WheelState struct {
	Degrees float64 // steering angle, positive turns clockwise on screen
	Gear    string
	Speed   float64 // in the unit chosen by WheelConfig.Metric
	Color   Color
}

// Wheel draws the steering wheel gauge.
type Wheel struct {
	cfg WheelConfig
}

// NewWheel returns a wheel for cfg.
func NewWheel(cfg WheelConfig) *Wheel {
	return &Wheel{cfg: cfg}
}

// SetConfig replaces the layout.
func (w *Wheel) SetConfig(cfg WheelConfig) {
	w.cfg = cfg
}

// Config returns the layout.
func (w *Wheel) Config() WheelConfig {
	return w.cfg
}

func vec(p Point) r2.Vec   { return r2.Vec{X: p.X, Y: p.Y} }
func point(v r2.Vec) Point { return Point{v.X, v.Y} }

// rimQuad is the rim piece between angles a0 and a1 (radians, 0 is up,
// growing clockwise on screen).
func (w *Wheel) rimQuad(a0, a1 float64) Quad {
	c := w.cfg.Center
	outer := w.cfg.Radius
	inner := math.Max(w.cfg.Radius-w.cfg.Depth, 0)

	at := func(a, r float64) Point {
		return Point{c.X + r*math.Sin(a), c.Y - r*math.Cos(a)}
	}

	return Quad{at(a0, inner), at(a1, inner), at(a1, outer), at(a0, outer)}
}

// Spoke returns the spoke quad turned by deg degrees around the wheel center.
func (w *Wheel) Spoke(deg float64) Quad {
	c := w.cfg.Center
	half := math.Max(w.cfg.Depth/4, 1)
	top := c.Y - math.Max(w.cfg.Radius-w.cfg.Depth, 0)

	q := Rect{c.X - half, top, 2 * half, c.Y - top}.Quad()

	alpha := deg * math.Pi / 180
	for i := range q {
		q[i] = point(r2.Rotate(vec(q[i]), alpha, vec(c)))
	}

	return q
}

// Draw draws the rim, the marker and the spoke, then the labels.
func (w *Wheel) Draw(c Canvas, s WheelState) error {
	cfg := w.cfg
	if cfg.Radius <= 0 {
		return nil
	}

	step := 2 * math.Pi / wheelSegments
	rim := Gray(trackShade).WithAlpha(cfg.Opacity)

	for i := 0; i < wheelSegments; i++ {
		a := float64(i) * step
		if err := c.FillQuad(w.rimQuad(a, a+step), rim); err != nil {
			return err
		}
	}

	col := s.Color.WithAlpha(1)
	rad := s.Degrees * math.Pi / 180
	half := cfg.Angle * math.Pi / 360

	// the marker is split so it follows the curve of the rim
	n := int(math.Max(math.Ceil(2*half/step), 1))
	for i := 0; i < n; i++ {
		a0 := rad - half + float64(i)*2*half/float64(n)
		a1 := a0 + 2*half/float64(n)
		if err := c.FillQuad(w.rimQuad(a0, a1), col); err != nil {
			return err
		}
	}

	if err := c.FillQuad(w.Spoke(s.Degrees), col.WithAlpha(0.6)); err != nil {
		return err
	}

	size := math.Max(cfg.Radius/3, 8)
	white := Gray(1)

	if cfg.ShowGear && s.Gear != "" {
		p := Point{cfg.Center.X - size/4, cfg.Center.Y - size}
		if err := c.Text(s.Gear, p, size, white); err != nil {
			return err
		}
	}

	if cfg.ShowSpeed {
		unit := "mph"
		if cfg.Metric {
			unit = "km/h"
		}

		p := Point{cfg.Center.X - size, cfg.Center.Y + size/4}
		if err := c.Text(fmt.Sprintf("%.0f %s", s.Speed, unit), p, size/2, white); err != nil {
			return err
		}
	}

	return nil
}
