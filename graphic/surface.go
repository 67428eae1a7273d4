// Package graphic draws the overlay: the scrolling traces, the pedal bars and
// the wheel, on top of a host provided drawing surface.
package graphic

import (
	"math"

	"github.com/pkg/errors"
)

// ErrUnavailable is returned when an optional render backend cannot get the
// resources it needs.
var ErrUnavailable = errors.New("render backend unavailable")

// Point is a position in pixels. y grows downward.
type Point struct {
	X, Y float64
}

// Quad is a filled quadrilateral. Points are in counter clockwise order
// (front facing), so back face culling keeps it.
type Quad [4]Point

// ShiftX moves every vertex by dx.
func (q *Quad) ShiftX(dx float64) {
	for i := range q {
		q[i].X += dx
	}
}

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Quad returns r as a front facing quad.
func (r Rect) Quad() Quad {
	return Quad{
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
		{r.X + r.W, r.Y},
		{r.X, r.Y},
	}
}

// Color is a straight (not premultiplied) RGBA color, each channel in
// [0, 1].
type Color struct {
	R, G, B, A float64
}

// Gray returns an opaque gray.
func Gray(v float64) Color {
	return Color{v, v, v, 1}
}

// WithAlpha replaces the alpha of c.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	ca := unit(c.A)
	a = uint32(ca*0xffff + 0.5)
	r = uint32(unit(c.R)*ca*0xffff + 0.5)
	g = uint32(unit(c.G)*ca*0xffff + 0.5)
	b = uint32(unit(c.B)*ca*0xffff + 0.5)
	return
}

func unit(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// Blend is how drawn pixels combine with what is already on a target.
type Blend int

// Blend modes
const (
	BlendAlpha    Blend = iota // source over
	BlendAdditive              // source is added, overlaps get brighter
)

// Canvas is an immediate mode drawing surface. Any call may fail for the
// current frame; callers skip the rest of the frame and try again on the
// next one.
type Canvas interface {
	// FillQuad fills q with c.
	FillQuad(q Quad, c Color) error

	// Line draws a segment of the given width.
	Line(a, b Point, width float64, c Color) error

	// Text draws s with its top left corner at p. size is the line height in
	// pixels.
	Text(s string, p Point, size float64, c Color) error

	// DrawTarget draws the contents of t as a textured quad covering dst.
	DrawTarget(t Target, dst Rect, alpha float64) error
}

// Target is an off-screen pixel buffer that can be drawn into and then
// drawn onto a Canvas.
type Target interface {
	Canvas

	// Size returns the size in pixels.
	Size() (int, int)

	// Clear sets every pixel to transparent.
	Clear()

	// SetBlend sets the blend mode of following draws into the target.
	SetBlend(Blend)

	// Blit copies src into the target, offset by dx, dy pixels, replacing
	// what is there. Pixels not covered by src are left alone. src and the
	// target must not be the same buffer.
	Blit(src Target, dx, dy int) error

	// GenerateMips rebuilds the down scaled levels used when the target is
	// presented smaller than its size.
	GenerateMips()

	// Dispose releases the buffer.
	Dispose()
}

// Allocator creates off-screen targets.
type Allocator interface {
	NewTarget(width, height int) (Target, error)
}

// FillRect fills r.
func FillRect(c Canvas, r Rect, col Color) error {
	return c.FillQuad(r.Quad(), col)
}
