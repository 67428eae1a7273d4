// Package raster is a software drawing surface on image.RGBA. It backs
// headless runs, the terminal host and PNG snapshots.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/noriah/teletrace/graphic"
)

var (
	// ErrAliased is returned when an image is blitted onto itself.
	ErrAliased = errors.New("blit source is the destination")

	// ErrDisposed is returned when drawing into a disposed image.
	ErrDisposed = errors.New("image is disposed")
)

// Image is a graphic.Target drawing into memory.
type Image struct {
	img   *image.RGBA
	mip   *image.RGBA
	blend graphic.Blend

	z    *vector.Rasterizer
	mask *image.Alpha

	disposed bool
}

var _ graphic.Target = (*Image)(nil)

// New returns a transparent image of w by h pixels.
func New(w, h int) *Image {
	r := image.Rect(0, 0, w, h)

	return &Image{
		img:  image.NewRGBA(r),
		z:    vector.NewRasterizer(w, h),
		mask: image.NewAlpha(r),
	}
}

// RGBA returns the backing image.
func (m *Image) RGBA() *image.RGBA {
	return m.img
}

// At returns the pixel at x, y.
func (m *Image) At(x, y int) color.RGBA {
	return m.img.RGBAAt(x, y)
}

// Size returns the size in pixels.
func (m *Image) Size() (int, int) {
	b := m.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear sets every pixel to transparent.
func (m *Image) Clear() {
	clear(m.img.Pix)
}

// Fill sets every pixel to c.
func (m *Image) Fill(c graphic.Color) {
	draw.Draw(m.img, m.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// SetBlend sets how following draws are combined.
func (m *Image) SetBlend(b graphic.Blend) {
	m.blend = b
}

// FillQuad fills q with anti-aliased edges. Only the pixels under the
// bounding box of q are visited.
func (m *Image) FillQuad(q graphic.Quad, c graphic.Color) error {
	if m.disposed {
		return ErrDisposed
	}

	r, ok := m.quadBounds(q)
	if !ok {
		return nil
	}

	// the rasterizer origin lands on r.Min
	ox, oy := float64(r.Min.X), float64(r.Min.Y)

	m.z.Reset(r.Dx(), r.Dy())
	m.z.MoveTo(float32(q[0].X-ox), float32(q[0].Y-oy))
	for _, p := range q[1:] {
		m.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	m.z.ClosePath()

	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := m.mask.PixOffset(r.Min.X, y)
		clear(m.mask.Pix[i : i+r.Dx()])
	}

	m.z.Draw(m.mask, r, image.Opaque, image.Point{})

	m.composite(r, c)

	return nil
}

// quadBounds returns the pixels q touches, clipped to the image.
func (m *Image) quadBounds(q graphic.Quad) (image.Rectangle, bool) {
	b := m.img.Bounds()

	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)

	for _, p := range q {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return image.Rectangle{}, false
		}

		x0, x1 = math.Min(x0, p.X), math.Max(x1, p.X)
		y0, y1 = math.Min(y0, p.Y), math.Max(y1, p.Y)
	}

	clamp := func(v float64, lo, hi int) int {
		return int(math.Min(math.Max(v, float64(lo)), float64(hi)))
	}

	r := image.Rect(
		clamp(math.Floor(x0), b.Min.X, b.Max.X),
		clamp(math.Floor(y0), b.Min.Y, b.Max.Y),
		clamp(math.Ceil(x1), b.Min.X, b.Max.X),
		clamp(math.Ceil(y1), b.Min.Y, b.Max.Y),
	)

	return r, !r.Empty()
}

// composite draws c through the mask over r.
func (m *Image) composite(r image.Rectangle, c graphic.Color) {
	if m.blend != graphic.BlendAdditive {
		draw.DrawMask(m.img, r, image.NewUniform(c), image.Point{},
			m.mask, r.Min, draw.Over)
		return
	}

	sr, sg, sb, sa := c.RGBA()
	src := [4]uint32{sr >> 8, sg >> 8, sb >> 8, sa >> 8}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		mi := m.mask.PixOffset(r.Min.X, y)
		pi := m.img.PixOffset(r.Min.X, y)

		for x := 0; x < r.Dx(); x++ {
			cov := m.mask.Pix[mi+x]
			if cov == 0 {
				continue
			}

			px := m.img.Pix[pi+x*4 : pi+x*4+4]
			for k := range px {
				v := uint32(px[k]) + src[k]*uint32(cov)/0xff
				if v > 0xff {
					v = 0xff
				}
				px[k] = uint8(v)
			}
		}
	}
}

// Line draws a segment as a quad of the given width.
func (m *Image) Line(a, b graphic.Point, width float64, c graphic.Color) error {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}

	// normal, scaled to half the width
	nx, ny := -dy/l*width/2, dx/l*width/2

	return m.FillQuad(graphic.Quad{
		{X: a.X - nx, Y: a.Y - ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: a.X + nx, Y: a.Y + ny},
	}, c)
}

// Text draws s in the basic bitmap face, scaled to size.
func (m *Image) Text(s string, p graphic.Point, size float64, c graphic.Color) error {
	if m.disposed {
		return ErrDisposed
	}

	face := basicfont.Face7x13
	lineHeight := face.Height

	w := font.MeasureString(face, s).Ceil()
	if w == 0 {
		return nil
	}

	tmp := image.NewRGBA(image.Rect(0, 0, w, lineHeight))
	d := font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	scale := size / float64(lineHeight)
	dst := image.Rect(
		int(math.Round(p.X)),
		int(math.Round(p.Y)),
		int(math.Round(p.X+float64(w)*scale)),
		int(math.Round(p.Y+size)),
	)

	if dst.Dx() == w && dst.Dy() == lineHeight {
		draw.Draw(m.img, dst, tmp, image.Point{}, draw.Over)
		return nil
	}

	draw.ApproxBiLinear.Scale(m.img, dst, tmp, tmp.Bounds(), draw.Over, nil)

	return nil
}

// DrawTarget draws t covering dst. t must be an *Image.
func (m *Image) DrawTarget(t graphic.Target, dst graphic.Rect, alpha float64) error {
	if m.disposed {
		return ErrDisposed
	}

	src, ok := t.(*Image)
	if !ok {
		return errors.Errorf("cannot draw %T onto a raster image", t)
	}

	if src == m {
		return ErrAliased
	}

	r := image.Rect(
		int(math.Round(dst.X)),
		int(math.Round(dst.Y)),
		int(math.Round(dst.X+dst.W)),
		int(math.Round(dst.Y+dst.H)),
	)

	var mask image.Image
	if alpha < 1 {
		mask = image.NewUniform(color.Alpha{uint8(math.Max(alpha, 0)*0xff + 0.5)})
	}

	sw, sh := src.Size()
	if r.Dx() == sw && r.Dy() == sh {
		draw.DrawMask(m.img, r, src.img, image.Point{}, mask, image.Point{}, draw.Over)
		return nil
	}

	img := src.img
	if src.mip != nil && r.Dx()*2 <= sw && r.Dy()*2 <= sh {
		img = src.mip
	}

	opts := &draw.Options{SrcMask: mask}
	draw.ApproxBiLinear.Scale(m.img, r, img, img.Bounds(), draw.Over, opts)

	return nil
}

// Blit copies src into the image offset by dx, dy, replacing the covered
// pixels.
func (m *Image) Blit(src graphic.Target, dx, dy int) error {
	if m.disposed {
		return ErrDisposed
	}

	s, ok := src.(*Image)
	if !ok {
		return errors.Errorf("cannot blit %T onto a raster image", src)
	}

	if s == m {
		return ErrAliased
	}

	off := image.Pt(dx, dy)
	r := s.img.Bounds().Add(off).Intersect(m.img.Bounds())
	if r.Empty() {
		return nil
	}

	draw.Draw(m.img, r, s.img, r.Min.Sub(off), draw.Src)

	return nil
}

// GenerateMips rebuilds the half size level used when presenting at half
// size or less.
func (m *Image) GenerateMips() {
	w, h := m.Size()
	if w < 2 || h < 2 {
		m.mip = nil
		return
	}

	r := image.Rect(0, 0, w/2, h/2)
	if m.mip == nil || m.mip.Bounds() != r {
		m.mip = image.NewRGBA(r)
	} else {
		clear(m.mip.Pix)
	}

	draw.BiLinear.Scale(m.mip, r, m.img, m.img.Bounds(), draw.Src, nil)
}

// Mip returns the half size level, or nil before GenerateMips.
func (m *Image) Mip() *image.RGBA {
	return m.mip
}

// Dispose drops the pixels. Later draws fail.
func (m *Image) Dispose() {
	m.disposed = true
	m.mip = nil
}

// WritePNG encodes the image.
func (m *Image) WritePNG(w io.Writer) error {
	return errors.Wrap(png.Encode(w, m.img), "failed to encode png")
}

// Allocator creates raster images. A positive MaxPixels limits the size of
// a single target.
type Allocator struct {
	MaxPixels int
}

// NewTarget returns a transparent image.
func (a Allocator) NewTarget(w, h int) (graphic.Target, error) {
	if w < 1 || h < 1 {
		return nil, errors.Errorf("invalid target size %dx%d", w, h)
	}

	if a.MaxPixels > 0 && w*h > a.MaxPixels {
		return nil, errors.Errorf("target %dx%d exceeds %d pixels", w, h, a.MaxPixels)
	}

	return New(w, h), nil
}
