// Package gpu hosts the overlay in an ebiten window. Off-screen targets are
// ebiten images, so the scroll compositor runs on the GPU.
package gpu

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pkg/errors"

	"github.com/noriah/teletrace/graphic"
)

// debugLineHeight is the height of the ebitenutil debug font.
const debugLineHeight = 16

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// ErrAliased is returned when an image is blitted onto itself.
var ErrAliased = errors.New("blit source is the destination")

// Image is a graphic.Target on an ebiten image.
type Image struct {
	img   *ebiten.Image
	blend ebiten.Blend
	owned bool

	vs []ebiten.Vertex
	is []uint16
}

var _ graphic.Target = (*Image)(nil)

// Wrap returns a canvas drawing into img, typically the screen.
func Wrap(img *ebiten.Image) *Image {
	return &Image{img: img, blend: ebiten.BlendSourceOver}
}

// Ebiten returns the wrapped image.
func (m *Image) Ebiten() *ebiten.Image {
	return m.img
}

// Size returns the size in pixels.
func (m *Image) Size() (int, int) {
	b := m.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear sets every pixel to transparent.
func (m *Image) Clear() {
	m.img.Clear()
}

// SetBlend sets how following draws are combined.
func (m *Image) SetBlend(b graphic.Blend) {
	switch b {
	case graphic.BlendAdditive:
		m.blend = ebiten.BlendLighter
	default:
		m.blend = ebiten.BlendSourceOver
	}
}

// FillQuad fills q as two triangles.
func (m *Image) FillQuad(q graphic.Quad, c graphic.Color) error {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A)

	m.vs = m.vs[:0]
	for _, p := range q {
		m.vs = append(m.vs, ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: r,
			ColorG: g,
			ColorB: b,
			ColorA: a,
		})
	}
	m.is = append(m.is[:0], 0, 1, 2, 0, 2, 3)

	op := &ebiten.DrawTrianglesOptions{
		Blend:     m.blend,
		AntiAlias: true,
	}
	m.img.DrawTriangles(m.vs, m.is, whiteSubImage, op)

	return nil
}

// Line draws an anti-aliased segment.
func (m *Image) Line(a, b graphic.Point, width float64, c graphic.Color) error {
	vector.StrokeLine(m.img,
		float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
		float32(width), c, true)
	return nil
}

// Text draws s with the debug font scaled to size.
func (m *Image) Text(s string, p graphic.Point, size float64, c graphic.Color) error {
	if s == "" {
		return nil
	}

	// the debug font is 6 pixels wide per glyph
	tmp := ebiten.NewImage(len(s)*6+2, debugLineHeight)
	defer tmp.Deallocate()

	ebitenutil.DebugPrintAt(tmp, s, 0, 0)

	op := &ebiten.DrawImageOptions{Blend: m.blend}
	op.GeoM.Scale(size/debugLineHeight, size/debugLineHeight)
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleWithColor(c)
	op.Filter = ebiten.FilterLinear

	m.img.DrawImage(tmp, op)

	return nil
}

func asImage(t graphic.Target) (*Image, error) {
	src, ok := t.(*Image)
	if !ok {
		return nil, errors.Errorf("cannot draw %T onto an ebiten image", t)
	}

	return src, nil
}

// DrawTarget draws t stretched over dst.
func (m *Image) DrawTarget(t graphic.Target, dst graphic.Rect, alpha float64) error {
	src, err := asImage(t)
	if err != nil {
		return err
	}

	if src == m {
		return ErrAliased
	}

	w, h := src.Size()

	op := &ebiten.DrawImageOptions{Blend: m.blend}
	op.GeoM.Scale(dst.W/float64(w), dst.H/float64(h))
	op.GeoM.Translate(dst.X, dst.Y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear

	m.img.DrawImage(src.img, op)

	return nil
}

// Blit copies src offset by dx, dy, replacing the covered pixels.
func (m *Image) Blit(t graphic.Target, dx, dy int) error {
	src, err := asImage(t)
	if err != nil {
		return err
	}

	if src == m {
		return ErrAliased
	}

	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendCopy}
	op.GeoM.Translate(float64(dx), float64(dy))

	m.img.DrawImage(src.img, op)

	return nil
}

// GenerateMips is a no-op: ebiten builds mipmaps itself when an image is
// drawn down scaled with linear filtering.
func (m *Image) GenerateMips() {}

// Dispose frees the GPU memory of images made by an Allocator.
func (m *Image) Dispose() {
	if m.owned {
		m.img.Deallocate()
	}
}

// Allocator creates off-screen ebiten images no larger than MaxSize on
// either side, or any size when MaxSize is zero.
type Allocator struct {
	MaxSize int
}

// NewTarget returns a transparent off-screen image.
func (a Allocator) NewTarget(w, h int) (graphic.Target, error) {
	if w < 1 || h < 1 {
		return nil, errors.Errorf("invalid target size %dx%d", w, h)
	}

	if a.MaxSize > 0 && (w > a.MaxSize || h > a.MaxSize) {
		return nil, errors.Errorf("target %dx%d exceeds %d", w, h, a.MaxSize)
	}

	img := ebiten.NewImage(w, h)

	return &Image{img: img, blend: ebiten.BlendSourceOver, owned: true}, nil
}
