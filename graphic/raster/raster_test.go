package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noriah/teletrace/graphic"
)

var (
	red   = graphic.Color{R: 1, A: 1}
	green = graphic.Color{G: 1, A: 1}
)

func TestFillRectIsPixelExact(t *testing.T) {
	m := New(6, 6)
	require.NoError(t, graphic.FillRect(m, graphic.Rect{X: 1, Y: 2, W: 3, H: 2}, red))

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			inside := x >= 1 && x < 4 && y >= 2 && y < 4
			if inside {
				assert.Equal(t, color.RGBA{255, 0, 0, 255}, m.At(x, y), "(%d, %d)", x, y)
			} else {
				assert.Equal(t, color.RGBA{}, m.At(x, y), "(%d, %d)", x, y)
			}
		}
	}
}

func TestAdditiveBlend(t *testing.T) {
	m := New(2, 2)
	m.SetBlend(graphic.BlendAdditive)

	full := graphic.Rect{W: 2, H: 2}
	require.NoError(t, graphic.FillRect(m, full, red))
	require.NoError(t, graphic.FillRect(m, full, green))
	require.NoError(t, graphic.FillRect(m, full, red))

	assert.Equal(t, color.RGBA{255, 255, 0, 255}, m.At(0, 0))
}

func TestAlphaBlendOverwritesOpaque(t *testing.T) {
	m := New(2, 2)

	full := graphic.Rect{W: 2, H: 2}
	require.NoError(t, graphic.FillRect(m, full, red))
	require.NoError(t, graphic.FillRect(m, full, green))

	assert.Equal(t, color.RGBA{0, 255, 0, 255}, m.At(1, 1))
}

func TestFillQuadLeavesOutsideAlone(t *testing.T) {
	for _, blend := range []graphic.Blend{graphic.BlendAlpha, graphic.BlendAdditive} {
		m := New(16, 16)
		m.Fill(graphic.Color{B: 1, A: 1})
		m.SetBlend(blend)

		require.NoError(t, graphic.FillRect(m, graphic.Rect{X: 5, Y: 5, W: 2, H: 2}, red))

		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				inside := x >= 5 && x < 7 && y >= 5 && y < 7
				if !inside {
					assert.Equal(t, color.RGBA{0, 0, 255, 255}, m.At(x, y), "blend %d (%d, %d)", blend, x, y)
				}
			}
		}

		assert.Equal(t, uint8(255), m.At(5, 5).R, "blend %d", blend)
		assert.Equal(t, uint8(255), m.At(6, 6).R, "blend %d", blend)
	}
}

func TestFillQuadIgnoresEarlierCoverage(t *testing.T) {
	m := New(8, 8)
	m.SetBlend(graphic.BlendAdditive)

	half := graphic.Color{R: 0.5, A: 1}
	require.NoError(t, graphic.FillRect(m, graphic.Rect{W: 8, H: 8}, half))

	// the lower right triangle shares the bounding box of the square
	tri := graphic.Quad{{X: 0, Y: 8}, {X: 8, Y: 8}, {X: 8, Y: 0}, {X: 8, Y: 0}}
	require.NoError(t, m.FillQuad(tri, half))

	assert.Equal(t, uint8(128), m.At(0, 0).R)
	assert.Equal(t, uint8(255), m.At(7, 7).R)
}

func TestFillQuadClipped(t *testing.T) {
	m := New(4, 4)

	require.NoError(t, graphic.FillRect(m, graphic.Rect{X: -3, Y: -3, W: 5, H: 5}, red))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, m.At(1, 1))
	assert.Equal(t, color.RGBA{}, m.At(2, 2))
	assert.Equal(t, color.RGBA{}, m.At(1, 2))

	before := append([]byte(nil), m.RGBA().Pix...)

	require.NoError(t, graphic.FillRect(m, graphic.Rect{X: 10, Y: 10, W: 2, H: 2}, green))
	require.NoError(t, graphic.FillRect(m, graphic.Rect{X: math.NaN(), W: 2, H: 2}, green))

	assert.Equal(t, before, m.RGBA().Pix)
}

func TestBlitOffset(t *testing.T) {
	src := New(3, 1)
	require.NoError(t, graphic.FillRect(src, graphic.Rect{X: 2, W: 1, H: 1}, red))

	dst := New(3, 1)
	require.NoError(t, graphic.FillRect(dst, graphic.Rect{W: 3, H: 1}, green))

	require.NoError(t, dst.Blit(src, -1, 0))

	assert.Equal(t, color.RGBA{}, dst.At(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.At(1, 0))
	// not covered by the shifted source
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, dst.At(2, 0))
}

func TestBlitOntoItself(t *testing.T) {
	m := New(2, 2)
	assert.True(t, errors.Is(m.Blit(m, -1, 0), ErrAliased))
	assert.True(t, errors.Is(m.DrawTarget(m, graphic.Rect{W: 2, H: 2}, 1), ErrAliased))
}

func TestDrawTarget(t *testing.T) {
	src := New(2, 2)
	require.NoError(t, graphic.FillRect(src, graphic.Rect{W: 2, H: 2}, red))

	dst := New(4, 4)
	require.NoError(t, dst.DrawTarget(src, graphic.Rect{X: 2, Y: 2, W: 2, H: 2}, 1))

	assert.Equal(t, color.RGBA{}, dst.At(1, 1))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.At(3, 3))

	big := New(8, 8)
	require.NoError(t, big.DrawTarget(src, graphic.Rect{W: 8, H: 8}, 1))
	assert.GreaterOrEqual(t, big.At(4, 4).R, uint8(250))
}

func TestGenerateMips(t *testing.T) {
	m := New(4, 4)
	assert.Nil(t, m.Mip())

	require.NoError(t, graphic.FillRect(m, graphic.Rect{W: 4, H: 4}, red))
	m.GenerateMips()

	require.NotNil(t, m.Mip())
	assert.Equal(t, 2, m.Mip().Bounds().Dx())
	assert.GreaterOrEqual(t, m.Mip().RGBAAt(1, 1).R, uint8(250))
}

func TestClear(t *testing.T) {
	m := New(2, 2)
	m.Fill(red)
	m.Clear()
	assert.Equal(t, color.RGBA{}, m.At(0, 0))
}

func TestTextDraws(t *testing.T) {
	m := New(40, 20)
	require.NoError(t, m.Text("88", graphic.Point{X: 1, Y: 1}, 13, graphic.Gray(1)))

	var lit int
	for _, v := range m.RGBA().Pix {
		if v != 0 {
			lit++
		}
	}
	assert.NotZero(t, lit)
}

func TestDisposed(t *testing.T) {
	m := New(2, 2)
	m.Dispose()

	err := graphic.FillRect(m, graphic.Rect{W: 1, H: 1}, red)
	assert.True(t, errors.Is(err, ErrDisposed))
}

func TestAllocatorLimit(t *testing.T) {
	a := Allocator{MaxPixels: 100}

	_, err := a.NewTarget(10, 10)
	assert.NoError(t, err)

	_, err = a.NewTarget(11, 10)
	assert.Error(t, err)

	_, err = a.NewTarget(0, 10)
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	m := New(3, 2)
	m.Fill(red)

	var buf bytes.Buffer
	require.NoError(t, m.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}
