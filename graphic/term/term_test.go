package term

import (
	"image/color"
	"testing"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"

	"github.com/noriah/teletrace/telemetry"
)

func TestIndex(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		want int
	}{
		{color.RGBA{0, 0, 0, 255}, 16},
		{color.RGBA{255, 255, 255, 255}, 231},
		{color.RGBA{255, 0, 0, 255}, 196},
		{color.RGBA{0, 255, 0, 255}, 46},
		{color.RGBA{0, 0, 255, 255}, 21},
		{color.RGBA{100, 0, 0, 255}, 52},
		{color.RGBA{8, 8, 8, 255}, 232},
		{color.RGBA{128, 128, 128, 255}, 244},
		{color.RGBA{238, 238, 238, 255}, 255},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Index(tt.in), "Index(%v)", tt.in)
	}
}

func TestAttribute(t *testing.T) {
	assert.Equal(t, termbox.ColorDefault, Attribute(color.RGBA{255, 0, 0, 0}))
	assert.Equal(t, termbox.Attribute(197), Attribute(color.RGBA{255, 0, 0, 255}))
}

func TestKeyCommand(t *testing.T) {
	assert.Equal(t, telemetry.CommandPause, keyCommand(termbox.KeySpace, 0))
	assert.Equal(t, telemetry.CommandRewind, keyCommand(0, 'r'))
	assert.Equal(t, telemetry.CommandQuit, keyCommand(0, 'q'))
	assert.Equal(t, telemetry.CommandQuit, keyCommand(termbox.KeyEsc, 0))
	assert.Equal(t, telemetry.CommandQuit, keyCommand(termbox.KeyCtrlC, 0))
	assert.Equal(t, telemetry.CommandNone, keyCommand(0, 'x'))
}
