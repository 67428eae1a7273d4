package term

import (
	"image/color"

	"github.com/nsf/termbox-go"
)

// cubeLevels are the channel values of the xterm 6x6x6 color cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// cubeIndex returns the cube level closest to v.
func cubeIndex(v uint8) int {
	best, bestDist := 0, 256
	for i, l := range cubeLevels {
		d := int(v) - int(l)
		if d < 0 {
			d = -d
		}

		if d < bestDist {
			best, bestDist = i, d
		}
	}

	return best
}

// Index returns the xterm-256 palette index closest to c. c is read as
// premultiplied over black.
func Index(c color.RGBA) int {
	r, g, b := cubeIndex(c.R), cubeIndex(c.G), cubeIndex(c.B)
	cube := 16 + 36*r + 6*g + b

	// grays have their own finer ramp, 232 to 255, from 8 to 238
	if c.R == c.G && c.G == c.B {
		if c.R < 4 {
			return 16
		}

		if c.R > 246 {
			return 231
		}

		gray := 232 + (int(c.R)-8+5)/10
		if gray < 232 {
			gray = 232
		}
		if gray > 255 {
			gray = 255
		}

		return gray
	}

	return cube
}

// Attribute returns the termbox attribute for c in 256 color output mode.
// Transparent pixels keep the terminal default.
func Attribute(c color.RGBA) termbox.Attribute {
	if c.A == 0 {
		return termbox.ColorDefault
	}

	// palette index n is attribute n+1 in Output256
	return termbox.Attribute(Index(c) + 1)
}
