package graphic

import "math"

// GridLines are the heights, as a share of the chart, of the guide lines.
var GridLines = []float64{0.25, 0.5, 0.75}

// DrawBackground shades the chart area.
func DrawBackground(c Canvas, bounds Rect, opacity float64) error {
	return FillRect(c, bounds, Gray(trackShade).WithAlpha(opacity))
}

// DrawGrid draws the horizontal guide lines across the chart.
func DrawGrid(c Canvas, bounds Rect, opacity float64) error {
	col := Gray(0.42).WithAlpha(math.Min(0.3+opacity, 1))

	for _, off := range GridLines {
		y := bounds.Y + bounds.H*off
		a := Point{bounds.X, y}
		b := Point{bounds.X + bounds.W, y}
		if err := c.Line(a, b, 1, col); err != nil {
			return err
		}
	}

	return nil
}
