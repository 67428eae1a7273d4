package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/noriah/teletrace"
	"github.com/noriah/teletrace/graphic/raster"
	"github.com/noriah/teletrace/graphic/term"
)

// runTerminal shows the overlay in the terminal until quit is pressed or the
// context is canceled.
func runTerminal(ctx context.Context, overlay *teletrace.Overlay, tickRate int) error {
	screen, err := term.Open()
	if err != nil {
		return err
	}

	defer screen.Close()

	ctx = screen.Start(ctx)

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	var img *raster.Image
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd, ok := <-screen.Commands():
			if !ok {
				return nil
			}

			overlay.Control(cmd)

		case now := <-ticker.C:
			overlay.Update(now.Sub(last).Seconds())
			last = now

			// a failed frame is logged by the overlay and dropped
			img, err = present(overlay, img)
			if err != nil {
				continue
			}

			if err := screen.Present(img.RGBA()); err != nil {
				return err
			}
		}
	}
}

// runHeadless drives the overlay with a fixed tick and optionally writes the
// last frame as a PNG.
func runHeadless(ctx context.Context, overlay *teletrace.Overlay, f flags) error {
	var out io.Writer
	if f.png != "" {
		file, err := os.Create(f.png)
		if err != nil {
			return errors.Wrap(err, "failed to create png")
		}

		defer file.Close()
		out = file
	}

	return headless(ctx, overlay, f.ticks, 1/float64(f.tickRate), out)
}

func headless(ctx context.Context, overlay *teletrace.Overlay, ticks int, dt float64, out io.Writer) error {
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			break
		}

		overlay.Update(dt)
	}

	if out == nil {
		return nil
	}

	img, err := present(overlay, nil)
	if err != nil {
		return errors.Wrap(err, "failed to render frame")
	}

	return img.WritePNG(out)
}
