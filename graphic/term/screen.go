// Package term shows overlay frames in a terminal with termbox. Every cell
// holds two pixels stacked with the upper half block rune.
package term

import (
	"context"
	"image"

	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/noriah/teletrace/telemetry"
)

// HalfBlock is drawn in lit cells, the foreground is the upper pixel and
// the background the lower one.
const HalfBlock rune = '\u2580'

// LowerHalfBlock is used when only the lower pixel is set.
const LowerHalfBlock rune = '\u2584'

// Screen is a termbox screen that presents raster frames.
type Screen struct {
	restore func()
	scaled  *image.RGBA

	commands chan telemetry.Command
}

// Open takes over the terminal.
func Open() (*Screen, error) {
	restore, err := normalizeTerminal()
	if err != nil {
		return nil, err
	}

	if err := termbox.Init(); err != nil {
		restore()
		return nil, errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetOutputMode(termbox.Output256)
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	return &Screen{
		restore:  restore,
		commands: make(chan telemetry.Command, 8),
	}, nil
}

// Size returns the drawable size in pixels.
func (s *Screen) Size() (int, int) {
	w, h := termbox.Size()
	return w, h * 2
}

// Commands delivers the playback keys pressed. It is closed when the poller
// stops.
func (s *Screen) Commands() <-chan telemetry.Command {
	return s.commands
}

// Start polls key events until the context is done or quit is pressed. The
// returned context is canceled when polling stops.
func (s *Screen) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go s.eventPoller(ctx, cancel)
	return ctx
}

func (s *Screen) eventPoller(ctx context.Context, fn context.CancelFunc) {
	stopped := make(chan struct{})

	defer close(s.commands)
	defer fn()
	defer close(stopped)

	go func() {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
		}

		select {
		case <-stopped:
		default:
			// wakes PollEvent
			termbox.Interrupt()
		}
	}()

	for {
		ev := termbox.PollEvent()

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch ev.Type {
		case termbox.EventKey:
			cmd := keyCommand(ev.Key, ev.Ch)
			if cmd == telemetry.CommandQuit {
				return
			}

			if cmd != telemetry.CommandNone {
				select {
				case s.commands <- cmd:
				default:
				}
			}

		case termbox.EventInterrupt:
			return

		case termbox.EventError:
			return

		default:
		}
	}
}

func keyCommand(key termbox.Key, ch rune) telemetry.Command {
	switch key {
	case termbox.KeySpace:
		return telemetry.CommandPause

	case termbox.KeyCtrlC, termbox.KeyEsc:
		return telemetry.CommandQuit

	default:
	}

	switch ch {
	case ' ':
		return telemetry.CommandPause
	case 'r', 'R':
		return telemetry.CommandRewind
	case 'q', 'Q':
		return telemetry.CommandQuit
	default:
		return telemetry.CommandNone
	}
}

// Present draws img scaled to the terminal.
func (s *Screen) Present(img *image.RGBA) error {
	w, h := s.Size()
	if w == 0 || h == 0 {
		return nil
	}

	src := img
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		r := image.Rect(0, 0, w, h)
		if s.scaled == nil || s.scaled.Bounds() != r {
			s.scaled = image.NewRGBA(r)
		}

		draw.ApproxBiLinear.Scale(s.scaled, r, img, b, draw.Src, nil)
		src = s.scaled
	}

	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for y := 0; y+1 < h; y += 2 {
		for x := 0; x < w; x++ {
			fg := Attribute(src.RGBAAt(x, y))
			bg := Attribute(src.RGBAAt(x, y+1))

			switch {
			case fg == termbox.ColorDefault && bg == termbox.ColorDefault:
			case fg == termbox.ColorDefault:
				termbox.SetCell(x, y/2, LowerHalfBlock, bg, termbox.ColorDefault)
			default:
				termbox.SetCell(x, y/2, HalfBlock, fg, bg)
			}
		}
	}

	return errors.Wrap(termbox.Flush(), "failed to flush terminal")
}

// Close gives the terminal back.
func (s *Screen) Close() {
	termbox.Close()
	s.restore()
}
