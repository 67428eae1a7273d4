package gpu

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/noriah/teletrace/graphic"
	"github.com/noriah/teletrace/telemetry"
)

// App is what the window drives.
type App interface {
	// Update runs one host tick.
	Update(dt float64)

	// Render draws a frame.
	Render(c graphic.Canvas, dt float64) error

	// Size returns the window size the app wants.
	Size() (int, int)
}

// Game adapts an App to ebiten.
type Game struct {
	app     App
	control func(telemetry.Command)

	lastDraw time.Time
}

var _ ebiten.Game = (*Game)(nil)

// NewGame returns a game running app. control receives the playback keys,
// it may be nil.
func NewGame(app App, control func(telemetry.Command)) *Game {
	return &Game{app: app, control: control}
}

// Update runs the app tick and reads the playback keys.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ),
		inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination

	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.send(telemetry.CommandPause)

	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.send(telemetry.CommandRewind)
	}

	g.app.Update(1 / float64(ebiten.TPS()))

	return nil
}

func (g *Game) send(cmd telemetry.Command) {
	if g.control != nil {
		g.control(cmd)
	}
}

// Draw renders a frame onto the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()

	var dt float64
	if !g.lastDraw.IsZero() {
		dt = now.Sub(g.lastDraw).Seconds()
	}
	g.lastDraw = now

	// a failed frame is dropped, the app logs why
	_ = g.app.Render(Wrap(screen), dt)
}

// Layout keeps the screen at the app size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.app.Size()
}

// Run opens a transparent window and blocks until it is closed.
func Run(app App, title string, control func(telemetry.Command)) error {
	w, h := app.Size()

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowFloating(true)
	ebiten.SetTPS(120)

	return ebiten.RunGameWithOptions(NewGame(app, control), &ebiten.RunGameOptions{
		ScreenTransparent: true,
	})
}
