// Package ebiten runs a GameLoop inside an ebiten window and supplies the
// input, render and audio adapters the engine's systems draw on.
package ebiten

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/hotbean/config"
	"github.com/plus3/hotbean/ecs"
)

// Overlay draws on top of the game, e.g. a debug UI.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(width, height int)
}

// Game implements ebiten.Game. Each Update runs one loop frame; the frame's
// OnRender draws into an offscreen canvas that Draw copies to the screen.
type Game struct {
	loop   *ecs.GameLoop
	render *RenderSystem
	cfg    config.Window

	Overlays []Overlay

	canvas        *ebiten.Image
	width, height int
	keys          []ebiten.Key
}

// NewGame wires render into loop's world. render may be nil when the caller
// draws everything through overlays.
func NewGame(loop *ecs.GameLoop, render *RenderSystem, cfg config.Window) *Game {
	return &Game{loop: loop, render: render, cfg: cfg, width: cfg.Width, height: cfg.Height}
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.loop.PushEvent(ecs.Event{Type: ecs.EventQuit})
	}
	if g.loop.State() == ecs.Stopped {
		return ebiten.Termination
	}
	g.keys = pollEvents(g.loop, g.keys)

	for _, o := range g.Overlays {
		o.BeginFrame()
	}
	if g.render != nil {
		g.render.Target = g.ensureCanvas()
	}
	g.loop.Frame(1 / float64(ebiten.TPS()))
	for _, o := range g.Overlays {
		o.EndFrame()
	}

	if g.loop.State() == ecs.Stopped {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) ensureCanvas() *ebiten.Image {
	if g.canvas != nil {
		b := g.canvas.Bounds()
		if b.Dx() == g.width && b.Dy() == g.height {
			return g.canvas
		}
		g.canvas.Deallocate()
	}
	g.canvas = ebiten.NewImage(g.width, g.height)
	return g.canvas
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas != nil {
		screen.DrawImage(g.canvas, nil)
	}
	for _, o := range g.Overlays {
		o.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.loop.PushEvent(ecs.Event{Type: ecs.EventResize, X: float64(outsideWidth), Y: float64(outsideHeight)})
	}
	for _, o := range g.Overlays {
		o.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the loop stops or the window closes.
// The loop is shut down before Run returns.
func (g *Game) Run(tickRate int) error {
	defer g.loop.Shutdown()

	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	if tickRate > 0 {
		ebiten.SetTPS(tickRate)
	}

	g.loop.Init()
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
