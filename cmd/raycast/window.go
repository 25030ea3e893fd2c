//go:build cgo

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/taigrr/raycast/pkg/control"
	"github.com/taigrr/raycast/pkg/logging"
	"github.com/taigrr/raycast/pkg/render"
)

// windowBindings maps polled keys to actions.
var windowBindings = map[control.Action][]ebiten.Key{
	control.Forward:     {ebiten.KeyW},
	control.Back:        {ebiten.KeyS},
	control.StrafeLeft:  {ebiten.KeyA},
	control.StrafeRight: {ebiten.KeyD},
	control.Rise:        {ebiten.KeySpace, ebiten.KeyE},
	control.Sink:        {ebiten.KeyShiftLeft, ebiten.KeyQ},
	control.YawLeft:     {ebiten.KeyArrowLeft},
	control.YawRight:    {ebiten.KeyArrowRight},
	control.PitchUp:     {ebiten.KeyArrowUp},
	control.PitchDown:   {ebiten.KeyArrowDown},
}

// runWindow opens a desktop window that displays the framebuffer and
// forwards keyboard input. It blocks until the window closes.
func runWindow(ctx context.Context, opts *options) error {
	a, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.cfg.Params()
	r, err := render.NewRenderer(p)
	if err != nil {
		return err
	}

	g := &windowGame{
		ctx:      ctx,
		app:      a,
		renderer: r,
		ctrl:     control.New(a.cfg.FPS, a.cfg.MoveSpeed, a.cfg.TurnSpeed),
		fb:       render.NewFramebuffer(p.Width, p.Height),
		dirty:    true,
	}

	ebiten.SetWindowTitle(fmt.Sprintf("raycast (%s)", a.scene.Name))
	ebiten.SetWindowSize(p.Width, p.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(a.cfg.FPS)

	a.log.Printf("window %dx%d, %d bounces", p.Width, p.Height, p.MaxBounces)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	return g.err
}

type windowGame struct {
	ctx      context.Context
	app      *app
	renderer *render.Renderer
	ctrl     *control.Controller
	fb       *render.Framebuffer
	fbImg    *ebiten.Image
	fps      logging.FPSCounter
	dirty    bool
	err      error
}

func (g *windowGame) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	for action, keys := range windowBindings {
		down := false
		for _, k := range keys {
			down = down || ebiten.IsKeyPressed(k)
		}
		g.ctrl.Set(action, down)
	}
	if g.ctrl.Moving() && g.ctrl.Step(g.app.camera) {
		g.dirty = true
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(g.fb.Width, g.fb.Height)
	}

	if g.dirty {
		if err := g.renderer.Render(g.fb.Pix, g.app.camera, g.app.shapes); err != nil {
			g.err = fmt.Errorf("render: %w", err)
			return
		}
		g.fbImg.WritePixels(g.fb.Pix)
		g.dirty = false

		if g.fps.Tick(time.Now()) {
			g.app.log.Printf("%.1f fps", g.fps.FPS())
		}
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *windowGame) Layout(_, _ int) (int, int) {
	return g.fb.Width, g.fb.Height
}
