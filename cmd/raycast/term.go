package main

import (
	"context"
	"fmt"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/raycast/pkg/control"
	"github.com/taigrr/raycast/pkg/logging"
	"github.com/taigrr/raycast/pkg/render"
	"golang.org/x/sync/errgroup"
)

func newTermCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Render into the terminal with half-block cells (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerm(cmd.Context(), opts)
		},
	}
}

// termView is the terminal driver's per-session state. It is only touched
// from the frame loop.
type termView struct {
	app      *app
	term     *uv.Terminal
	ctrl     *control.Controller
	renderer *render.Renderer
	fb       *render.Framebuffer

	cols, rows int
	holdFrames int
	showHUD    bool
	dirty      bool // frame must be redrawn even if the camera is idle
	fps        logging.FPSCounter
}

func runTerm(ctx context.Context, opts *options) error {
	a, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	v := &termView{
		app:  a,
		term: term,
		ctrl: control.New(a.cfg.FPS, a.cfg.MoveSpeed, a.cfg.TurnSpeed),
		// Keep a key held across the gap between terminal auto-repeats.
		holdFrames: max(a.cfg.FPS/4, 1),
		showHUD:    true,
	}
	if err := v.resize(cols, rows); err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	// The alt screen hides stderr; keep logging only when it goes to a file.
	if opts.logPath == "" {
		a.log = logging.Discard
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	events := make(chan uv.Event, 64)

	// Event reader: input is queued and applied between frames.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-term.Events():
				if !ok {
					return nil
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		return v.loop(ctx, events)
	})

	return g.Wait()
}

// resize rebuilds the framebuffer and renderer for a terminal of the given
// size.
func (v *termView) resize(cols, rows int) error {
	width, height := render.CellSize(max(cols, 1), max(rows, 1))
	r, err := render.NewRenderer(v.app.params(width, height))
	if err != nil {
		return err
	}
	v.cols, v.rows = cols, rows
	v.renderer = r
	v.fb = render.NewFramebuffer(width, height)
	v.dirty = true
	return nil
}

func (v *termView) loop(ctx context.Context, events <-chan uv.Event) error {
	targetDuration := time.Second / time.Duration(v.app.cfg.FPS)

	for {
		// Drain queued input so the camera never changes mid-frame.
		for drained := false; !drained; {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				quit, err := v.handle(ev)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}
			default:
				drained = true
			}
		}

		now := time.Now()
		if v.ctrl.Moving() && v.ctrl.Step(v.app.camera) {
			v.dirty = true
		}

		// An idle camera keeps the last frame on screen.
		if v.dirty {
			if err := v.frame(now); err != nil {
				return err
			}
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// frame renders and displays the current view.
func (v *termView) frame(now time.Time) error {
	if err := v.renderer.Render(v.fb.Pix, v.app.camera, v.app.shapes); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	v.fb.Draw(v.term, uv.Rect(0, 0, v.cols, v.rows))
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if v.fps.Tick(now) {
		v.app.log.Printf("%.1f fps", v.fps.FPS())
	}
	v.drawHUD()
	v.dirty = false
	return nil
}

// handle applies one input event. It reports whether the viewer should
// quit.
func (v *termView) handle(ev uv.Event) (bool, error) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		v.term.Resize(ev.Width, ev.Height)
		if err := v.resize(ev.Width, ev.Height); err != nil {
			return false, err
		}

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true, nil
		case ev.MatchString("r"):
			v.ctrl.Reset()
			if err := v.app.resetCamera(); err != nil {
				return false, err
			}
			v.dirty = true
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			v.showHUD = !v.showHUD
			// Repaint everything so a hidden HUD does not linger.
			v.term.Erase()
			v.dirty = true
		default:
			for key, action := range control.TerminalBindings {
				if ev.MatchString(key) {
					v.ctrl.Hold(action, v.holdFrames)
				}
			}
		}

	case uv.KeyReleaseEvent:
		for key, action := range control.TerminalBindings {
			if ev.MatchString(key) {
				v.ctrl.Release(action)
			}
		}
	}
	return false, nil
}

// drawHUD writes the overlay straight to the terminal after the frame.
func (v *termView) drawHUD() {
	const (
		reset     = "\x1b[0m"
		bgBlack   = "\x1b[40m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	if !v.showHUD {
		return
	}

	pos := v.app.camera.Position
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Printf("%s%s %.0f FPS %s", bgBlack, fgGreen, v.fps.FPS(), reset)
	fmt.Printf("%s%s %s  pos (%.1f, %.1f, %.1f)  yaw %.0f pitch %.0f %s",
		bgBlack, fgCyan, v.app.scene.Name, pos.X, pos.Y, pos.Z,
		v.app.camera.Yaw, v.app.camera.Pitch, reset)
}
