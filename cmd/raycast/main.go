// raycast - Sphere Ray Caster
// Renders a scene of mirror spheres by casting one ray per pixel and
// following its reflections. Runs in the terminal, in a desktop window, or
// headless to an image file.
//
// Controls (term and window):
//
//	W/S          - Move forward/back
//	A/D          - Strafe left/right
//	Space/E      - Move up
//	Q (Shift)    - Move down (Shift in the window only)
//	Arrow keys   - Look around (yaw/pitch)
//	R            - Reset camera (term)
//	?            - Toggle HUD overlay (term)
//	Esc          - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/raycast/pkg/config"
	"github.com/taigrr/raycast/pkg/logging"
	"github.com/taigrr/raycast/pkg/render"
	"github.com/taigrr/raycast/pkg/scene"
)

var version = "dev"

// ErrWindowUnsupported is returned by the window command in builds without
// cgo.
var ErrWindowUnsupported = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	configPath string
	logPath    string
	flags      config.Flags
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "raycast",
		Short: "Ray cast a scene of mirror spheres",
		Long: `raycast renders spheres by casting one ray per pixel and following its
reflections. Without a subcommand it renders into the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTerm(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "JSON config file")
	pf.StringVar(&opts.logPath, "log", "", "Append log lines to this file")
	pf.StringVarP(&opts.flags.Scene, "scene", "s", "", "Scene file (.json, .gltf, .glb)")
	pf.IntVar(&opts.flags.Width, "width", 0, "Render width in pixels (window and snapshot)")
	pf.IntVar(&opts.flags.Height, "height", 0, "Render height in pixels (window and snapshot)")
	pf.Float64Var(&opts.flags.FOV, "fov", 0, "Vertical field of view in degrees")
	pf.Float64Var(&opts.flags.NearClip, "near", 0, "Distance of the image plane")
	pf.IntVar(&opts.flags.Bounces, "bounces", -1, "Bounce budget per pixel")
	pf.IntVar(&opts.flags.FPS, "fps", 0, "Target FPS")

	root.AddCommand(
		newTermCmd(opts),
		newWindowCmd(opts),
		newSnapshotCmd(opts),
		newInspectCmd(opts),
	)
	return root
}

// app is everything a driver needs to render: resolved settings, the scene
// and a camera at its starting placement.
type app struct {
	cfg    config.Config
	scene  *scene.Scene
	shapes []render.Shape
	camera *render.Camera
	log    logging.Logger
	closer io.Closer
}

// setup resolves the configuration, loads the scene and places the camera.
// stderr receives log lines unless --log names a file.
func setup(opts *options, stderr io.Writer) (*app, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	cfg.Resolve(opts.flags)

	if err := cfg.Params().Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logging.New(stderr)}
	if opts.logPath != "" {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		a.log = logging.New(f)
		a.closer = f
	}

	a.scene = scene.Default()
	if cfg.Scene != "" {
		s, err := scene.Load(cfg.Scene)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load scene: %w", err)
		}
		a.scene = s
	}
	if pos, lookAt, ok := cfg.CameraPoints(); ok {
		a.scene.Camera = scene.CameraSetup{Position: pos, LookAt: lookAt}
	}

	cam, err := a.scene.NewCamera()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.camera = cam
	a.shapes = a.scene.Shapes()

	a.log.Printf("scene %q: %d spheres", a.scene.Name, len(a.scene.Spheres))
	return a, nil
}

// params returns the render parameters at the given size.
func (a *app) params(width, height int) render.Params {
	p := a.cfg.Params()
	p.Width, p.Height = width, height
	return p
}

// resetCamera puts the camera back at the scene's starting placement.
func (a *app) resetCamera() error {
	cam, err := a.scene.NewCamera()
	if err != nil {
		return err
	}
	*a.camera = *cam
	return nil
}

// Close releases the log file, if any.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
