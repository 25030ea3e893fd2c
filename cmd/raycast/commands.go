package main

import (
	"encoding/json"
	"fmt"
	"image"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
	"github.com/taigrr/raycast/pkg/snapshot"
)

func newWindowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Render into a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWindow(cmd.Context(), opts)
		},
	}
}

type snapshotOptions struct {
	output    string
	scale     int
	golden    string
	tolerance uint8
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var so snapshotOptions

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to a PNG or WebP file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.flags.Output = so.output
			opts.flags.Scale = so.scale
			return runSnapshot(cmd, opts, so)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&so.output, "output", "o", "", "Output file (.png or .webp)")
	f.IntVar(&so.scale, "scale", 0, "Integer upscale factor")
	f.StringVar(&so.golden, "golden", "", "Reference image to compare against")
	f.Uint8Var(&so.tolerance, "tolerance", 0, "Largest allowed per-channel difference from the golden image")
	return cmd
}

// renderFrame renders the starting view of the scene at the configured size.
func renderFrame(a *app) (*render.Framebuffer, error) {
	r, err := render.NewRenderer(a.cfg.Params())
	if err != nil {
		return nil, err
	}
	fb := render.NewFramebuffer(a.cfg.Width, a.cfg.Height)
	if err := r.Render(fb.Pix, a.camera, a.shapes); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return fb, nil
}

func runSnapshot(cmd *cobra.Command, opts *options, so snapshotOptions) error {
	a, err := setup(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	fb, err := renderFrame(a)
	if err != nil {
		return err
	}

	var img image.Image = fb.Image()
	if a.cfg.Scale > 1 {
		img = snapshot.Scale(img, a.cfg.Scale)
	}

	if err := snapshot.Save(a.cfg.Output, img); err != nil {
		return err
	}
	a.log.Printf("wrote %s (%dx%d)", a.cfg.Output, img.Bounds().Dx(), img.Bounds().Dy())

	if so.golden == "" {
		return nil
	}

	want, err := snapshot.Load(so.golden)
	if err != nil {
		return err
	}
	d, err := snapshot.Compare(img, want)
	if err != nil {
		return err
	}
	if !d.Within(so.tolerance) {
		return fmt.Errorf("snapshot differs from %s: %d pixels, max delta %d (tolerance %d)",
			so.golden, d.Pixels, d.MaxDelta, so.tolerance)
	}
	a.log.Printf("matches %s (%d pixels within tolerance %d)", so.golden, d.Pixels, so.tolerance)
	return nil
}

// inspectHit is one bounce in the inspect output.
type inspectHit struct {
	Shape    int        `json:"shape"`
	Distance float64    `json:"distance"`
	Point    [3]float64 `json:"point"`
}

// inspectResponse is the trace of one pixel.
type inspectResponse struct {
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Direction [3]float64   `json:"direction"`
	Hits      []inspectHit `json:"hits"`
	Light     [3]float64   `json:"light"`
	RGBA      [4]uint8     `json:"rgba"`
}

func newInspectCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect X Y",
		Short: "Print the bounce trace of one pixel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}

			a, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := inspect(a, x, y)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Fprintf(out, "pixel (%d, %d) ray %v\n", resp.X, resp.Y, resp.Direction)
			for i, h := range resp.Hits {
				fmt.Fprintf(out, "  bounce %d: shape %d at distance %.4f, point %v\n", i+1, h.Shape, h.Distance, h.Point)
			}
			if len(resp.Hits) == 0 {
				fmt.Fprintln(out, "  no hit")
			}
			fmt.Fprintf(out, "light %v -> rgba %v\n", resp.Light, resp.RGBA)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the trace as JSON")
	return cmd
}

// inspect traces pixel (x, y) of the starting view.
func inspect(a *app, x, y int) (*inspectResponse, error) {
	p := a.cfg.Params()
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return nil, fmt.Errorf("pixel (%d, %d) outside %dx%d", x, y, p.Width, p.Height)
	}

	r, err := render.NewRenderer(p)
	if err != nil {
		return nil, err
	}

	view := a.camera.View()
	tr := r.Trace(x, y, &view, a.shapes)

	var px [render.BytesPerPixel]byte
	render.WritePixel(px[:], 0, 0, 1, tr.Light)

	resp := &inspectResponse{
		X:         x,
		Y:         y,
		Direction: array(tr.Direction),
		Hits:      make([]inspectHit, len(tr.Hits)),
		Light:     array(tr.Light),
		RGBA:      px,
	}
	for i, h := range tr.Hits {
		resp.Hits[i] = inspectHit{Shape: h.Shape, Distance: h.Distance, Point: array(h.Point)}
	}
	return resp, nil
}

func array(v math3d.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
