package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/raycast/pkg/math3d"
)

var (
	// ErrFrameSize is returned when the frame passed to Render does not hold
	// exactly Width*Height RGBA pixels.
	ErrFrameSize = errors.New("render: frame size does not match parameters")

	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("render: invalid parameters")
)

// Params are the camera intrinsics and loop settings of a render. They must
// stay the same across the frames of a session.
type Params struct {
	Width      int
	Height     int
	NearClip   float64     // Distance of the image plane from the eye
	FOV        float64     // Vertical field of view in degrees
	MaxBounces int         // Bounce budget per pixel
	Ambient    math3d.Vec3 // Light every pixel starts with
}

// DefaultParams returns the settings the viewer ships with.
func DefaultParams() Params {
	return Params{
		Width:      960,
		Height:     540,
		NearClip:   2,
		FOV:        85,
		MaxBounces: 2,
		Ambient:    math3d.Splat3(0.2),
	}
}

// Validate checks that the parameters describe a renderable image.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidParams, p.Width, p.Height)
	case !(p.NearClip > 0):
		return fmt.Errorf("%w: near clip %v", ErrInvalidParams, p.NearClip)
	case !(p.FOV > 0 && p.FOV < 180):
		return fmt.Errorf("%w: field of view %v", ErrInvalidParams, p.FOV)
	case p.MaxBounces < 0:
		return fmt.Errorf("%w: bounce budget %d", ErrInvalidParams, p.MaxBounces)
	}
	return nil
}

// FrameSize returns the number of bytes a frame must hold.
func (p Params) FrameSize() int {
	return p.Width * p.Height * BytesPerPixel
}

// Renderer casts one ray per pixel and follows its reflections.
type Renderer struct {
	params Params
}

// NewRenderer creates a renderer for the given parameters.
func NewRenderer(params Params) (*Renderer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{params: params}, nil
}

// Params returns the renderer's parameters.
func (r *Renderer) Params() Params {
	return r.params
}

// Render overwrites every pixel of frame. The camera is read once, at the
// start of the call; shapes are only read.
func (r *Renderer) Render(frame []byte, cam *Camera, shapes []Shape) error {
	if len(frame) != r.params.FrameSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), r.params.FrameSize())
	}

	view := cam.View()
	materials := materials(shapes)

	for y := range r.params.Height {
		for x := range r.params.Width {
			light := r.trace(r.ray(x, y), &view, shapes, materials, nil)
			WritePixel(frame, x, y, r.params.Width, light)
		}
	}
	return nil
}

// Hit records one bounce of a traced pixel.
type Hit struct {
	Shape    int         // Index into the shape list
	Distance float64     // Distance travelled from the previous origin
	Point    math3d.Vec3 // View-space hit point
}

// Trace is the full path of a single pixel.
type Trace struct {
	Direction math3d.Vec3 // Primary ray direction
	Hits      []Hit
	Light     math3d.Vec3 // Final linear color
}

// Trace follows the ray of pixel (x, y) and records every bounce.
func (r *Renderer) Trace(x, y int, view *View, shapes []Shape) Trace {
	dir := r.ray(x, y)
	var hits []Hit
	light := r.trace(dir, view, shapes, materials(shapes), &hits)
	return Trace{Direction: dir, Hits: hits, Light: light}
}

func (r *Renderer) ray(x, y int) math3d.Vec3 {
	return GenerateRay(x, y, r.params.Width, r.params.Height, r.params.NearClip, r.params.FOV)
}

// trace runs the bounce loop for one primary ray. Hits are appended to
// record when it is non-nil.
func (r *Renderer) trace(ray math3d.Vec3, view *View, shapes []Shape, mats []Material, record *[]Hit) math3d.Vec3 {
	origin := math3d.Zero3()
	color := math3d.Splat3(1)
	light := r.params.Ambient

	for range r.params.MaxBounces {
		hit := -1
		var distance float64
		for i, s := range shapes {
			t, ok := s.Intersect(origin, ray, view)
			if ok && (hit < 0 || t < distance) {
				hit, distance = i, t
			}
		}
		if hit < 0 {
			break
		}

		point := origin.Add(ray.Normalize().Scale(distance))
		if record != nil {
			*record = append(*record, Hit{Shape: hit, Distance: distance, Point: point})
		}

		m := mats[hit]
		light = light.Add(m.EmissionColor.Scale(m.EmissionStrength).Mul(color))
		color = color.Mul(m.SurfaceColor)

		reflected, ok := shapes[hit].Reflect(ray, point, view)
		if !ok {
			break
		}
		ray = reflected
		origin = point
	}

	return light
}

func materials(shapes []Shape) []Material {
	mats := make([]Material, len(shapes))
	for i, s := range shapes {
		mats[i] = materialOf(s)
	}
	return mats
}
