package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// ErrInvalidRadius is returned for spheres whose radius is not strictly
// positive.
var ErrInvalidRadius = errors.New("render: sphere radius must be positive")

// Sphere is a perfectly reflective sphere.
type Sphere struct {
	Center           math3d.Vec3
	Radius           float64
	SurfaceColor     math3d.Vec3
	EmissionColor    math3d.Vec3
	EmissionStrength float64
}

// NewSphere creates a sphere. Colors are not validated.
func NewSphere(center math3d.Vec3, radius float64, color, emissionColor math3d.Vec3, emission float64) (*Sphere, error) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	return &Sphere{
		Center:           center,
		Radius:           radius,
		SurfaceColor:     color,
		EmissionColor:    emissionColor,
		EmissionStrength: emission,
	}, nil
}

// Material implements Surface.
func (s *Sphere) Material() Material {
	return Material{
		SurfaceColor:     s.SurfaceColor,
		EmissionColor:    s.EmissionColor,
		EmissionStrength: s.EmissionStrength,
	}
}

// Intersect solves |origin + t·d̂ − c|² = r² and returns the near root.
// An origin inside the sphere (or on its surface) reports no hit.
func (s *Sphere) Intersect(origin, direction math3d.Vec3, view *View) (float64, bool) {
	d := direction.Normalize()
	q := origin.Sub(view.ToViewSpace(s.Center))

	a := d.Dot(d)
	b := 2 * q.Dot(d)
	c := q.Dot(q) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	t := (-b - math.Sqrt(disc)) / (2 * a)
	if !(t > 0) {
		return 0, false
	}
	return t, true
}

// Reflect mirrors direction about the surface normal at point.
func (s *Sphere) Reflect(direction, point math3d.Vec3, view *View) (math3d.Vec3, bool) {
	normal := point.Sub(view.ToViewSpace(s.Center)).Normalize()
	return direction.Reflect(normal), true
}
