package render

import "github.com/taigrr/raycast/pkg/math3d"

// Shape is anything a ray can hit. Both methods work in view space: origin,
// direction and point are already expressed relative to the eye, and the
// shape uses view to bring its own geometry into the same frame.
type Shape interface {
	// Intersect returns the distance along the normalized direction to the
	// first surface in front of origin.
	Intersect(origin, direction math3d.Vec3, view *View) (float64, bool)

	// Reflect returns the direction a ray leaves the surface at point. A
	// shape may refuse, which ends the bounce loop.
	Reflect(direction, point math3d.Vec3, view *View) (math3d.Vec3, bool)
}

// Material describes how a surface colors and emits light.
type Material struct {
	SurfaceColor     math3d.Vec3 // Linear RGB in 0-1 range
	EmissionColor    math3d.Vec3
	EmissionStrength float64
}

// Surface is implemented by shapes that carry a material. Shapes without
// one render as black, non-emissive surfaces.
type Surface interface {
	Material() Material
}

// materialOf returns the material of s, or the zero material.
func materialOf(s Shape) Material {
	if sf, ok := s.(Surface); ok {
		return sf.Material()
	}
	return Material{}
}
