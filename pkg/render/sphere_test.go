package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/raycast/pkg/math3d"
)

// forwardView is the view of a camera at the origin looking down +z, which
// maps world points (x, y, z) to view space (x, -y, z).
func forwardView(t *testing.T) View {
	t.Helper()
	c, err := NewCamera(math3d.Zero3(), math3d.V3(0, 0, 1))
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return c.View()
}

func mustSphere(t *testing.T, center math3d.Vec3, radius float64, color, emissionColor math3d.Vec3, emission float64) *Sphere {
	t.Helper()
	s, err := NewSphere(center, radius, color, emissionColor, emission)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	return s
}

func TestNewSphereRejectsBadRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewSphere(math3d.Zero3(), r, math3d.Splat3(1), math3d.Zero3(), 0); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("NewSphere(radius=%v) error = %v, want ErrInvalidRadius", r, err)
		}
	}
}

// A ray starting 2R from the center of a sphere and pointing at it travels
// exactly R before touching the surface, whatever the direction.
func TestSphereIntersectDistance(t *testing.T) {
	view := forwardView(t)

	directions := []math3d.Vec3{
		math3d.V3(0, 0, 1),
		math3d.V3(1, 0, 0),
		math3d.V3(0, -1, 0),
		math3d.V3(1, 2, 3).Normalize(),
		math3d.V3(-0.3, 0.9, -0.1).Normalize(),
	}

	for _, radius := range []float64{0.5, 1, 5, 120} {
		s := mustSphere(t, math3d.Zero3(), radius, math3d.Splat3(1), math3d.Zero3(), 0)
		for _, u := range directions {
			origin := u.Scale(-2 * radius)
			// The direction length must not matter.
			got, ok := s.Intersect(origin, u.Scale(3), &view)
			if !ok {
				t.Errorf("radius %v dir %v: expected hit", radius, u)
				continue
			}
			if math.Abs(got-radius) > 1e-9*radius {
				t.Errorf("radius %v dir %v: distance = %v, want %v", radius, u, got, radius)
			}
		}
	}
}

func TestSphereIntersectMisses(t *testing.T) {
	view := forwardView(t)
	s := mustSphere(t, math3d.V3(0, 0, 10), 2, math3d.Splat3(1), math3d.Zero3(), 0)

	tests := []struct {
		name        string
		origin, dir math3d.Vec3
	}{
		{"passes beside", math3d.Zero3(), math3d.V3(1, 0, 1)},
		{"points away", math3d.Zero3(), math3d.V3(0, 0, -1)},
		{"origin at center", math3d.V3(0, 0, 10), math3d.V3(0, 0, 1)},
		{"origin inside off center", math3d.V3(0.5, 1, 9), math3d.V3(0, 1, 0)},
		{"origin on surface leaving", math3d.V3(0, 0, 8), math3d.V3(0, 0, -1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if d, ok := s.Intersect(tc.origin, tc.dir, &view); ok {
				t.Errorf("expected no hit, got distance %v", d)
			}
		})
	}
}

func TestSphereIntersectUsesViewSpace(t *testing.T) {
	// World y=5 is view y=-5 for the forward camera.
	view := forwardView(t)
	s := mustSphere(t, math3d.V3(0, 5, 20), 5, math3d.Splat3(1), math3d.Zero3(), 0)

	toCenter := math3d.V3(0, -5, 20)
	got, ok := s.Intersect(math3d.Zero3(), toCenter, &view)
	if !ok {
		t.Fatal("expected hit towards the view-space center")
	}
	if want := toCenter.Len() - 5; math.Abs(got-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", got, want)
	}

	if _, ok := s.Intersect(math3d.Zero3(), math3d.V3(0, 5, 20), &view); ok {
		t.Error("ray towards the world-space center should miss")
	}
}

func TestSphereReflect(t *testing.T) {
	view := forwardView(t)
	s := mustSphere(t, math3d.V3(1, -2, 15), 3, math3d.Splat3(1), math3d.Zero3(), 0)
	center := view.ToViewSpace(s.Center)

	normals := []math3d.Vec3{
		math3d.V3(0, 0, -1),
		math3d.V3(1, 1, 0).Normalize(),
		math3d.V3(-2, 0.5, -1).Normalize(),
	}
	dirs := []math3d.Vec3{
		math3d.V3(0, 0, 2),
		math3d.V3(0.3, -0.1, 1),
		math3d.V3(-4, 2, 7),
	}

	for _, n := range normals {
		p := center.Add(n.Scale(s.Radius))
		for _, d := range dirs {
			r, ok := s.Reflect(d, p, &view)
			if !ok {
				t.Fatal("sphere refused to reflect")
			}
			if got, want := r.Dot(n), -d.Dot(n); math.Abs(got-want) > 1e-9 {
				t.Errorf("normal component = %v, want %v", got, want)
			}
			tr := r.Sub(n.Scale(r.Dot(n)))
			td := d.Sub(n.Scale(d.Dot(n)))
			if !tr.ApproxEqual(td, 1e-9) {
				t.Errorf("tangent component = %v, want %v", tr, td)
			}
			if math.Abs(r.Len()-d.Len()) > 1e-9 {
				t.Errorf("reflection changed length: %v vs %v", r.Len(), d.Len())
			}
		}
	}
}

func TestSphereMaterial(t *testing.T) {
	s := mustSphere(t, math3d.Zero3(), 1, math3d.V3(1, 0.25, 0.25), math3d.Splat3(1), 0.2)
	m := materialOf(s)
	if m.SurfaceColor != math3d.V3(1, 0.25, 0.25) || m.EmissionColor != math3d.Splat3(1) || m.EmissionStrength != 0.2 {
		t.Errorf("material = %+v", m)
	}
}
