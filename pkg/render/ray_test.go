package render

import (
	"math"
	"testing"

	"github.com/taigrr/raycast/pkg/math3d"
)

func TestGenerateRay(t *testing.T) {
	const (
		width, height = 101, 51
		near, fov     = 2.0, 90.0
	)
	planeH := near * math.Tan(math.Pi/4) * 2
	planeW := planeH * width / height

	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"top left", 0, 0, math3d.V3(-planeW/2, -planeH/2, near)},
		{"bottom right", width - 1, height - 1, math3d.V3(planeW/2, planeH/2, near)},
		{"center", 50, 25, math3d.V3(0, 0, near)},
		{"quarter", 25, 0, math3d.V3(-planeW/4, -planeH/2, near)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateRay(tc.x, tc.y, width, height, near, fov)
			if !got.ApproxEqual(tc.want, 1e-12) {
				t.Errorf("GenerateRay(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestGenerateRayNotNormalized(t *testing.T) {
	got := GenerateRay(3, 7, 640, 480, 5, 60)
	if got.Z != 5 {
		t.Errorf("z = %v, want the near clip distance 5", got.Z)
	}
	if math.Abs(got.Len()-1) < 1e-6 {
		t.Error("ray should not be normalized")
	}
}

func TestGenerateRaySinglePixel(t *testing.T) {
	got := GenerateRay(0, 0, 1, 1, 2, 85)
	if got != math3d.V3(0, 0, 2) {
		t.Errorf("single pixel ray = %v, want (0, 0, 2)", got)
	}
	if !got.IsFinite() {
		t.Error("single pixel ray must be finite")
	}
}
