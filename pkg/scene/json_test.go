package scene

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
)

func TestParseJSON(t *testing.T) {
	body := `{
		"name": "pair",
		"camera": {"position": [0, 2, -10], "look_at": [0, 0, 0]},
		"spheres": [
			{"center": [0, 0, 0], "radius": 2, "color": [1, 0, 0], "emission": 0.5},
			{"center": [4, 0, 0], "radius": 1, "color": [0, 0, 1], "emission_color": [1, 0.5, 0], "emission": 2}
		]
	}`

	s, err := ParseJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if s.Name != "pair" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Camera.Position != math3d.V3(0, 2, -10) || s.Camera.LookAt != math3d.Zero3() {
		t.Errorf("Camera = %+v", s.Camera)
	}
	if len(s.Spheres) != 2 {
		t.Fatalf("got %d spheres, want 2", len(s.Spheres))
	}

	tests := []struct {
		name     string
		got      *render.Sphere
		center   math3d.Vec3
		radius   float64
		emission math3d.Vec3
		strength float64
	}{
		{"default emission color", s.Spheres[0], math3d.Zero3(), 2, math3d.Splat3(1), 0.5},
		{"explicit emission color", s.Spheres[1], math3d.V3(4, 0, 0), 1, math3d.V3(1, 0.5, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Center != tt.center || tt.got.Radius != tt.radius {
				t.Errorf("sphere at %v r=%v, want %v r=%v", tt.got.Center, tt.got.Radius, tt.center, tt.radius)
			}
			if tt.got.EmissionColor != tt.emission || tt.got.EmissionStrength != tt.strength {
				t.Errorf("emission %v x %v, want %v x %v", tt.got.EmissionColor, tt.got.EmissionStrength, tt.emission, tt.strength)
			}
		})
	}
}

func TestParseJSONDefaultCamera(t *testing.T) {
	s, err := ParseJSON(strings.NewReader(`{"spheres": []}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if s.Camera.Position != math3d.Zero3() || s.Camera.LookAt != math3d.V3(0, 0, 1) {
		t.Errorf("Camera = %+v, want origin looking down +z", s.Camera)
	}
	if len(s.Spheres) != 0 {
		t.Errorf("got %d spheres", len(s.Spheres))
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"malformed", `{"spheres": [`, nil},
		{"unknown field", `{"lights": []}`, nil},
		{"zero radius", `{"spheres": [{"center": [0, 0, 0], "radius": 0, "color": [1, 1, 1]}]}`, render.ErrInvalidRadius},
		{"negative radius", `{"spheres": [{"center": [0, 0, 0], "radius": -1, "color": [1, 1, 1]}]}`, render.ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("ParseJSON succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadJSONMissing(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadJSON err = %v, want ErrNotExist", err)
	}
}
