package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
)

type jsonScene struct {
	Name   string `json:"name"`
	Camera *struct {
		Position [3]float64 `json:"position"`
		LookAt   [3]float64 `json:"look_at"`
	} `json:"camera"`
	Spheres []jsonSphere `json:"spheres"`
}

type jsonSphere struct {
	Center        [3]float64  `json:"center"`
	Radius        float64     `json:"radius"`
	Color         [3]float64  `json:"color"`
	EmissionColor *[3]float64 `json:"emission_color"`
	Emission      float64     `json:"emission"`
}

// LoadJSON reads a JSON scene file.
func LoadJSON(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := ParseJSON(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseJSON decodes a scene. A missing camera defaults to the origin looking
// down +z; a missing emission color defaults to white.
func ParseJSON(r io.Reader) (*Scene, error) {
	var js jsonScene
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&js); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s := &Scene{
		Name: js.Name,
		Camera: CameraSetup{
			Position: math3d.Zero3(),
			LookAt:   math3d.V3(0, 0, 1),
		},
	}
	if js.Camera != nil {
		s.Camera.Position = vec3(js.Camera.Position)
		s.Camera.LookAt = vec3(js.Camera.LookAt)
	}

	for i, sp := range js.Spheres {
		emissionColor := math3d.Splat3(1)
		if sp.EmissionColor != nil {
			emissionColor = vec3(*sp.EmissionColor)
		}
		sphere, err := render.NewSphere(vec3(sp.Center), sp.Radius, vec3(sp.Color), emissionColor, sp.Emission)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.Spheres = append(s.Spheres, sphere)
	}

	return s, nil
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}
