// Package scene describes what the viewer renders: a list of spheres and the
// initial camera placement. Scenes come from the built-in default, JSON files,
// or glTF/GLB documents.
package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
)

// CameraSetup is the initial camera placement of a scene.
type CameraSetup struct {
	Position math3d.Vec3
	LookAt   math3d.Vec3
}

// Scene holds the spheres to render and where the camera starts.
type Scene struct {
	Name    string
	Camera  CameraSetup
	Spheres []*render.Sphere
}

// Default returns the built-in scene: a red and a green sphere side by side
// with a small bright emitter above them.
func Default() *Scene {
	return &Scene{
		Name: "default",
		Camera: CameraSetup{
			Position: math3d.Zero3(),
			LookAt:   math3d.V3(0, 0, 1),
		},
		Spheres: []*render.Sphere{
			{
				Center:           math3d.V3(0, 5, 20),
				Radius:           5,
				SurfaceColor:     math3d.V3(1, 0.25, 0.25),
				EmissionColor:    math3d.Splat3(1),
				EmissionStrength: 0.2,
			},
			{
				Center:           math3d.V3(10, 5, 20),
				Radius:           5,
				SurfaceColor:     math3d.V3(0.25, 1, 0.25),
				EmissionColor:    math3d.Splat3(1),
				EmissionStrength: 0.2,
			},
			{
				Center:           math3d.V3(0, 12, 15),
				Radius:           2,
				SurfaceColor:     math3d.Splat3(0),
				EmissionColor:    math3d.Splat3(1),
				EmissionStrength: 1,
			},
		},
	}
}

// Load reads a scene file, choosing the format from its extension.
func Load(path string) (*Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadJSON(path)
	case ".glb", ".gltf":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("unsupported scene format: %s (use .json, .gltf or .glb)", ext)
	}
}

// Shapes returns the spheres as the renderer's shape list.
func (s *Scene) Shapes() []render.Shape {
	shapes := make([]render.Shape, len(s.Spheres))
	for i, sp := range s.Spheres {
		shapes[i] = sp
	}
	return shapes
}

// NewCamera creates a camera at the scene's starting placement.
func (s *Scene) NewCamera() (*render.Camera, error) {
	cam, err := render.NewCamera(s.Camera.Position, s.Camera.LookAt)
	if err != nil {
		return nil, fmt.Errorf("scene %s: camera: %w", s.Name, err)
	}
	return cam, nil
}
