// Package config loads viewer settings from a JSON file and merges them with
// command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/taigrr/raycast/pkg/math3d"
	"github.com/taigrr/raycast/pkg/render"
)

// Config holds all render and driver settings.
type Config struct {
	// Render settings
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FOV        float64     `json:"fov"`
	NearClip   float64     `json:"near_clip"`
	MaxBounces *int        `json:"max_bounces,omitempty"` // nil means default; 0 is valid
	Ambient    *[3]float64 `json:"ambient,omitempty"`

	// Scene
	Scene  string        `json:"scene"`
	Camera *CameraConfig `json:"camera,omitempty"`

	// Driver settings
	FPS       int     `json:"fps"`
	MoveSpeed float64 `json:"move_speed"` // world units per frame
	TurnSpeed float64 `json:"turn_speed"` // degrees per frame

	// Snapshot settings
	Output string `json:"output"`
	Scale  int    `json:"scale"`
}

// CameraConfig overrides the camera a scene ships with.
type CameraConfig struct {
	Position [3]float64 `json:"position"`
	LookAt   [3]float64 `json:"look_at"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values (and -1 for Bounces) mean "not set".
type Flags struct {
	Width    int
	Height   int
	FOV      float64
	NearClip float64
	Bounces  int
	Scene    string
	FPS      int
	Output   string
	Scale    int
}

// Resolve applies flag overrides, then fills in defaults for anything still
// unset.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FOV > 0 {
		c.FOV = flags.FOV
	}
	if flags.NearClip > 0 {
		c.NearClip = flags.NearClip
	}
	if flags.Bounces >= 0 {
		b := flags.Bounces
		c.MaxBounces = &b
	}
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}

	// Defaults for render settings
	def := render.DefaultParams()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.FOV <= 0 {
		c.FOV = def.FOV
	}
	if c.NearClip <= 0 {
		c.NearClip = def.NearClip
	}
	if c.MaxBounces == nil {
		b := def.MaxBounces
		c.MaxBounces = &b
	}
	if c.Ambient == nil {
		c.Ambient = &[3]float64{def.Ambient.X, def.Ambient.Y, def.Ambient.Z}
	}

	// Defaults for driver settings
	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = 1
	}
	if c.TurnSpeed <= 0 {
		c.TurnSpeed = 1
	}
	if c.Output == "" {
		c.Output = "raycast.png"
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
}

// Params converts the render settings. Call Resolve first.
func (c *Config) Params() render.Params {
	p := render.DefaultParams()
	p.Width = c.Width
	p.Height = c.Height
	p.FOV = c.FOV
	p.NearClip = c.NearClip
	if c.MaxBounces != nil {
		p.MaxBounces = *c.MaxBounces
	}
	if c.Ambient != nil {
		p.Ambient = math3d.V3(c.Ambient[0], c.Ambient[1], c.Ambient[2])
	}
	return p
}

// CameraPoints returns the configured eye and look-at points, if any.
func (c *Config) CameraPoints() (position, lookAt math3d.Vec3, ok bool) {
	if c.Camera == nil {
		return math3d.Vec3{}, math3d.Vec3{}, false
	}
	p, l := c.Camera.Position, c.Camera.LookAt
	return math3d.V3(p[0], p[1], p[2]), math3d.V3(l[0], l[1], l[2]), true
}
