package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/raycast/pkg/snapshot"
)

// mirrorScene is one non-emissive sphere straight ahead of the default
// camera.
const mirrorScene = `{
	"name": "mirror",
	"spheres": [{"center": [0, 0, 20], "radius": 5, "color": [1, 1, 1], "emission": 0}]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspectCenterPixel(t *testing.T) {
	scenePath := writeFile(t, "mirror.json", mirrorScene)

	out, err := execute(t, "inspect", "50", "50", "--json",
		"--scene", scenePath, "--width", "101", "--height", "101")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var resp inspectResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}

	if len(resp.Hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(resp.Hits), resp.Hits)
	}
	if math.Abs(resp.Hits[0].Distance-15) > 1e-9 {
		t.Errorf("distance = %v, want 15", resp.Hits[0].Distance)
	}
	if resp.RGBA != [4]uint8{51, 51, 51, 255} {
		t.Errorf("rgba = %v, want ambient", resp.RGBA)
	}
}

func TestInspectText(t *testing.T) {
	out, err := execute(t, "inspect", "0", "0", "--width", "4", "--height", "4")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "pixel (0, 0)") || !strings.Contains(out, "rgba") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInspectErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"outside frame", []string{"inspect", "10", "0", "--width", "4", "--height", "4"}},
		{"not a number", []string{"inspect", "x", "0"}},
		{"missing arg", []string{"inspect", "1"}},
		{"missing config", []string{"inspect", "0", "0", "--config", "/nonexistent.json"}},
		{"bad fov", []string{"inspect", "0", "0", "--fov", "200"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("command succeeded, want error")
			}
		})
	}
}

func TestSnapshotGolden(t *testing.T) {
	dir := t.TempDir()
	scenePath := writeFile(t, "mirror.json", mirrorScene)
	golden := filepath.Join(dir, "golden.png")

	args := []string{"snapshot", "--scene", scenePath, "--width", "16", "--height", "12", "--scale", "2"}
	if _, err := execute(t, append(args, "-o", golden)...); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	img, err := snapshot.Load(golden)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 32 || got.Y != 24 {
		t.Errorf("size = %v, want 32x24", got)
	}

	// Same scene renders identically.
	again := filepath.Join(dir, "again.webp")
	if _, err := execute(t, append(args, "-o", again, "--golden", golden)...); err != nil {
		t.Errorf("golden compare failed: %v", err)
	}

	// An emissive sphere brightens the center pixels.
	emissive := writeFile(t, "lamp.json", strings.Replace(mirrorScene, `"emission": 0`, `"emission": 1`, 1))
	args[2] = emissive
	if _, err := execute(t, append(args, "-o", filepath.Join(dir, "lamp.png"), "--golden", golden)...); err == nil {
		t.Error("compare against a different scene succeeded")
	}
}
