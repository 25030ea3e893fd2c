// Package logging provides the minimal logger the viewer components accept.
package logging

import (
	"io"
	"log"
	"time"
)

// Logger is the printf-style sink used across the drivers.
type Logger interface {
	Printf(format string, args ...any)
}

// New returns a Logger writing timestamped lines to w.
func New(w io.Writer) Logger {
	return log.New(w, "raycast: ", log.LstdFlags)
}

// Discard drops every message.
var Discard Logger = discard{}

type discard struct{}

func (discard) Printf(string, ...any) {}

// FPSCounter measures frames per second over one-second windows.
type FPSCounter struct {
	frames int
	start  time.Time
	fps    float64
}

// Tick records a frame at now and reports whether a new fps value is
// available.
func (c *FPSCounter) Tick(now time.Time) bool {
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++
	elapsed := now.Sub(c.start)
	if elapsed < time.Second {
		return false
	}
	c.fps = float64(c.frames) / elapsed.Seconds()
	c.frames = 0
	c.start = now
	return true
}

// FPS returns the last measured frame rate.
func (c *FPSCounter) FPS() float64 {
	return c.fps
}
