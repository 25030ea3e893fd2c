// Package control turns held keys into smooth camera motion.
//
// Each motion axis is driven by a harmonica spring: pressing a key sets the
// axis' target velocity, releasing it sets the target back to zero, and the
// spring eases the actual velocity towards the target every frame.
package control

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/raycast/pkg/render"
)

// Action is a camera motion a key can drive.
type Action int

const (
	Forward Action = iota
	Back
	StrafeLeft
	StrafeRight
	Rise
	Sink
	YawLeft
	YawRight
	PitchUp
	PitchDown

	numActions
)

var actionNames = [numActions]string{
	"forward", "back", "left", "right", "up", "down",
	"yaw-left", "yaw-right", "pitch-up", "pitch-down",
}

func (a Action) String() string {
	if a < 0 || a >= numActions {
		return "unknown"
	}
	return actionNames[a]
}

// TerminalBindings maps terminal key names to actions. Terminals do not
// report a bare shift key, so e/q also move up and down.
var TerminalBindings = map[string]Action{
	"w":     Forward,
	"s":     Back,
	"a":     StrafeLeft,
	"d":     StrafeRight,
	"space": Rise,
	"e":     Rise,
	"q":     Sink,
	"left":  YawLeft,
	"right": YawRight,
	"up":    PitchUp,
	"down":  PitchDown,
}

// stopEpsilon is the velocity below which an axis counts as at rest.
const stopEpsilon = 1e-4

// Axis is one motion axis whose velocity is eased towards a target.
type Axis struct {
	Velocity float64
	target   float64
	spring   harmonica.Spring
	accel    float64 // internal spring velocity (for animating Velocity)
}

// NewAxis creates an axis stepped at fps frames per second.
func NewAxis(fps int) Axis {
	return Axis{
		// Frequency 6.0 = quick response, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update advances the spring one frame and returns the new velocity.
func (a *Axis) Update() float64 {
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, a.target)
	if a.target == 0 && math.Abs(a.Velocity) < stopEpsilon && math.Abs(a.accel) < stopEpsilon {
		a.Velocity, a.accel = 0, 0
	}
	return a.Velocity
}

// Controller applies key-driven motion to a camera once per frame. It is
// owned by the frame loop and is not safe for concurrent use.
type Controller struct {
	Move, Strafe, Lift Axis // world units per frame
	Yaw, Pitch         Axis // degrees per frame

	// held counts remaining frames per action; -1 means held until released.
	held [numActions]int

	moveSpeed float64
	turnSpeed float64
	fps       int
}

// New creates a controller. moveSpeed is in world units per frame, turnSpeed
// in degrees per frame, both at full velocity.
func New(fps int, moveSpeed, turnSpeed float64) *Controller {
	if fps <= 0 {
		fps = 60
	}
	c := &Controller{moveSpeed: moveSpeed, turnSpeed: turnSpeed, fps: fps}
	c.Reset()
	return c
}

// Reset stops all motion and releases every key.
func (c *Controller) Reset() {
	c.Move = NewAxis(c.fps)
	c.Strafe = NewAxis(c.fps)
	c.Lift = NewAxis(c.fps)
	c.Yaw = NewAxis(c.fps)
	c.Pitch = NewAxis(c.fps)
	c.held = [numActions]int{}
}

// Press holds an action until Release is called.
func (c *Controller) Press(a Action) {
	if a >= 0 && a < numActions {
		c.held[a] = -1
	}
}

// Release lets go of an action.
func (c *Controller) Release(a Action) {
	if a >= 0 && a < numActions {
		c.held[a] = 0
	}
}

// Set presses or releases an action, for drivers that poll key state.
func (c *Controller) Set(a Action, down bool) {
	if down {
		c.Press(a)
	} else {
		c.Release(a)
	}
}

// Hold keeps an action held for the given number of frames. Drivers that
// only see key presses (and auto-repeat) use it instead of Press.
func (c *Controller) Hold(a Action, frames int) {
	if a < 0 || a >= numActions || c.held[a] < 0 {
		return
	}
	c.held[a] = max(c.held[a], frames)
}

// Held reports whether an action is currently held.
func (c *Controller) Held(a Action) bool {
	return a >= 0 && a < numActions && c.held[a] != 0
}

func (c *Controller) axisTarget(neg, pos Action, speed float64) float64 {
	var t float64
	if c.Held(pos) {
		t += speed
	}
	if c.Held(neg) {
		t -= speed
	}
	return t
}

// Step advances every axis one frame and moves cam by the resulting
// velocities. It reports whether the camera changed.
func (c *Controller) Step(cam *render.Camera) bool {
	c.Move.target = c.axisTarget(Back, Forward, c.moveSpeed)
	c.Strafe.target = c.axisTarget(StrafeLeft, StrafeRight, c.moveSpeed)
	c.Lift.target = c.axisTarget(Sink, Rise, c.moveSpeed)
	c.Yaw.target = c.axisTarget(YawLeft, YawRight, c.turnSpeed)
	// Up arrow tilts the view up, which is a negative pitch delta.
	c.Pitch.target = c.axisTarget(PitchDown, PitchUp, -c.turnSpeed)

	for i, n := range c.held {
		if n > 0 {
			c.held[i] = n - 1
		}
	}

	move := c.Move.Update()
	strafe := c.Strafe.Update()
	lift := c.Lift.Update()
	yaw := c.Yaw.Update()
	pitch := c.Pitch.Update()

	if move == 0 && strafe == 0 && lift == 0 && yaw == 0 && pitch == 0 {
		return false
	}

	if move != 0 {
		cam.MoveForward(move)
	}
	if strafe != 0 {
		cam.MoveRight(strafe)
	}
	if lift != 0 {
		cam.MoveUp(lift)
	}
	if yaw != 0 || pitch != 0 {
		cam.SetOrientation(yaw, pitch)
	}
	return true
}

// Moving reports whether the next Step can move the camera: an action is
// held or an axis still has velocity.
func (c *Controller) Moving() bool {
	for _, n := range c.held {
		if n != 0 {
			return true
		}
	}
	for _, a := range []*Axis{&c.Move, &c.Strafe, &c.Lift, &c.Yaw, &c.Pitch} {
		if a.Velocity != 0 || a.target != 0 {
			return true
		}
	}
	return false
}
