package render

import (
	"errors"
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// ErrDegenerateCamera is returned when a camera basis cannot be built,
// e.g. because the eye and the look-at point coincide.
var ErrDegenerateCamera = errors.New("render: degenerate camera basis")

// Camera is a free-flying camera described by a position and an
// orthonormal basis derived from yaw and pitch.
//
// Direction points from the look-at target back towards the eye, so a
// point in front of the camera ends up with a positive view-space z.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orthonormal basis
	Direction math3d.Vec3
	Right     math3d.Vec3
	Up        math3d.Vec3

	// Orientation (degrees)
	Yaw   float64
	Pitch float64
}

// NewCamera creates a camera at position looking towards lookAt.
func NewCamera(position, lookAt math3d.Vec3) (*Camera, error) {
	if !position.IsFinite() || !lookAt.IsFinite() {
		return nil, ErrDegenerateCamera
	}
	if position == lookAt {
		return nil, ErrDegenerateCamera
	}

	c := &Camera{
		Position:  position,
		Direction: position.Sub(lookAt).Normalize(),
		Yaw:       -90,
		Pitch:     0,
	}
	if !c.updateBasis() {
		return nil, ErrDegenerateCamera
	}
	return c, nil
}

// updateBasis recomputes Right and Up from Direction. It reports false when
// Direction is parallel to the world up axis.
func (c *Camera) updateBasis() bool {
	right := math3d.Up().Cross(c.Direction)
	if right.LenSq() == 0 {
		return false
	}
	c.Right = right.Normalize()
	c.Up = c.Direction.Cross(c.Right).Normalize()
	return true
}

// SetOrientation adds the given yaw and pitch deltas (degrees) and rebuilds
// the basis from the resulting angles. Pitch is not clamped: past ±90° the
// up vector flips.
func (c *Camera) SetOrientation(yawDelta, pitchDelta float64) {
	c.Yaw += yawDelta
	c.Pitch += pitchDelta

	yaw := radians(c.Yaw)
	pitch := radians(c.Pitch)
	c.Direction = math3d.V3(
		math.Cos(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw)*math.Cos(pitch),
	)
	// A perfectly vertical direction keeps the previous Right and Up.
	c.updateBasis()
}

// MoveForward moves the camera towards what it is looking at (or backward if
// negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Sub(c.Direction.Normalize().Scale(distance))
}

// MoveRight strafes the camera to the right (or left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Sub(c.Right.Normalize().Scale(distance))
}

// MoveUp moves the camera along the world up axis.
func (c *Camera) MoveUp(distance float64) {
	c.Position.Y += distance
}

// Translate offsets the camera position by delta.
func (c *Camera) Translate(delta math3d.Vec3) {
	c.Position = c.Position.Add(delta)
}

// WorldToView returns the world-to-view transform. Its rotation rows are the
// camera basis (the transpose of the camera-to-world rotation, which is its
// inverse because the basis is orthonormal); the bottom row carries the
// negated position.
func (c *Camera) WorldToView() math3d.Mat4 {
	return math3d.FromRows(
		math3d.V4FromV3(c.Right, 0),
		math3d.V4FromV3(c.Up, 0),
		math3d.V4FromV3(c.Direction, 0),
		math3d.V4FromV3(c.Position.Negate(), 1),
	)
}

// ToViewSpace converts a world-space point into the camera's local frame.
func (c *Camera) ToViewSpace(p math3d.Vec3) math3d.Vec3 {
	v := c.View()
	return v.ToViewSpace(p)
}

// View captures the camera state for one frame.
func (c *Camera) View() View {
	return View{
		Matrix:   c.WorldToView(),
		Position: c.Position,
	}
}

// View is an immutable snapshot of a camera, taken once per frame so that
// every pixel of the frame sees the same transform.
type View struct {
	Matrix   math3d.Mat4
	Position math3d.Vec3
}

// ToViewSpace converts a world-space point into view space, where the eye is
// at the origin.
func (v *View) ToViewSpace(p math3d.Vec3) math3d.Vec3 {
	return v.Matrix.MulVec4(math3d.V4FromV3(v.Position.Sub(p), 1)).Vec3()
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
