// Package render implements the ray caster: camera frame, shapes, ray
// generation, the per-pixel bounce loop and the RGBA framebuffer it writes.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// BytesPerPixel is the size of one packed RGBA8 pixel.
const BytesPerPixel = 4

// Framebuffer is a tightly packed RGBA8 pixel buffer, row-major with the top
// row first. It shares the memory layout of image.RGBA.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []byte // len(Pix) == Width*Height*4
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	i := (y*fb.Width + x) * BytesPerPixel
	return color.RGBA{fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3]}
}

// Image returns the framebuffer as an *image.RGBA sharing the same memory.
func (fb *Framebuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Pix,
		Stride: fb.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

// WritePixel stores a linear color at (x, y) of a frame that is width
// pixels wide. Alpha is always opaque.
func WritePixel(frame []byte, x, y, width int, c math3d.Vec3) {
	offset := y*BytesPerPixel*width + BytesPerPixel*x
	frame[offset] = ToByte(c.X)
	frame[offset+1] = ToByte(c.Y)
	frame[offset+2] = ToByte(c.Z)
	frame[offset+3] = 0xff
}

// ToByte scales a linear channel value to 0-255, truncating toward zero.
// Out-of-range values saturate and NaN maps to 0.
func ToByte(c float64) uint8 {
	v := c * 255
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
