package render

import (
	"math"

	"github.com/taigrr/raycast/pkg/math3d"
)

// GenerateRay returns the view-space direction of the primary ray through
// pixel (x, y). The ray starts at the eye and passes through a point on the
// near plane; the result is not normalized.
//
// Pixel coordinates are mapped with x/(width-1), so the outermost pixels
// land exactly on the plane edges. A single-pixel axis maps to its center.
func GenerateRay(x, y, width, height int, nearClip, fovDegrees float64) math3d.Vec3 {
	aspect := float64(width) / float64(height)
	planeHeight := nearClip * math.Tan(radians(fovDegrees*0.5)) * 2
	planeWidth := planeHeight * aspect

	tx := unitCoord(x, width)
	ty := unitCoord(y, height)

	return math3d.V3(
		-planeWidth/2+planeWidth*tx,
		-planeHeight/2+planeHeight*ty,
		nearClip,
	)
}

func unitCoord(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / (float64(n) - 1)
}
