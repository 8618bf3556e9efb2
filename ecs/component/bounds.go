package component

import "github.com/go-gl/mathgl/mgl64"

// Bounds is the local-space volume used for gaze ray tests and frustum
// checks. A box is tested as an oriented box; everything else as a sphere.
type Bounds struct {
	Radius      float64
	Box         bool
	HalfExtents mgl64.Vec3
}

var BoundsComponent = NewComponent[Bounds]()

// BoundingRadius returns the local bounding sphere radius.
func (b *Bounds) BoundingRadius() float64 {
	if b.Radius > 0 {
		return b.Radius
	}
	if b.Box {
		return b.HalfExtents.Len()
	}
	return 0
}
