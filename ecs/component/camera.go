package component

import "github.com/go-gl/mathgl/mgl64"

type Projection int

const (
	ProjectionPerspective Projection = iota + 1
	ProjectionOrthographic
	// ProjectionCustom uses Camera.Custom verbatim. Rays for custom cameras
	// are built by unprojecting the screen center.
	ProjectionCustom
)

func (p Projection) String() string {
	switch p {
	case ProjectionPerspective:
		return "perspective"
	case ProjectionOrthographic:
		return "orthographic"
	case ProjectionCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Camera describes the lens of a camera entity. The camera looks down its
// local -Z axis; position and orientation come from its Transform.
type Camera struct {
	Projection Projection
	FovY       float64 // radians
	Aspect     float64
	Near       float64
	Far        float64
	// OrthoHeight is the vertical extent of an orthographic view volume.
	OrthoHeight float64
	Custom      mgl64.Mat4

	ViewportWidth  int
	ViewportHeight int
}

var CameraComponent = NewComponent[Camera]()

// ProjectionMatrix returns the camera's projection matrix.
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	switch c.Projection {
	case ProjectionOrthographic:
		h := c.OrthoHeight / 2
		w := h * c.Aspect
		return mgl64.Ortho(-w, w, -h, h, c.Near, c.Far)
	case ProjectionCustom:
		return c.Custom
	default:
		return mgl64.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
	}
}
