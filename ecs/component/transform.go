package component

import "github.com/go-gl/mathgl/mgl64"

// Transform places an entity in world space. Reticle transforms are local to
// the session camera instead.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

var TransformComponent = NewComponent[Transform]()

// NewTransform returns an identity transform at pos.
func NewTransform(pos mgl64.Vec3) *Transform {
	return &Transform{
		Position: pos,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Orientation returns the rotation, treating the zero quaternion as identity.
func (t *Transform) Orientation() mgl64.Quat {
	if t.Rotation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation.Normalize()
}

// Matrix returns the local-to-world matrix (translate * rotate * scale).
func (t *Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Orientation().Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// MaxScale returns the largest absolute scale axis.
func (t *Transform) MaxScale() float64 {
	m := 0.0
	for _, s := range t.Scale {
		if s < 0 {
			s = -s
		}
		if s > m {
			m = s
		}
	}
	return m
}
