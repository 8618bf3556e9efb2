package gaze

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

// Plane is n·p + D = 0 with a unit normal pointing into the frustum.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

func (p Plane) Distance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the left, right, bottom, top, near and far planes.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the clip planes of a view-projection matrix.
func NewFrustum(viewProjection mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := viewProjection.Rows()
	raw := [6]mgl64.Vec4{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	}
	var f Frustum
	for i, v := range raw {
		n := mgl64.Vec3{v[0], v[1], v[2]}
		l := n.Len()
		if l == 0 {
			continue
		}
		f.Planes[i] = Plane{Normal: n.Mul(1 / l), D: v[3] / l}
	}
	return f
}

// CameraFrustum recomputes the camera frustum from its current lens and
// transform.
func CameraFrustum(w *ecs.World, camera ecs.Entity) (Frustum, bool) {
	cam, ok := ecs.Get(w, camera, component.CameraComponent.Kind())
	if !ok {
		return Frustum{}, false
	}
	t, ok := ecs.Get(w, camera, component.TransformComponent.Kind())
	if !ok {
		return Frustum{}, false
	}
	return NewFrustum(ViewProjection(cam, t)), true
}

// IntersectsSphere reports whether the sphere touches the frustum.
func (f Frustum) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	for _, p := range f.Planes {
		if p.Distance(center) < -radius {
			return false
		}
	}
	return true
}

// AnyGazeableVisible reports whether any enabled registry entity's bounding
// sphere is inside the camera frustum. It stops at the first one found.
func AnyGazeableVisible(w *ecs.World, registry *Registry, camera ecs.Entity) bool {
	f, ok := CameraFrustum(w, camera)
	if !ok {
		return false
	}
	for _, e := range registry.Entities() {
		g, ok := ecs.Get(w, e, component.GazeableComponent.Kind())
		if !ok || !g.Enabled {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		b, ok := ecs.Get(w, e, component.BoundsComponent.Kind())
		if !ok {
			continue
		}
		if f.IntersectsSphere(t.Position, b.BoundingRadius()*t.MaxScale()) {
			return true
		}
	}
	return false
}
