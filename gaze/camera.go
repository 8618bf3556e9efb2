package gaze

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

var (
	ErrInvalidCamera = errors.New("gaze: camera was not correctly defined")
	errNoRay         = errors.New("gaze: cannot build a ray for this camera")
)

// RayMode is how the screen-center ray is built for a camera. It is
// resolved once per session.
type RayMode int

const (
	// RayDirect builds the ray from the camera's own lens parameters.
	RayDirect RayMode = iota + 1
	// RayUnproject unprojects the screen center through the full
	// view-projection matrix. Used for cameras with a custom projection.
	RayUnproject
)

func (m RayMode) String() string {
	switch m {
	case RayDirect:
		return "direct"
	case RayUnproject:
		return "unproject"
	default:
		return "unknown"
	}
}

// RayModeFor reports which ray strategy a camera supports.
func RayModeFor(cam *component.Camera) (RayMode, error) {
	if cam == nil {
		return 0, ErrInvalidCamera
	}
	switch cam.Projection {
	case component.ProjectionPerspective, component.ProjectionOrthographic:
		return RayDirect, nil
	case component.ProjectionCustom:
		return RayUnproject, nil
	default:
		return 0, fmt.Errorf("%w: unknown projection %d", ErrInvalidCamera, cam.Projection)
	}
}

// validateCamera checks that e is a usable camera entity.
func validateCamera(w *ecs.World, e ecs.Entity) (*component.Camera, *component.Transform, RayMode, error) {
	if !ecs.IsAlive(w, e) {
		return nil, nil, 0, fmt.Errorf("%w: entity %s is not alive", ErrInvalidCamera, e)
	}
	cam, ok := ecs.Get(w, e, component.CameraComponent.Kind())
	if !ok {
		return nil, nil, 0, fmt.Errorf("%w: entity %s has no camera component", ErrInvalidCamera, e)
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return nil, nil, 0, fmt.Errorf("%w: entity %s has no transform", ErrInvalidCamera, e)
	}
	mode, err := RayModeFor(cam)
	if err != nil {
		return nil, nil, 0, err
	}
	return cam, t, mode, nil
}

// ViewMatrix returns the world-to-camera matrix. Camera scale is ignored.
func ViewMatrix(t *component.Transform) mgl64.Mat4 {
	p := t.Position
	return t.Orientation().Conjugate().Mat4().Mul4(mgl64.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// CenterRay builds the gaze ray through the screen center.
func CenterRay(cam *component.Camera, t *component.Transform, mode RayMode) (Ray, error) {
	switch mode {
	case RayDirect:
		return directRay(cam, t)
	case RayUnproject:
		return unprojectRay(cam, t)
	default:
		return Ray{}, errNoRay
	}
}

func directRay(cam *component.Camera, t *component.Transform) (Ray, error) {
	q := t.Orientation()
	if cam.Projection == component.ProjectionOrthographic {
		// parallel rays start on the near plane
		origin := t.Position.Add(q.Rotate(mgl64.Vec3{0, 0, -cam.Near}))
		return Ray{Origin: origin, Direction: q.Rotate(mgl64.Vec3{0, 0, -1}).Normalize()}, nil
	}

	p := cam.ProjectionMatrix().Inv().Mul4x1(mgl64.Vec4{0, 0, 0.5, 1})
	if p.W() == 0 {
		return Ray{}, errNoRay
	}
	local := p.Vec3().Mul(1 / p.W())
	if local.Len() == 0 {
		return Ray{}, errNoRay
	}
	return Ray{Origin: t.Position, Direction: q.Rotate(local).Normalize()}, nil
}

func unprojectRay(cam *component.Camera, t *component.Transform) (Ray, error) {
	w, h := cam.ViewportWidth, cam.ViewportHeight
	if w <= 0 || h <= 0 {
		w, h = 2, 2
	}
	center := mgl64.Vec3{float64(w) / 2, float64(h) / 2, 0.5}
	obj, err := mgl64.UnProject(center, ViewMatrix(t), cam.ProjectionMatrix(), 0, 0, w, h)
	if err != nil {
		return Ray{}, fmt.Errorf("%w: %v", errNoRay, err)
	}
	dir := obj.Sub(t.Position)
	if dir.Len() == 0 {
		return Ray{}, errNoRay
	}
	return Ray{Origin: t.Position, Direction: dir.Normalize()}, nil
}

// ViewProjection returns projection * view for a camera entity's lens and
// transform.
func ViewProjection(cam *component.Camera, t *component.Transform) mgl64.Mat4 {
	return cam.ProjectionMatrix().Mul4(ViewMatrix(t))
}

// WorldToScreen projects a world point into a width x height viewport with
// the origin at the top left. Points behind the camera report false.
func WorldToScreen(viewProjection mgl64.Mat4, p mgl64.Vec3, width, height float64) (x, y float64, ok bool) {
	clip := viewProjection.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * width
	y = (1 - ndc.Y()) / 2 * height
	return x, y, true
}
