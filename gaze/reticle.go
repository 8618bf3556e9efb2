package gaze

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/common"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

// DepthAndScale places a camera-childed reticle at distance in front of the
// camera and returns the uniform scale that keeps its apparent size
// constant. cameraZ is the camera's Z in the reticle's parent frame.
func DepthAndScale(distance, cameraZ float64) (z, scale float64) {
	z = -math.Abs(distance)
	scale = math.Abs(cameraZ-z) - math.Abs(cameraZ)
	return z, scale
}

// Reticle drives the crosshair entity. With an inactive config no entity
// exists and every method is a no-op.
type Reticle struct {
	world  *ecs.World
	camera ecs.Entity
	entity ecs.Entity
	cfg    component.ReticleConfig
}

func newReticle(w *ecs.World, camera ecs.Entity, cfg component.ReticleConfig) (*Reticle, error) {
	r := &Reticle{world: w, camera: camera, cfg: cfg}
	if !cfg.Active {
		return r, nil
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.ReticleTagComponent.Kind(), &component.ReticleTag{}); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: "reticle"}); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{})); err != nil {
		return nil, err
	}
	if err := ecs.Add(w, e, component.ReticleComponent.Kind(), &component.Reticle{Config: cfg, Visible: cfg.Visible}); err != nil {
		return nil, err
	}
	morph := &component.Morph{
		Base:       component.NewRing(cfg.InnerRadius, cfg.OuterRadius),
		Targets:    []component.RingGeometry{component.NewRing(cfg.InnerRadiusTo, cfg.OuterRadiusTo)},
		Influences: []float64{0},
	}
	if err := ecs.Add(w, e, component.MorphComponent.Kind(), morph); err != nil {
		return nil, err
	}
	r.entity = e
	r.ResetDepth()
	return r, nil
}

func (r *Reticle) Active() bool {
	return r != nil && r.cfg.Active
}

func (r *Reticle) Animate() bool {
	return r.Active() && r.cfg.Animate
}

// Config returns the resolved reticle configuration.
func (r *Reticle) Config() component.ReticleConfig {
	return r.cfg
}

// Entity returns the crosshair entity when the reticle is active.
func (r *Reticle) Entity() (ecs.Entity, bool) {
	if !r.Active() {
		return 0, false
	}
	return r.entity, true
}

func (r *Reticle) state() (*component.Reticle, bool) {
	if !r.Active() {
		return nil, false
	}
	return ecs.Get(r.world, r.entity, component.ReticleComponent.Kind())
}

// SetDepthAndScale moves the crosshair to distance along the view axis. The
// crosshair transform is camera-local, so the camera sits at the origin of
// its frame. Orthographic views do not shrink with depth and keep the
// crosshair at a fixed scale.
func (r *Reticle) SetDepthAndScale(distance float64) {
	if !r.Active() {
		return
	}
	t, ok := ecs.Get(r.world, r.entity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	z, scale := DepthAndScale(distance, 0)
	if cam, ok := ecs.Get(r.world, r.camera, component.CameraComponent.Kind()); ok && cam.Projection == component.ProjectionOrthographic {
		scale = OrthoScale(cam)
	}
	t.Position = mgl64.Vec3{0, 0, z}
	t.Scale = mgl64.Vec3{scale, scale, scale}
}

// OrthoScale is the crosshair scale under an orthographic camera: half the
// view height, the size the ring has in a 90 degree perspective view.
func OrthoScale(cam *component.Camera) float64 {
	if cam == nil || cam.OrthoHeight <= 0 {
		return 1
	}
	return cam.OrthoHeight / 2
}

// ResetDepth puts the crosshair back at the configured far distance.
func (r *Reticle) ResetDepth() {
	r.SetDepthAndScale(r.cfg.Far)
}

func (r *Reticle) SetHit(hit bool) {
	if s, ok := r.state(); ok {
		s.Hit = hit
	}
}

func (r *Reticle) Hit() bool {
	s, ok := r.state()
	return ok && s.Hit
}

func (r *Reticle) MoveSpeed() float64 {
	if s, ok := r.state(); ok {
		return s.MoveSpeed
	}
	return 0
}

func (r *Reticle) SetVisible(visible bool) {
	if s, ok := r.state(); ok {
		s.Visible = visible
	}
}

func (r *Reticle) Visible() bool {
	s, ok := r.state()
	return ok && s.Visible
}

// Update steps the hit animation by delta seconds.
func (r *Reticle) Update(delta float64) {
	s, ok := r.state()
	if !ok {
		return
	}
	accel := delta * r.cfg.Speed
	if s.Hit {
		s.MoveSpeed = common.Clamp01(s.MoveSpeed + accel)
	} else {
		s.MoveSpeed = common.Clamp01(s.MoveSpeed - accel)
	}
	if m, ok := ecs.Get(r.world, r.entity, component.MorphComponent.Kind()); ok && len(m.Influences) > 0 {
		m.Influences[0] = s.MoveSpeed
	}
}

func (r *Reticle) destroy() {
	if r.Active() {
		ecs.DestroyEntity(r.world, r.entity)
	}
}
