package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

const (
	defaultFrameTime = 1.0 / 60.0
	// maxPitch keeps the camera just short of straight up or down.
	maxPitch = math.Pi/2 - 0.01
)

// CameraSystem turns the rigged camera by its yaw/pitch rates and by any
// pointer movement queued with Look.
type CameraSystem struct {
	camEntity ecs.Entity
	dt        float64

	lookX float64
	lookY float64
}

// NewCameraSystem creates a camera system stepping dt seconds per Update.
func NewCameraSystem(dt float64) *CameraSystem {
	if dt <= 0 {
		dt = defaultFrameTime
	}
	return &CameraSystem{dt: dt}
}

// Look queues a pointer delta in pixels for the next Update. Positive dx
// turns right, positive dy looks down.
func (cs *CameraSystem) Look(dx, dy float64) {
	if cs == nil {
		return
	}
	cs.lookX += dx
	cs.lookY += dy
}

// Update writes the rig's yaw and pitch into the camera transform.
func (cs *CameraSystem) Update(w *ecs.World) {
	if cs == nil || w == nil {
		return
	}

	if !cs.camEntity.Valid() || !ecs.IsAlive(w, cs.camEntity) {
		camEntity, ok := ecs.First(w, component.CameraRigComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
	}

	rig, ok := ecs.Get(w, cs.camEntity, component.CameraRigComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, cs.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	rig.Yaw += rig.YawRate*cs.dt - cs.lookX*rig.Sensitivity
	rig.Pitch += rig.PitchRate*cs.dt - cs.lookY*rig.Sensitivity
	cs.lookX, cs.lookY = 0, 0

	rig.Yaw = math.Remainder(rig.Yaw, 2*math.Pi)
	rig.Pitch = mgl64.Clamp(rig.Pitch, -maxPitch, maxPitch)

	t.Rotation = RigOrientation(rig.Yaw, rig.Pitch)
}

// RigOrientation returns the camera rotation for yaw about world Y followed
// by pitch about the camera's X axis.
func RigOrientation(yaw, pitch float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0}))
}
