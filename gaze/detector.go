package gaze

import (
	"log"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

type TransitionKind int

const (
	TransitionExit TransitionKind = iota + 1
	TransitionEnter
	TransitionSustain
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionExit:
		return "exit"
	case TransitionEnter:
		return "enter"
	case TransitionSustain:
		return "sustain"
	default:
		return "unknown"
	}
}

// Transition is one gaze state change, in firing order.
type Transition struct {
	Kind   TransitionKind
	Entity ecs.Entity
}

// Hit is the nearest registry entity under the gaze ray.
type Hit struct {
	Entity   ecs.Entity
	Distance float64
}

// Detector casts the screen-center ray against the registry and decides
// gaze transitions.
type Detector struct {
	world    *ecs.World
	registry *Registry
	camera   ecs.Entity
	mode     RayMode

	rayFailed bool
}

func NewDetector(w *ecs.World, registry *Registry, camera ecs.Entity, mode RayMode) *Detector {
	return &Detector{world: w, registry: registry, camera: camera, mode: mode}
}

// Mode returns the ray strategy in use.
func (d *Detector) Mode() RayMode {
	return d.mode
}

// CastRay builds this frame's gaze ray. Failures are logged once.
func (d *Detector) CastRay() (Ray, bool) {
	cam, ok := ecs.Get(d.world, d.camera, component.CameraComponent.Kind())
	if !ok {
		return Ray{}, false
	}
	t, ok := ecs.Get(d.world, d.camera, component.TransformComponent.Kind())
	if !ok {
		return Ray{}, false
	}
	ray, err := CenterRay(cam, t, d.mode)
	if err != nil {
		if !d.rayFailed {
			log.Printf("gaze: camera %s: %v", d.camera, err)
			d.rayFailed = true
		}
		return Ray{}, false
	}
	d.rayFailed = false
	return ray, true
}

// Nearest returns the closest registry entity hit by ray. Ties keep
// registry order. Disabled entities are still hit so they occlude.
func (d *Detector) Nearest(ray Ray) (Hit, bool) {
	best := Hit{}
	found := false
	for _, e := range d.registry.Entities() {
		t, ok := ecs.Get(d.world, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		b, ok := ecs.Get(d.world, e, component.BoundsComponent.Kind())
		if !ok {
			continue
		}
		dist, ok := IntersectBounds(ray, t, b)
		if !ok {
			continue
		}
		if !found || dist < best.Distance {
			best = Hit{Entity: e, Distance: dist}
			found = true
		}
	}
	return best, found
}

// Detect runs one detection pass from current and returns the new current
// target (0 for none) with the transitions to dispatch.
func (d *Detector) Detect(current ecs.Entity) (ecs.Entity, []Transition) {
	var hit Hit
	ok := false
	if ray, rayOK := d.CastRay(); rayOK {
		hit, ok = d.Nearest(ray)
	}

	if !ok {
		if current.Valid() {
			return 0, []Transition{{Kind: TransitionExit, Entity: current}}
		}
		return 0, nil
	}

	if hit.Entity == current {
		return current, []Transition{{Kind: TransitionSustain, Entity: current}}
	}

	var out []Transition
	if current.Valid() {
		out = append(out, Transition{Kind: TransitionExit, Entity: current})
	}
	if !d.enabled(hit.Entity) {
		return 0, out
	}
	return hit.Entity, append(out, Transition{Kind: TransitionEnter, Entity: hit.Entity})
}

func (d *Detector) enabled(e ecs.Entity) bool {
	g, ok := ecs.Get(d.world, e, component.GazeableComponent.Kind())
	return ok && g.Enabled
}
