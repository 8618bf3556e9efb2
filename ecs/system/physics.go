package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

// PhysicsSystem moves drifting entities through the world's physics arena.
// Bodies are created on first sight and removed once their entity dies or
// loses its Drift.
type PhysicsSystem struct {
	dt float64

	physics  *ecs.PhysicsWorld
	entities map[ecs.Entity]*component.PhysicsBody
}

// NewPhysicsSystem creates a physics system stepping dt seconds per Update.
func NewPhysicsSystem(dt float64) *PhysicsSystem {
	if dt <= 0 {
		dt = defaultFrameTime
	}
	return &PhysicsSystem{
		dt:       dt,
		entities: make(map[ecs.Entity]*component.PhysicsBody),
	}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	if pw != ps.physics {
		// bodies of a previous arena belong to its space
		ps.physics = pw
		ps.entities = make(map[ecs.Entity]*component.PhysicsBody)
	}

	for e, body := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.DriftComponent.Kind()) {
			continue
		}
		pw.RemoveBody(body)
		ecs.Remove(w, e, component.PhysicsBodyComponent.Kind())
		delete(ps.entities, e)
	}

	ecs.ForEach2(w, component.DriftComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, d *component.Drift, t *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		radius := 0.0
		if b, ok := ecs.Get(w, e, component.BoundsComponent.Kind()); ok {
			radius = b.BoundingRadius() * t.MaxScale()
		}
		body := pw.EnsureBody(e, t, radius, d, nil)
		if body == nil {
			return
		}
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body); err != nil {
			pw.RemoveBody(body)
			return
		}
		ps.entities[e] = body
	})

	pw.Step(ps.dt)

	for e, body := range ps.entities {
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok || body.Body == nil {
			continue
		}
		p := body.Body.Position()
		t.Position = mgl64.Vec3{p.X, t.Position.Y(), p.Y}

		if d, ok := ecs.Get(w, e, component.DriftComponent.Kind()); ok {
			v := body.Body.Velocity()
			d.VelocityX, d.VelocityZ = v.X, v.Y
		}
	}
}

// Tracked reports whether e currently has a body in the arena.
func (ps *PhysicsSystem) Tracked(e ecs.Entity) bool {
	if ps == nil {
		return false
	}
	_, ok := ps.entities[e]
	return ok
}
