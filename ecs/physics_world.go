package ecs

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/reticulum/ecs/component"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeDrifter
)

const (
	defaultDriftMass       = 1.0
	defaultDriftElasticity = 1.0
	wallThickness          = 0.1
)

// PhysicsWorld is a Chipmunk space laid on the ground plane: cp X maps to
// world X and cp Y to world Z. It keeps drifting gazeable objects inside a
// square arena centred on the origin.
type PhysicsWorld struct {
	space      *cp.Space
	halfExtent float64

	shapeToEntity map[*cp.Shape]Entity
	bounces       map[Entity]int
}

// NewPhysicsWorld creates an arena with walls at ±halfExtent on X and Z.
func NewPhysicsWorld(halfExtent float64) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	space.SetDamping(1)

	pw := &PhysicsWorld{
		space:         space,
		halfExtent:    halfExtent,
		shapeToEntity: make(map[*cp.Shape]Entity),
		bounces:       make(map[Entity]int),
	}
	pw.buildWalls()
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) HalfExtent() float64 {
	if pw == nil {
		return 0
	}
	return pw.halfExtent
}

// EnsureBody creates the circle body for a drifting entity if needed.
func (pw *PhysicsWorld) EnsureBody(e Entity, t *component.Transform, radius float64, d *component.Drift, body *component.PhysicsBody) *component.PhysicsBody {
	if pw == nil || pw.space == nil || !e.Valid() || t == nil || d == nil {
		return body
	}
	if body != nil && body.Body != nil {
		return body
	}
	if radius <= 0 {
		radius = 0.5
	}

	mass := d.Mass
	if mass <= 0 {
		mass = defaultDriftMass
	}
	elasticity := d.Elasticity
	if elasticity <= 0 {
		elasticity = defaultDriftElasticity
	}

	cpBody := cp.NewBody(mass, math.Inf(1))
	cpBody.SetPosition(cp.Vector{X: t.Position.X(), Y: t.Position.Z()})
	cpBody.SetVelocity(d.VelocityX, d.VelocityZ)
	shape := cp.NewCircle(cpBody, radius, cp.Vector{})
	shape.SetElasticity(elasticity)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeDrifter)

	pw.space.AddBody(cpBody)
	pw.space.AddShape(shape)
	pw.shapeToEntity[shape] = e

	return &component.PhysicsBody{Body: cpBody, Shape: shape}
}

// RemoveBody takes a body out of the space.
func (pw *PhysicsWorld) RemoveBody(body *component.PhysicsBody) {
	if pw == nil || pw.space == nil || body == nil || body.Body == nil {
		return
	}
	if body.Shape != nil {
		if e, ok := pw.shapeToEntity[body.Shape]; ok {
			delete(pw.bounces, e)
		}
		delete(pw.shapeToEntity, body.Shape)
		pw.space.RemoveShape(body.Shape)
	}
	pw.space.RemoveBody(body.Body)
}

// Step advances the physics simulation.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	pw.space.Step(dt)
}

// Bounces returns how many times e has hit an arena wall.
func (pw *PhysicsWorld) Bounces(e Entity) int {
	if pw == nil {
		return 0
	}
	return pw.bounces[e]
}

func (pw *PhysicsWorld) buildWalls() {
	h := pw.halfExtent
	if h <= 0 {
		return
	}
	corners := []cp.Vector{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		shape := cp.NewSegment(pw.space.StaticBody, a, b, wallThickness)
		shape.SetElasticity(1)
		shape.SetFriction(0)
		shape.SetCollisionType(collisionTypeWall)
		pw.space.AddShape(shape)
	}
}

func (pw *PhysicsWorld) setupHandlers() {
	handler := pw.space.NewCollisionHandler(collisionTypeDrifter, collisionTypeWall)
	handler.UserData = pw
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*PhysicsWorld)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		if e, ok := world.shapeToEntity[shapeA]; ok {
			world.bounces[e]++
		} else if e, ok := world.shapeToEntity[shapeB]; ok {
			world.bounces[e]++
		}
		return true
	}
}
