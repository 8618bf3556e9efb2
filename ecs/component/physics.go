package component

import "github.com/jakecoffman/cp"

// Drift moves an entity across the ground (XZ) plane inside the physics
// arena. Velocities are world units per second.
type Drift struct {
	VelocityX  float64
	VelocityZ  float64
	Mass       float64
	Elasticity float64
}

var DriftComponent = NewComponent[Drift]()

// PhysicsBody stores the Chipmunk runtime objects backing a Drift.
type PhysicsBody struct {
	Body  *cp.Body
	Shape *cp.Shape
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
