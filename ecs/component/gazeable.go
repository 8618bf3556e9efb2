package component

// Gazeable marks an entity registered with a gaze session. Enabled is set by
// AddCollider and cleared by RemoveCollider; hosts may also clear it to
// disable an object without unregistering it. HitTime is the clock time the
// current gaze state began.
type Gazeable struct {
	Enabled bool
	HitTime float64
}

var GazeableComponent = NewComponent[Gazeable]()

// GazeListener holds whatever receives gaze callbacks for the entity. The
// handler may implement any subset of the gaze listener interfaces.
type GazeListener struct {
	Handler any
}

var GazeListenerComponent = NewComponent[GazeListener]()
