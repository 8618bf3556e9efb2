package gaze

// OverListener is notified when gaze enters an object.
type OverListener interface {
	OnGazeOver()
}

// OutListener is notified when gaze leaves an object.
type OutListener interface {
	OnGazeOut()
}

// LongListener is notified every gazing duration of continuous gaze.
type LongListener interface {
	OnGazeLong()
}

// ListenerFuncs adapts plain funcs to the listener interfaces. Nil funcs
// are skipped.
type ListenerFuncs struct {
	Over func()
	Out  func()
	Long func()
}

func (l ListenerFuncs) OnGazeOver() {
	if l.Over != nil {
		l.Over()
	}
}

func (l ListenerFuncs) OnGazeOut() {
	if l.Out != nil {
		l.Out()
	}
}

func (l ListenerFuncs) OnGazeLong() {
	if l.Long != nil {
		l.Long()
	}
}
