package system

import (
	"fmt"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
)

const defaultGazeLogSize = 64

// GazeSystem runs a gaze session once per frame and republishes the
// session's events on the world event queue. It also keeps a short text
// log of the transitions for display.
type GazeSystem struct {
	session *gaze.Session
	logSize int
	log     []string
}

func NewGazeSystem(session *gaze.Session) *GazeSystem {
	return &GazeSystem{session: session, logSize: defaultGazeLogSize}
}

func (gs *GazeSystem) Session() *gaze.Session {
	if gs == nil {
		return nil
	}
	return gs.session
}

// SetSession swaps the session driven by the system and clears the log.
func (gs *GazeSystem) SetSession(session *gaze.Session) {
	if gs == nil {
		return
	}
	gs.session = session
	gs.log = nil
}

func (gs *GazeSystem) Update(w *ecs.World) {
	if gs == nil || gs.session == nil {
		return
	}

	gs.session.Update()
	for _, evt := range gs.session.Events() {
		w.Events().Push(evt)
		gs.record(FormatGazeEvent(w, evt))
	}
}

// Log returns the most recent transitions, oldest first.
func (gs *GazeSystem) Log() []string {
	if gs == nil {
		return nil
	}
	out := make([]string, len(gs.log))
	copy(out, gs.log)
	return out
}

func (gs *GazeSystem) record(line string) {
	gs.log = append(gs.log, line)
	if gs.logSize > 0 && len(gs.log) > gs.logSize {
		gs.log = gs.log[len(gs.log)-gs.logSize:]
	}
}

// FormatGazeEvent renders a gaze event as "<elapsed> <type> <name>".
func FormatGazeEvent(w *ecs.World, evt ecs.Event) string {
	payload, ok := evt.Data.(gaze.GazeEvent)
	if !ok {
		return evt.Type
	}
	return fmt.Sprintf("%8.3fs %-9s %s", payload.Elapsed, evt.Type, EntityLabel(w, payload.Entity))
}

// EntityLabel returns the entity's name, or its handle when unnamed.
func EntityLabel(w *ecs.World, e ecs.Entity) string {
	if !e.Valid() {
		return "-"
	}
	if name, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && name.Value != "" {
		return name.Value
	}
	return e.String()
}
