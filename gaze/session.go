package gaze

import (
	"fmt"
	"log"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

// Event types queued for each dispatched transition.
const (
	EventGazeOver = "gaze_over"
	EventGazeOut  = "gaze_out"
	EventGazeLong = "gaze_long"
)

// GazeEvent is the payload of a queued gaze event.
type GazeEvent struct {
	Entity  ecs.Entity
	Elapsed float64
}

// Session ties one camera, a registry of gazeable entities and a reticle to
// an ECS world. Call Init once the camera exists, then Update every frame.
type Session struct {
	world    *ecs.World
	clock    *Clock
	registry *Registry
	events   ecs.EventQueue

	settings Settings
	detector *Detector
	reticle  *Reticle
	current  ecs.Entity
	ready    bool
}

// NewSession creates an inert session on w. A nil clock uses the process
// clock.
func NewSession(w *ecs.World, clock *Clock) *Session {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Session{world: w, clock: clock, registry: NewRegistry()}
}

// Init binds the session to a camera entity. On an invalid camera it logs,
// returns an error wrapping ErrInvalidCamera and leaves the session inert.
// Calling Init again rebinds the session; the current target is exited and
// the old reticle is destroyed first.
func (s *Session) Init(camera ecs.Entity, opts Options) error {
	cam, _, mode, err := validateCamera(s.world, camera)
	if err != nil {
		log.Printf("reticulum: camera was not correctly defined. Unable to initialize: %v", err)
		s.teardown()
		return fmt.Errorf("init session: %w", err)
	}
	s.teardown()

	reticle, err := newReticle(s.world, camera, opts.Reticle.config(cam))
	if err != nil {
		return fmt.Errorf("init session: create reticle: %w", err)
	}

	s.settings = opts.settings(camera)
	s.reticle = reticle
	s.detector = NewDetector(s.world, s.registry, camera, mode)
	s.clock.Reset()
	s.ready = true
	return nil
}

func (s *Session) teardown() {
	if s.ready && s.current.Valid() {
		s.dispatch(Transition{Kind: TransitionExit, Entity: s.current}, s.clock.Elapsed())
	}
	s.current = 0
	if s.reticle != nil {
		s.reticle.destroy()
		s.reticle = nil
	}
	s.detector = nil
	s.ready = false
}

// AddCollider makes e gazeable. The Gazeable component is created when
// missing and enabled either way. Adding twice is a no-op on the registry.
func (s *Session) AddCollider(e ecs.Entity) error {
	g, ok := ecs.Get(s.world, e, component.GazeableComponent.Kind())
	if ok {
		g.Enabled = true
	} else if err := ecs.Add(s.world, e, component.GazeableComponent.Kind(), &component.Gazeable{Enabled: true}); err != nil {
		return fmt.Errorf("add collider %s: %w", e, err)
	}
	s.registry.Add(e)
	return nil
}

// RemoveCollider disables e and drops it from the registry. Unknown entities
// are ignored. A current target is exited by the next Update, not here.
func (s *Session) RemoveCollider(e ecs.Entity) {
	if g, ok := ecs.Get(s.world, e, component.GazeableComponent.Kind()); ok {
		g.Enabled = false
	}
	s.registry.Remove(e)
}

// Update runs one frame: detection and callbacks, then the proximity check,
// then the reticle animation. It does nothing before a successful Init.
func (s *Session) Update() {
	if !s.ready {
		return
	}
	delta := s.clock.Delta()
	elapsed := s.clock.Elapsed()

	next, transitions := s.detector.Detect(s.current)
	s.current = next
	for _, tr := range transitions {
		s.dispatch(tr, elapsed)
	}

	if s.settings.Proximity && s.reticle.Active() {
		s.reticle.SetVisible(AnyGazeableVisible(s.world, s.registry, s.settings.Camera))
	}

	if s.reticle.Animate() {
		s.reticle.Update(delta)
	}
}

func (s *Session) dispatch(tr Transition, elapsed float64) {
	g, _ := ecs.Get(s.world, tr.Entity, component.GazeableComponent.Kind())
	handler := s.handler(tr.Entity)

	switch tr.Kind {
	case TransitionEnter:
		if g != nil {
			g.HitTime = elapsed
		}
		if s.reticle.Active() {
			s.reticle.SetDepthAndScale(s.surfaceDistance(tr.Entity))
			s.reticle.SetHit(true)
		}
		if l, ok := handler.(OverListener); ok {
			l.OnGazeOver()
		}
		s.push(EventGazeOver, tr.Entity, elapsed)
	case TransitionExit:
		if g != nil {
			g.HitTime = 0
		}
		if s.reticle.Active() {
			s.reticle.SetHit(false)
			s.reticle.ResetDepth()
		}
		if l, ok := handler.(OutListener); ok {
			l.OnGazeOut()
		}
		s.push(EventGazeOut, tr.Entity, elapsed)
	case TransitionSustain:
		if g == nil || elapsed-g.HitTime < s.settings.GazingDuration {
			return
		}
		if l, ok := handler.(LongListener); ok {
			l.OnGazeLong()
		}
		g.HitTime = elapsed
		s.push(EventGazeLong, tr.Entity, elapsed)
	}
}

func (s *Session) handler(e ecs.Entity) any {
	if l, ok := ecs.Get(s.world, e, component.GazeListenerComponent.Kind()); ok {
		return l.Handler
	}
	return nil
}

// surfaceDistance is the camera-to-center distance less the world bounding
// radius.
func (s *Session) surfaceDistance(e ecs.Entity) float64 {
	camT, ok := ecs.Get(s.world, s.settings.Camera, component.TransformComponent.Kind())
	if !ok {
		return 0
	}
	t, ok := ecs.Get(s.world, e, component.TransformComponent.Kind())
	if !ok {
		return 0
	}
	d := camT.Position.Sub(t.Position).Len()
	if b, ok := ecs.Get(s.world, e, component.BoundsComponent.Kind()); ok {
		d -= b.BoundingRadius() * t.MaxScale()
	}
	return d
}

func (s *Session) push(kind string, e ecs.Entity, elapsed float64) {
	s.events.Push(ecs.Event{Type: kind, Data: GazeEvent{Entity: e, Elapsed: elapsed}})
}

// Events drains the gaze events queued since the last call.
func (s *Session) Events() []ecs.Event {
	return s.events.Drain()
}

// Current returns the gazed entity, or 0 when nothing is gazed.
func (s *Session) Current() ecs.Entity {
	return s.current
}

func (s *Session) Registry() *Registry {
	return s.registry
}

// Reticle returns the session reticle, nil before Init.
func (s *Session) Reticle() *Reticle {
	return s.reticle
}

func (s *Session) Settings() Settings {
	return s.settings
}

func (s *Session) Ready() bool {
	return s.ready
}

func (s *Session) Clock() *Clock {
	return s.clock
}

// Mode returns the ray strategy chosen at Init.
func (s *Session) Mode() RayMode {
	if s.detector == nil {
		return 0
	}
	return s.detector.Mode()
}
