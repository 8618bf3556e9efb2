package gaze

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

type testScene struct {
	world   *ecs.World
	camera  ecs.Entity
	mock    *MockTimeProvider
	session *Session
	log     []string
}

func newTestScene(t *testing.T) *testScene {
	t.Helper()
	w := ecs.NewWorld()
	cam := ecs.CreateEntity(w)
	if err := ecs.Add(w, cam, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{})); err != nil {
		t.Fatalf("add camera transform: %v", err)
	}
	lens := &component.Camera{
		Projection: component.ProjectionPerspective,
		FovY:       mgl64.DegToRad(60),
		Aspect:     1,
		Near:       0.1,
		Far:        100,
	}
	if err := ecs.Add(w, cam, component.CameraComponent.Kind(), lens); err != nil {
		t.Fatalf("add camera: %v", err)
	}
	mock := NewMockTimeProvider(time.Unix(0, 0))
	return &testScene{
		world:   w,
		camera:  cam,
		mock:    mock,
		session: NewSession(w, NewClock(mock)),
	}
}

func (s *testScene) init(t *testing.T, opts Options) {
	t.Helper()
	if err := s.session.Init(s.camera, opts); err != nil {
		t.Fatalf("init: %v", err)
	}
}

// object creates a unit sphere at pos with a recording listener.
func (s *testScene) object(t *testing.T, name string, pos mgl64.Vec3) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(s.world)
	if err := ecs.Add(s.world, e, component.TransformComponent.Kind(), component.NewTransform(pos)); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(s.world, e, component.BoundsComponent.Kind(), &component.Bounds{Radius: 1}); err != nil {
		t.Fatalf("add bounds: %v", err)
	}
	listener := ListenerFuncs{
		Over: func() { s.log = append(s.log, "over:"+name) },
		Out:  func() { s.log = append(s.log, "out:"+name) },
		Long: func() { s.log = append(s.log, "long:"+name) },
	}
	if err := ecs.Add(s.world, e, component.GazeListenerComponent.Kind(), &component.GazeListener{Handler: listener}); err != nil {
		t.Fatalf("add listener: %v", err)
	}
	if err := s.session.AddCollider(e); err != nil {
		t.Fatalf("add collider: %v", err)
	}
	return e
}

func (s *testScene) step(seconds float64) {
	s.mock.AdvanceSeconds(seconds)
	s.session.Update()
}

func (s *testScene) move(e ecs.Entity, pos mgl64.Vec3) {
	if tr, ok := ecs.Get(s.world, e, component.TransformComponent.Kind()); ok {
		tr.Position = pos
	}
}

func (s *testScene) takeLog() []string {
	out := s.log
	s.log = nil
	return out
}

func equalLog(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	onAxis  = mgl64.Vec3{0, 0, -5}
	offAxis = mgl64.Vec3{50, 0, -5}
)

func TestSessionEmptyRegistryNeverFires(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	for i := 0; i < 10; i++ {
		s.step(0.1)
	}
	if s.session.Current().Valid() {
		t.Fatalf("expected no current target")
	}
	if evts := s.session.Events(); len(evts) != 0 {
		t.Fatalf("expected no events, got %v", evts)
	}
}

func TestSessionEnterExitAlternate(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", offAxis)

	steps := []struct {
		pos  mgl64.Vec3
		want []string
	}{
		{offAxis, nil},
		{onAxis, []string{"over:a"}},
		{onAxis, nil},
		{offAxis, []string{"out:a"}},
		{offAxis, nil},
		{onAxis, []string{"over:a"}},
		{offAxis, []string{"out:a"}},
	}
	for i, st := range steps {
		s.move(a, st.pos)
		s.step(0.1)
		if got := s.takeLog(); !equalLog(got, st.want) {
			t.Fatalf("step %d: expected %v, got %v", i, st.want, got)
		}
	}
}

func TestSessionSustainIsPeriodic(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{GazingDuration: 1.0})
	s.object(t, "a", onAxis)

	var longAt []float64
	var enterAt float64
	for i := 0; i < 14; i++ {
		s.step(0.25)
		for _, evt := range s.session.Events() {
			ge := evt.Data.(GazeEvent)
			switch evt.Type {
			case EventGazeOver:
				enterAt = ge.Elapsed
			case EventGazeLong:
				longAt = append(longAt, ge.Elapsed-enterAt)
			}
		}
	}
	want := []float64{1.0, 2.0, 3.0}
	if len(longAt) != len(want) {
		t.Fatalf("expected long gazes at %v after enter, got %v", want, longAt)
	}
	for i := range want {
		if math.Abs(longAt[i]-want[i]) > 1e-9 {
			t.Fatalf("long gaze %d: expected %.2f, got %.2f", i, want[i], longAt[i])
		}
	}
	if got := s.takeLog(); len(got) != 4 || got[0] != "over:a" {
		t.Fatalf("expected one over and three long callbacks, got %v", got)
	}
}

func TestSessionSwitchExitsBeforeEnter(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", onAxis)
	b := s.object(t, "b", offAxis)

	s.step(0.1)
	s.takeLog()

	s.move(a, offAxis.Add(mgl64.Vec3{0, 10, 0}))
	s.move(b, mgl64.Vec3{0, 0, -7})
	s.step(0.1)

	if got := s.takeLog(); !equalLog(got, []string{"out:a", "over:b"}) {
		t.Fatalf("expected [out:a over:b], got %v", got)
	}
	if s.session.Current() != b {
		t.Fatalf("expected current %s, got %s", b, s.session.Current())
	}
	evts := s.session.Events()
	if len(evts) != 3 || evts[1].Type != EventGazeOut || evts[2].Type != EventGazeOver {
		t.Fatalf("expected over, out, over events, got %v", evts)
	}
}

func TestSessionNearestWins(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	s.object(t, "far", mgl64.Vec3{0, 0, -20})
	s.object(t, "near", mgl64.Vec3{0, 0, -5})

	s.step(0.1)
	if got := s.takeLog(); !equalLog(got, []string{"over:near"}) {
		t.Fatalf("expected [over:near], got %v", got)
	}
}

func TestSessionDisabledHitIsNoHit(t *testing.T) {
	t.Run("disabled_only", func(t *testing.T) {
		s := newTestScene(t)
		s.init(t, Options{})
		a := s.object(t, "a", onAxis)
		g, _ := ecs.Get(s.world, a, component.GazeableComponent.Kind())
		g.Enabled = false

		s.step(0.1)
		s.step(0.1)
		if got := s.takeLog(); len(got) != 0 {
			t.Fatalf("expected no callbacks, got %v", got)
		}
		if s.session.Current().Valid() {
			t.Fatalf("expected no current target")
		}
	})

	t.Run("disabled_occludes", func(t *testing.T) {
		s := newTestScene(t)
		s.init(t, Options{})
		s.object(t, "behind", mgl64.Vec3{0, 0, -20})
		front := s.object(t, "front", onAxis)
		g, _ := ecs.Get(s.world, front, component.GazeableComponent.Kind())
		g.Enabled = false

		s.step(0.1)
		if got := s.takeLog(); len(got) != 0 {
			t.Fatalf("expected the disabled object to block gaze, got %v", got)
		}
	})

	t.Run("switch_to_disabled", func(t *testing.T) {
		s := newTestScene(t)
		s.init(t, Options{})
		a := s.object(t, "a", onAxis)
		b := s.object(t, "b", offAxis)
		s.step(0.1)
		s.takeLog()

		g, _ := ecs.Get(s.world, b, component.GazeableComponent.Kind())
		g.Enabled = false
		s.move(a, offAxis.Add(mgl64.Vec3{0, 10, 0}))
		s.move(b, onAxis)
		s.step(0.1)
		s.step(0.1)

		if got := s.takeLog(); !equalLog(got, []string{"out:a"}) {
			t.Fatalf("expected a single out:a, got %v", got)
		}
		if s.session.Current().Valid() {
			t.Fatalf("expected no current target")
		}
	})
}

func TestSessionRemoveColliderDefersExit(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", onAxis)
	s.step(0.1)
	s.takeLog()

	s.session.RemoveCollider(a)
	if got := s.takeLog(); len(got) != 0 {
		t.Fatalf("expected no callback on removal, got %v", got)
	}
	if s.session.Current() != a {
		t.Fatalf("expected %s to stay current until the next update", a)
	}
	g, ok := ecs.Get(s.world, a, component.GazeableComponent.Kind())
	if !ok || g.Enabled {
		t.Fatalf("expected gazeable to be disabled after removal")
	}

	s.step(0.1)
	if got := s.takeLog(); !equalLog(got, []string{"out:a"}) {
		t.Fatalf("expected [out:a], got %v", got)
	}
	s.step(0.1)
	if got := s.takeLog(); len(got) != 0 {
		t.Fatalf("expected nothing after exit, got %v", got)
	}
}

func TestSessionAddRemoveCollider(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", offAxis)

	if err := s.session.AddCollider(a); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if s.session.Registry().Len() != 1 {
		t.Fatalf("expected duplicate add to keep one entry, got %d", s.session.Registry().Len())
	}

	s.session.RemoveCollider(a)
	if s.session.Registry().Contains(a) {
		t.Fatalf("expected entity removed from registry")
	}
	g, ok := ecs.Get(s.world, a, component.GazeableComponent.Kind())
	if !ok || g.Enabled {
		t.Fatalf("expected Enabled=false after add then remove")
	}

	// removing an unknown entity is a no-op
	s.session.RemoveCollider(ecs.CreateEntity(s.world))
	s.session.RemoveCollider(0)

	if err := s.session.AddCollider(0); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive for the zero entity, got %v", err)
	}
}

func TestSessionReticleFollowsGaze(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	s.object(t, "a", mgl64.Vec3{0, 0, -11})

	r := s.session.Reticle()
	e, ok := r.Entity()
	if !ok {
		t.Fatalf("expected a reticle entity")
	}
	tr, _ := ecs.Get(s.world, e, component.TransformComponent.Kind())
	if tr.Position.Z() != -90 {
		t.Fatalf("expected resting depth -90, got %.3f", tr.Position.Z())
	}

	s.step(0.1)
	if !r.Hit() {
		t.Fatalf("expected reticle hit after enter")
	}
	if math.Abs(tr.Position.Z()+10) > 1e-9 || math.Abs(tr.Scale.X()-10) > 1e-9 {
		t.Fatalf("expected z=-10 scale=10, got z=%.3f scale=%.3f", tr.Position.Z(), tr.Scale.X())
	}

	s.move(s.session.Registry().Entities()[0], offAxis)
	s.step(0.1)
	if r.Hit() {
		t.Fatalf("expected reticle hit cleared after exit")
	}
	if tr.Position.Z() != -90 {
		t.Fatalf("expected reticle back at -90, got %.3f", tr.Position.Z())
	}
}

func TestSessionReticleScaleIgnoresCameraPosition(t *testing.T) {
	for _, camZ := range []float64{0, 5, -5, -20} {
		s := newTestScene(t)
		camT, _ := ecs.Get(s.world, s.camera, component.TransformComponent.Kind())
		camT.Position = mgl64.Vec3{3, 1, camZ}
		s.init(t, Options{})
		s.object(t, "a", mgl64.Vec3{3, 1, camZ - 11})

		s.step(0.1)
		e, _ := s.session.Reticle().Entity()
		tr, _ := ecs.Get(s.world, e, component.TransformComponent.Kind())
		if math.Abs(tr.Position.Z()+10) > 1e-9 || math.Abs(tr.Scale.X()-10) > 1e-9 {
			t.Fatalf("camera z=%.0f: expected z=-10 scale=10, got z=%.3f scale=%.3f", camZ, tr.Position.Z(), tr.Scale.X())
		}
	}
}

func TestSessionReticleOrthographicScale(t *testing.T) {
	s := newTestScene(t)
	lens, _ := ecs.Get(s.world, s.camera, component.CameraComponent.Kind())
	lens.Projection = component.ProjectionOrthographic
	lens.OrthoHeight = 8
	s.init(t, Options{})
	s.object(t, "a", mgl64.Vec3{0, 0, -11})

	e, _ := s.session.Reticle().Entity()
	tr, _ := ecs.Get(s.world, e, component.TransformComponent.Kind())
	if tr.Position.Z() != -90 || tr.Scale.X() != 4 {
		t.Fatalf("expected resting z=-90 scale=4, got z=%.3f scale=%.3f", tr.Position.Z(), tr.Scale.X())
	}

	s.step(0.1)
	if math.Abs(tr.Position.Z()+10) > 1e-9 || tr.Scale.X() != 4 {
		t.Fatalf("expected z=-10 with the scale held at 4, got z=%.3f scale=%.3f", tr.Position.Z(), tr.Scale.X())
	}
}

func TestSessionEnterDistanceUsesScaledRadius(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", mgl64.Vec3{0, 0, -12})
	tr, _ := ecs.Get(s.world, a, component.TransformComponent.Kind())
	tr.Scale = mgl64.Vec3{1, 2, 1}

	s.step(0.1)
	e, _ := s.session.Reticle().Entity()
	rt, _ := ecs.Get(s.world, e, component.TransformComponent.Kind())
	if math.Abs(rt.Position.Z()+10) > 1e-9 {
		t.Fatalf("expected the surface of the radius 2 sphere at 10, got %.3f", -rt.Position.Z())
	}
}

func TestSessionPausedClockDelaysLongGaze(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{GazingDuration: 1})
	s.object(t, "a", onAxis)
	s.step(0.1)
	s.takeLog()

	s.session.Clock().Pause()
	s.mock.AdvanceSeconds(30)
	s.session.Clock().Resume()
	s.step(0.1)
	if got := s.takeLog(); len(got) != 0 {
		t.Fatalf("expected no long gaze right after resume, got %v", got)
	}

	s.step(1)
	if got := s.takeLog(); !equalLog(got, []string{"long:a"}) {
		t.Fatalf("expected long gaze after a second of play, got %v", got)
	}
}

func TestSessionReticleAnimationConverges(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	a := s.object(t, "a", onAxis)
	r := s.session.Reticle()

	prev := r.MoveSpeed()
	for i := 0; i < 10; i++ {
		s.step(0.05)
		cur := r.MoveSpeed()
		if cur < prev || cur > 1 {
			t.Fatalf("frame %d: move speed %.3f after %.3f", i, cur, prev)
		}
		prev = cur
	}
	if prev != 1 {
		t.Fatalf("expected move speed to reach 1, got %.3f", prev)
	}

	e, _ := r.Entity()
	m, _ := ecs.Get(s.world, e, component.MorphComponent.Kind())
	if m.Influences[0] != 1 {
		t.Fatalf("expected morph influence 1, got %.3f", m.Influences[0])
	}

	s.move(a, offAxis)
	for i := 0; i < 10; i++ {
		s.step(0.05)
		cur := r.MoveSpeed()
		if cur > prev || cur < 0 {
			t.Fatalf("frame %d: move speed %.3f after %.3f", i, cur, prev)
		}
		prev = cur
	}
	if prev != 0 {
		t.Fatalf("expected move speed to reach 0, got %.3f", prev)
	}
}

func TestSessionAnimationDisabled(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{Reticle: ReticleOptions{Animate: Bool(false)}})
	s.object(t, "a", onAxis)
	for i := 0; i < 5; i++ {
		s.step(0.1)
	}
	if got := s.session.Reticle().MoveSpeed(); got != 0 {
		t.Fatalf("expected no animation, got move speed %.3f", got)
	}
}

func TestSessionInactiveReticle(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{Reticle: ReticleOptions{Active: Bool(false)}, Proximity: true})
	s.object(t, "a", onAxis)

	if _, ok := ecs.First(s.world, component.ReticleTagComponent.Kind()); ok {
		t.Fatalf("expected no reticle entity")
	}
	r := s.session.Reticle()
	r.SetDepthAndScale(3)
	r.SetHit(true)
	r.SetVisible(true)
	r.Update(1)
	if r.Hit() || r.Visible() || r.MoveSpeed() != 0 {
		t.Fatalf("expected inactive reticle calls to be no-ops")
	}

	s.step(0.1)
	if got := s.takeLog(); !equalLog(got, []string{"over:a"}) {
		t.Fatalf("expected callbacks without a reticle, got %v", got)
	}
}

func TestSessionInvalidCamera(t *testing.T) {
	s := newTestScene(t)
	notCamera := ecs.CreateEntity(s.world)
	s.object(t, "a", onAxis)

	cases := []struct {
		name   string
		camera ecs.Entity
	}{
		{"zero", 0},
		{"no_camera_component", notCamera},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := s.session.Init(c.camera, Options{})
			if !errors.Is(err, ErrInvalidCamera) {
				t.Fatalf("expected ErrInvalidCamera, got %v", err)
			}
			if s.session.Ready() {
				t.Fatalf("expected session to stay inert")
			}
			s.step(0.1)
			if got := s.takeLog(); len(got) != 0 {
				t.Fatalf("expected no callbacks, got %v", got)
			}
		})
	}
}

func TestSessionUpdateBeforeInit(t *testing.T) {
	s := newTestScene(t)
	s.object(t, "a", onAxis)
	s.step(0.1)
	if got := s.takeLog(); len(got) != 0 {
		t.Fatalf("expected no callbacks before init, got %v", got)
	}
}

func TestSessionReinitExitsCurrent(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{})
	s.object(t, "a", onAxis)
	s.step(0.1)
	old, _ := s.session.Reticle().Entity()
	s.takeLog()

	s.init(t, Options{GazingDuration: 1})
	if got := s.takeLog(); !equalLog(got, []string{"out:a"}) {
		t.Fatalf("expected re-init to exit the current target, got %v", got)
	}
	if ecs.IsAlive(s.world, old) {
		t.Fatalf("expected old reticle entity to be destroyed")
	}
	if s.session.Settings().GazingDuration != 1 {
		t.Fatalf("expected new settings, got %+v", s.session.Settings())
	}

	s.step(0.1)
	if got := s.takeLog(); !equalLog(got, []string{"over:a"}) {
		t.Fatalf("expected gaze to resume, got %v", got)
	}
}

func TestSessionProximityVisibility(t *testing.T) {
	s := newTestScene(t)
	s.init(t, Options{Proximity: true})
	a := s.object(t, "a", mgl64.Vec3{0, 0, 10})
	r := s.session.Reticle()

	s.step(0.1)
	if r.Visible() {
		t.Fatalf("expected reticle hidden with nothing in view")
	}

	s.move(a, mgl64.Vec3{3, 0, -10})
	s.step(0.1)
	if !r.Visible() {
		t.Fatalf("expected reticle visible with an object in view")
	}
}

func TestSessionUnprojectCamera(t *testing.T) {
	s := newTestScene(t)
	lens, _ := ecs.Get(s.world, s.camera, component.CameraComponent.Kind())
	lens.Projection = component.ProjectionCustom
	lens.Custom = mgl64.Perspective(mgl64.DegToRad(60), 4.0/3.0, 0.1, 100)
	lens.ViewportWidth = 800
	lens.ViewportHeight = 600

	s.init(t, Options{})
	if s.session.Mode() != RayUnproject {
		t.Fatalf("expected unproject mode, got %s", s.session.Mode())
	}
	s.object(t, "a", onAxis)
	s.step(0.1)
	if got := s.takeLog(); !equalLog(got, []string{"over:a"}) {
		t.Fatalf("expected gaze through the unprojected ray, got %v", got)
	}
}
