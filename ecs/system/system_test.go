package system

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func addCamera(t *testing.T, w *ecs.World, rig *component.CameraRig) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{})); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	lens := &component.Camera{
		Projection: component.ProjectionPerspective,
		FovY:       mgl64.DegToRad(60),
		Aspect:     1,
		Near:       0.1,
		Far:        100,
	}
	if err := ecs.Add(w, e, component.CameraComponent.Kind(), lens); err != nil {
		t.Fatalf("add camera: %v", err)
	}
	if rig != nil {
		if err := ecs.Add(w, e, component.CameraRigComponent.Kind(), rig); err != nil {
			t.Fatalf("add rig: %v", err)
		}
	}
	return e
}

func forward(w *ecs.World, e ecs.Entity) mgl64.Vec3 {
	t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	return t.Orientation().Rotate(mgl64.Vec3{0, 0, -1})
}

func TestCameraSystemTurns(t *testing.T) {
	cases := []struct {
		name   string
		rig    component.CameraRig
		lookX  float64
		lookY  float64
		expect mgl64.Vec3
	}{
		{"yaw_rate_left", component.CameraRig{YawRate: math.Pi / 2}, 0, 0, mgl64.Vec3{-1, 0, 0}},
		{"yaw_rate_right", component.CameraRig{YawRate: -math.Pi / 2}, 0, 0, mgl64.Vec3{1, 0, 0}},
		{"look_right", component.CameraRig{Sensitivity: 0.01}, 100 * math.Pi / 2, 0, mgl64.Vec3{1, 0, 0}},
		{"idle", component.CameraRig{}, 0, 0, mgl64.Vec3{0, 0, -1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			rig := c.rig
			cam := addCamera(t, w, &rig)

			cs := NewCameraSystem(1)
			cs.Look(c.lookX, c.lookY)
			cs.Update(w)

			got := forward(w, cam)
			for i := range got {
				if !approx(got[i], c.expect[i]) {
					t.Fatalf("expected forward %v, got %v", c.expect, got)
				}
			}
		})
	}
}

func TestCameraSystemClampsPitch(t *testing.T) {
	w := ecs.NewWorld()
	cam := addCamera(t, w, &component.CameraRig{Sensitivity: 1})

	cs := NewCameraSystem(0)
	cs.Look(0, -1000)
	cs.Update(w)

	rig, _ := ecs.Get(w, cam, component.CameraRigComponent.Kind())
	if !approx(rig.Pitch, maxPitch) {
		t.Fatalf("expected pitch clamped to %v, got %v", maxPitch, rig.Pitch)
	}
	if f := forward(w, cam); f.Y() <= 0.99 {
		t.Fatalf("expected camera to look almost straight up, got %v", f)
	}

	// queued look is consumed by the update
	cs.Update(w)
	if !approx(rig.Pitch, maxPitch) {
		t.Fatalf("expected pitch to stay at %v, got %v", maxPitch, rig.Pitch)
	}
}

func TestCameraSystemWithoutRig(t *testing.T) {
	w := ecs.NewWorld()
	cam := addCamera(t, w, nil)
	NewCameraSystem(1).Update(w)
	if f := forward(w, cam); !approx(f.Z(), -1) {
		t.Fatalf("expected untouched camera, got forward %v", f)
	}
}

func addDrifter(t *testing.T, w *ecs.World, pos mgl64.Vec3, vx, vz float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(pos)); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.BoundsComponent.Kind(), &component.Bounds{Radius: 0.5}); err != nil {
		t.Fatalf("add bounds: %v", err)
	}
	if err := ecs.Add(w, e, component.DriftComponent.Kind(), &component.Drift{VelocityX: vx, VelocityZ: vz}); err != nil {
		t.Fatalf("add drift: %v", err)
	}
	return e
}

func TestPhysicsSystemMovesDrifters(t *testing.T) {
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(10))
	e := addDrifter(t, w, mgl64.Vec3{0, 1.5, 0}, 1, -2)

	ps := NewPhysicsSystem(0.5)
	ps.Update(w)

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	expect := mgl64.Vec3{0.5, 1.5, -1}
	for i := range expect {
		if !approx(tr.Position[i], expect[i]) {
			t.Fatalf("expected position %v, got %v", expect, tr.Position)
		}
	}
	if !ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
		t.Fatalf("expected physics body component")
	}
	if !ps.Tracked(e) {
		t.Fatalf("expected entity to be tracked")
	}
}

func TestPhysicsSystemDropsBodies(t *testing.T) {
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(10))
	dead := addDrifter(t, w, mgl64.Vec3{}, 1, 0)
	still := addDrifter(t, w, mgl64.Vec3{2, 0, 0}, 1, 0)

	ps := NewPhysicsSystem(0.1)
	ps.Update(w)

	ecs.DestroyEntity(w, dead)
	ecs.Remove(w, still, component.DriftComponent.Kind())
	ps.Update(w)

	if ps.Tracked(dead) || ps.Tracked(still) {
		t.Fatalf("expected bodies to be dropped")
	}
	if ecs.Has(w, still, component.PhysicsBodyComponent.Kind()) {
		t.Fatalf("expected physics body component to be removed")
	}
}

func TestPhysicsSystemWithoutArena(t *testing.T) {
	w := ecs.NewWorld()
	e := addDrifter(t, w, mgl64.Vec3{}, 1, 0)
	NewPhysicsSystem(1).Update(w)

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.Position != (mgl64.Vec3{}) {
		t.Fatalf("expected drifter to stay put without an arena, got %v", tr.Position)
	}
}

func TestGazeSystemPublishesEvents(t *testing.T) {
	w := ecs.NewWorld()
	cam := addCamera(t, w, nil)

	target := ecs.CreateEntity(w)
	_ = ecs.Add(w, target, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{0, 0, -5}))
	_ = ecs.Add(w, target, component.BoundsComponent.Kind(), &component.Bounds{Radius: 1})
	_ = ecs.Add(w, target, component.NameComponent.Kind(), &component.Name{Value: "target"})

	mock := gaze.NewMockTimeProvider(time.Unix(0, 0))
	session := gaze.NewSession(w, gaze.NewClock(mock))
	if err := session.Init(cam, gaze.Options{}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := session.AddCollider(target); err != nil {
		t.Fatalf("add collider: %v", err)
	}

	gs := NewGazeSystem(session)
	mock.AdvanceSeconds(0.5)
	gs.Update(w)

	events := w.Events().Drain()
	if len(events) != 1 || events[0].Type != gaze.EventGazeOver {
		t.Fatalf("expected one %s event, got %v", gaze.EventGazeOver, events)
	}
	payload, ok := events[0].Data.(gaze.GazeEvent)
	if !ok || payload.Entity != target {
		t.Fatalf("expected payload for %s, got %v", target, events[0].Data)
	}

	logLines := gs.Log()
	if len(logLines) != 1 || !strings.Contains(logLines[0], "gaze_over") || !strings.Contains(logLines[0], "target") {
		t.Fatalf("unexpected log %q", logLines)
	}

	session.RemoveCollider(target)
	gs.Update(w)
	events = w.Events().Drain()
	if len(events) != 1 || events[0].Type != gaze.EventGazeOut {
		t.Fatalf("expected one %s event, got %v", gaze.EventGazeOut, events)
	}
}

func TestGazeSystemLogIsBounded(t *testing.T) {
	gs := NewGazeSystem(nil)
	for i := 0; i < defaultGazeLogSize+10; i++ {
		gs.record("line")
	}
	if got := len(gs.Log()); got != defaultGazeLogSize {
		t.Fatalf("expected %d log lines, got %d", defaultGazeLogSize, got)
	}
	gs.Update(ecs.NewWorld())
}

func TestEntityLabel(t *testing.T) {
	w := ecs.NewWorld()
	named := ecs.CreateEntity(w)
	_ = ecs.Add(w, named, component.NameComponent.Kind(), &component.Name{Value: "box"})
	bare := ecs.CreateEntity(w)

	cases := []struct {
		name   string
		entity ecs.Entity
		expect string
	}{
		{"named", named, "box"},
		{"unnamed", bare, bare.String()},
		{"none", 0, "-"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := EntityLabel(w, c.entity); got != c.expect {
				t.Fatalf("expected %q, got %q", c.expect, got)
			}
		})
	}
}
