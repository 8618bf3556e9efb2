package gaze

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

func TestFrustumIntersectsSphere(t *testing.T) {
	view := ViewMatrix(component.NewTransform(mgl64.Vec3{}))
	f := NewFrustum(mgl64.Perspective(mgl64.DegToRad(90), 1, 1, 50).Mul4(view))

	tests := []struct {
		name   string
		center mgl64.Vec3
		radius float64
		want   bool
	}{
		{"ahead", mgl64.Vec3{0, 0, -10}, 1, true},
		{"behind", mgl64.Vec3{0, 0, 10}, 1, false},
		{"straddles_near", mgl64.Vec3{0, 0, -0.5}, 1, true},
		{"beyond_far", mgl64.Vec3{0, 0, -60}, 1, false},
		{"left_outside", mgl64.Vec3{-20, 0, -10}, 1, false},
		{"left_touching", mgl64.Vec3{-10.5, 0, -10}, 1, true},
		{"above_outside", mgl64.Vec3{0, 20, -10}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tt.center, tt.radius); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAnyGazeableVisible(t *testing.T) {
	s := newTestScene(t)
	a := s.object(t, "a", mgl64.Vec3{0, 0, 10})
	b := s.object(t, "b", mgl64.Vec3{40, 0, -5})

	if AnyGazeableVisible(s.world, s.session.Registry(), s.camera) {
		t.Fatalf("expected nothing visible")
	}

	s.move(b, mgl64.Vec3{1, 1, -5})
	if !AnyGazeableVisible(s.world, s.session.Registry(), s.camera) {
		t.Fatalf("expected b visible")
	}

	g, _ := ecs.Get(s.world, b, component.GazeableComponent.Kind())
	g.Enabled = false
	if AnyGazeableVisible(s.world, s.session.Registry(), s.camera) {
		t.Fatalf("expected disabled entities to be ignored")
	}

	s.move(a, mgl64.Vec3{0, 0, -30})
	if !AnyGazeableVisible(s.world, s.session.Registry(), s.camera) {
		t.Fatalf("expected a visible")
	}

	if AnyGazeableVisible(s.world, s.session.Registry(), ecs.CreateEntity(s.world)) {
		t.Fatalf("expected false for an entity without a camera")
	}
}
