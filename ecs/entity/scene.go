package entity

import (
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
	"github.com/milk9111/reticulum/prefabs"
)

// Scene is a loaded scene: its camera, its options and the entities built
// for it, in build order.
type Scene struct {
	Name        string
	File        string
	Camera      ecs.Entity
	Options     gaze.Options
	OptionsFile string
	Entities    []ecs.Entity
}

// LoadScene builds a scene file into w. It attaches a physics arena when the
// scene declares one.
func LoadScene(w *ecs.World, filename string) (*Scene, error) {
	spec, err := prefabs.LoadSceneSpec(filename)
	if err != nil {
		return nil, err
	}

	scene := &Scene{Name: spec.Name, File: filename}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filename, ".yaml")
	}

	if spec.Options != "" {
		opts, err := prefabs.LoadOptions(spec.Options)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", filename, err)
		}
		scene.Options = opts
		scene.OptionsFile = spec.Options
	}

	if spec.Arena != nil && spec.Arena.HalfExtent > 0 {
		w.SetPhysicsWorld(ecs.NewPhysicsWorld(spec.Arena.HalfExtent))
	}

	if spec.Camera.Prefab == "" && len(spec.Camera.Components) == 0 {
		scene.Camera, err = NewCamera(w)
	} else {
		scene.Camera, err = BuildEntitySpec(w, spec.Camera, filename+": camera")
	}
	if err != nil {
		return nil, err
	}

	for _, ring := range spec.Rings {
		specs, err := ringEntities(ring)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", filename, err)
		}
		for _, es := range specs {
			e, err := BuildEntitySpec(w, es, filename+": "+es.Name)
			if err != nil {
				return nil, err
			}
			scene.Entities = append(scene.Entities, e)
		}
	}

	for i, es := range spec.Entities {
		source := es.Name
		if source == "" {
			source = fmt.Sprintf("entities[%d]", i)
		}
		e, err := BuildEntitySpec(w, es, filename+": "+source)
		if err != nil {
			return nil, err
		}
		scene.Entities = append(scene.Entities, e)
	}

	return scene, nil
}

// ringEntities lays ring prefabs out on a circle around the Y axis, the
// first one straight ahead on -Z.
func ringEntities(ring prefabs.RingSpec) ([]prefabs.EntityBuildSpec, error) {
	if len(ring.Prefabs) == 0 || ring.Count <= 0 {
		return nil, fmt.Errorf("ring needs prefabs and a positive count")
	}
	out := make([]prefabs.EntityBuildSpec, 0, ring.Count)
	for i := 0; i < ring.Count; i++ {
		prefab := ring.Prefabs[i%len(ring.Prefabs)]
		a := ring.Phase*math.Pi/180 + float64(i)*2*math.Pi/float64(ring.Count)
		out = append(out, prefabs.EntityBuildSpec{
			Name:   fmt.Sprintf("%s_%d", strings.TrimSuffix(prefab, ".yaml"), i),
			Prefab: prefab,
			Components: map[string]any{
				"transform": map[string]any{
					"x":     ring.Radius * math.Sin(a),
					"y":     ring.Y,
					"z":     -ring.Radius * math.Cos(a),
					"rot_y": ring.Spin * float64(i),
				},
			},
		})
	}
	return out, nil
}

// Register adds every gazeable scene entity to the session. Entities built
// disabled stay registered but disabled, so they still block gaze.
func (s *Scene) Register(session *gaze.Session, w *ecs.World) error {
	for _, e := range s.Entities {
		g, ok := ecs.Get(w, e, component.GazeableComponent.Kind())
		if !ok {
			continue
		}
		enabled := g.Enabled
		if err := session.AddCollider(e); err != nil {
			return fmt.Errorf("scene %s: %w", s.Name, err)
		}
		if !enabled {
			g.Enabled = false
		}
	}
	return nil
}

// Find returns the first scene entity with the given name.
func (s *Scene) Find(w *ecs.World, name string) (ecs.Entity, bool) {
	for _, e := range s.Entities {
		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && n.Value == name {
			return e, true
		}
	}
	return 0, false
}
