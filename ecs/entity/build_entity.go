package entity

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
	"github.com/milk9111/reticulum/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"camera_tag": addCameraTag,
	"transform":  addTransform,
	"camera":     addCamera,
	"camera_rig": addCameraRig,
	"bounds":     addBounds,
	"material":   addMaterial,
	"gazeable":   addGazeable,
	"drift":      addDrift,
	"script":     addScript,
}

// script runs last so its listener sees every other component.
var componentBuildOrder = []string{
	"camera_tag",
	"transform",
	"camera",
	"camera_rig",
	"bounds",
	"material",
	"gazeable",
	"drift",
	"script",
}

var defaultMaterialColor = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

// BuildEntity builds an entity from a prefab file.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntitySpec(w, spec, prefabPath)
}

// BuildEntitySpec builds an entity from an inline spec, merging its base
// prefab first. source names the spec in errors.
func BuildEntitySpec(w *ecs.World, spec entityPrefabSpec, source string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	spec, err := spec.Resolve()
	if err != nil {
		return 0, fmt.Errorf("build entity: %q: resolve prefab: %w", source, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", source)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: source}

	if name := strings.TrimSpace(spec.Name); name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add name: %w", source, err)
		}
	}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		if v == nil {
			continue
		}
		remaining[k] = v
	}

	// unknown components fail before anything order-sensitive is built
	unknown := make([]string, 0)
	for name := range remaining {
		if _, ok := componentRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", source, unknown[0])
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", source, name, err)
		}
	}

	return e, nil
}

// SetEntityPosition moves an entity, creating an identity transform if it
// has none.
func SetEntityPosition(w *ecs.World, e ecs.Entity, pos mgl64.Vec3) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = component.NewTransform(pos)
	}
	t.Position = pos
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	uniform := spec.Scale
	if uniform == 0 {
		uniform = 1
	}
	axis := func(v float64) float64 {
		if v == 0 {
			return uniform
		}
		return v
	}
	t := component.NewTransform(mgl64.Vec3{spec.X, spec.Y, spec.Z})
	t.Scale = mgl64.Vec3{axis(spec.ScaleX), axis(spec.ScaleY), axis(spec.ScaleZ)}
	if spec.RotX != 0 || spec.RotY != 0 || spec.RotZ != 0 {
		t.Rotation = mgl64.AnglesToQuat(
			mgl64.DegToRad(spec.RotX),
			mgl64.DegToRad(spec.RotY),
			mgl64.DegToRad(spec.RotZ),
			mgl64.XYZ,
		)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

type cameraSpec = prefabs.CameraComponentSpec

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cameraSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	cam := &component.Camera{
		FovY:           mgl64.DegToRad(orDefault(spec.Fov, 50)),
		Aspect:         orDefault(spec.Aspect, 1),
		Near:           orDefault(spec.Near, 0.1),
		Far:            orDefault(spec.Far, 2000),
		OrthoHeight:    orDefault(spec.OrthoHeight, 10),
		ViewportWidth:  spec.ViewportWidth,
		ViewportHeight: spec.ViewportHeight,
	}
	switch strings.ToLower(strings.TrimSpace(spec.Projection)) {
	case "", "perspective":
		cam.Projection = component.ProjectionPerspective
	case "orthographic", "ortho":
		cam.Projection = component.ProjectionOrthographic
	case "custom":
		cam.Projection = component.ProjectionCustom
		cam.Custom = mgl64.Mat4(spec.Matrix)
	default:
		return fmt.Errorf("unknown projection %q", spec.Projection)
	}
	return ecs.Add(w, e, component.CameraComponent.Kind(), cam)
}

type cameraRigSpec = prefabs.CameraRigComponentSpec

func addCameraRig(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cameraRigSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera rig spec: %w", err)
	}
	return ecs.Add(w, e, component.CameraRigComponent.Kind(), &component.CameraRig{
		Yaw:         mgl64.DegToRad(spec.Yaw),
		Pitch:       mgl64.DegToRad(spec.Pitch),
		YawRate:     spec.YawRate,
		PitchRate:   spec.PitchRate,
		Sensitivity: spec.Sensitivity,
	})
}

type boundsSpec = prefabs.BoundsComponentSpec

func addBounds(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[boundsSpec](raw)
	if err != nil {
		return fmt.Errorf("decode bounds spec: %w", err)
	}
	b := &component.Bounds{}
	switch strings.ToLower(strings.TrimSpace(spec.Shape)) {
	case "", "sphere":
		b.Radius = orDefault(spec.Radius, 0.5)
	case "box":
		b.Box = true
		b.HalfExtents = mgl64.Vec3{
			orDefault(spec.Width, 1) / 2,
			orDefault(spec.Height, 1) / 2,
			orDefault(spec.Depth, 1) / 2,
		}
		b.Radius = spec.Radius
	default:
		return fmt.Errorf("unknown bounds shape %q", spec.Shape)
	}
	return ecs.Add(w, e, component.BoundsComponent.Kind(), b)
}

type materialSpec = prefabs.MaterialComponentSpec

func addMaterial(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[materialSpec](raw)
	if err != nil {
		return fmt.Errorf("decode material spec: %w", err)
	}
	c := color.Color(defaultMaterialColor)
	if spec.Color != "" {
		parsed, err := gaze.ParseColor(spec.Color)
		if err != nil {
			return fmt.Errorf("parse material color: %w", err)
		}
		c = parsed
	}
	return ecs.Add(w, e, component.MaterialComponent.Kind(), &component.Material{Color: c, Wireframe: spec.Wireframe})
}

type gazeableSpec = prefabs.GazeableComponentSpec

func addGazeable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gazeableSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gazeable spec: %w", err)
	}
	return ecs.Add(w, e, component.GazeableComponent.Kind(), &component.Gazeable{Enabled: !spec.Disabled})
}

type driftSpec = prefabs.DriftComponentSpec

func addDrift(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[driftSpec](raw)
	if err != nil {
		return fmt.Errorf("decode drift spec: %w", err)
	}
	return ecs.Add(w, e, component.DriftComponent.Kind(), &component.Drift{
		VelocityX:  spec.VelocityX,
		VelocityZ:  spec.VelocityZ,
		Mass:       spec.Mass,
		Elasticity: spec.Elasticity,
	})
}

type scriptSpec = prefabs.ScriptComponentSpec

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[scriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if strings.TrimSpace(spec.File) == "" {
		return fmt.Errorf("script component needs a file")
	}
	listener, err := NewScriptListener(w, e, spec.File)
	if err != nil {
		return fmt.Errorf("load script %q: %w", spec.File, err)
	}
	return ecs.Add(w, e, component.GazeListenerComponent.Kind(), &component.GazeListener{Handler: listener})
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
