package entity

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
	"github.com/milk9111/reticulum/prefabs"
)

// Script handler names, each called as fn(engine, state).
const (
	scriptOnGazeOver = "on_gaze_over"
	scriptOnGazeOut  = "on_gaze_out"
	scriptOnGazeLong = "on_gaze_long"
)

var scriptPhases = []struct {
	phase   string
	handler string
}{
	{"over", scriptOnGazeOver},
	{"out", scriptOnGazeOut},
	{"long", scriptOnGazeLong},
}

// ScriptListener runs a tengo script's gaze handlers for one entity. The
// script's state map survives across calls and reloads.
type ScriptListener struct {
	world  *ecs.World
	entity ecs.Entity
	path   string

	compiled *tengo.Compiled
	defined  map[string]bool
	engine   *tengo.ImmutableMap
	state    *tengo.Map
}

var (
	_ gaze.OverListener = (*ScriptListener)(nil)
	_ gaze.OutListener  = (*ScriptListener)(nil)
	_ gaze.LongListener = (*ScriptListener)(nil)
)

func NewScriptListener(w *ecs.World, e ecs.Entity, scriptPath string) (*ScriptListener, error) {
	l := &ScriptListener{
		world:  w,
		entity: e,
		path:   scriptPath,
		state:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	l.engine = l.buildEngine()
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ScriptListener) Path() string {
	return l.path
}

// Defines reports whether the script defines the named handler.
func (l *ScriptListener) Defines(handler string) bool {
	return l.defined[handler]
}

// Reload recompiles the script from prefabs. On error the previous program
// stays in use.
func (l *ScriptListener) Reload() error {
	src, err := prefabs.LoadScript(l.path)
	if err != nil {
		return err
	}

	// Handlers are only known after a run, so probe the bare script first.
	probe := tengo.NewScript(src)
	probe.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	probed, err := probe.Run()
	if err != nil {
		return fmt.Errorf("probe %s: %w", l.path, err)
	}
	defined := make(map[string]bool, len(scriptPhases))
	var dispatch strings.Builder
	for _, p := range scriptPhases {
		if !probed.IsDefined(p.handler) {
			continue
		}
		defined[p.handler] = true
		fmt.Fprintf(&dispatch, "if __phase == %q { %s(__engine, __state) }\n", p.phase, p.handler)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch.String()))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("compile %s: %w", l.path, err)
	}
	l.compiled = compiled
	l.defined = defined
	return nil
}

func (l *ScriptListener) OnGazeOver() { l.call("over", scriptOnGazeOver) }
func (l *ScriptListener) OnGazeOut()  { l.call("out", scriptOnGazeOut) }
func (l *ScriptListener) OnGazeLong() { l.call("long", scriptOnGazeLong) }

func (l *ScriptListener) call(phase, handler string) {
	if l == nil || l.compiled == nil || !l.defined[handler] {
		return
	}
	if err := l.runPhase(phase); err != nil {
		log.Printf("script: entity=%s %s %s error: %v", l.entity, l.path, handler, err)
	}
}

func (l *ScriptListener) runPhase(phase string) error {
	if err := l.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := l.compiled.Set("__engine", l.engine); err != nil {
		return err
	}
	if err := l.compiled.Set("__state", l.state); err != nil {
		return err
	}
	return l.compiled.Run()
}

// State returns a script state value converted to Go, or nil.
func (l *ScriptListener) State(key string) any {
	v, ok := l.state.Value[key]
	if !ok {
		return nil
	}
	return tengo.ToInterface(v)
}

func (l *ScriptListener) buildEngine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["name"] = &tengo.UserFunction{Name: "name", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if n, ok := ecs.Get(l.world, l.entity, component.NameComponent.Kind()); ok {
			return &tengo.String{Value: n.Value}, nil
		}
		return &tengo.String{Value: l.entity.String()}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("script: %s", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["get_color"] = &tengo.UserFunction{Name: "get_color", Value: func(args ...tengo.Object) (tengo.Object, error) {
		m, ok := ecs.Get(l.world, l.entity, component.MaterialComponent.Kind())
		if !ok || m.Color == nil {
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: hexColor(m.Color)}, nil
	}}

	values["set_color"] = &tengo.UserFunction{Name: "set_color", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		c, err := gaze.ParseColor(objectAsString(args[0]))
		if err != nil {
			return tengo.FalseValue, nil
		}
		m, ok := ecs.Get(l.world, l.entity, component.MaterialComponent.Kind())
		if !ok {
			if err := ecs.Add(l.world, l.entity, component.MaterialComponent.Kind(), &component.Material{Color: c}); err != nil {
				return tengo.FalseValue, nil
			}
			return tengo.TrueValue, nil
		}
		m.Color = c
		return tengo.TrueValue, nil
	}}

	values["set_wireframe"] = &tengo.UserFunction{Name: "set_wireframe", Value: func(args ...tengo.Object) (tengo.Object, error) {
		m, ok := ecs.Get(l.world, l.entity, component.MaterialComponent.Kind())
		if !ok || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		m.Wireframe = !args[0].IsFalsy()
		return tengo.TrueValue, nil
	}}

	values["set_scale"] = &tengo.UserFunction{Name: "set_scale", Value: func(args ...tengo.Object) (tengo.Object, error) {
		t, ok := ecs.Get(l.world, l.entity, component.TransformComponent.Kind())
		if !ok || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		s, ok := tengo.ToFloat64(args[0])
		if !ok || s <= 0 {
			return tengo.FalseValue, nil
		}
		t.Scale = mgl64.Vec3{s, s, s}
		return tengo.TrueValue, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p := mgl64.Vec3{}
		if t, ok := ecs.Get(l.world, l.entity, component.TransformComponent.Kind()); ok {
			p = t.Position
		}
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: p.X()},
			&tengo.Float{Value: p.Y()},
			&tengo.Float{Value: p.Z()},
		}}, nil
	}}

	values["set_drift"] = &tengo.UserFunction{Name: "set_drift", Value: func(args ...tengo.Object) (tengo.Object, error) {
		d, ok := ecs.Get(l.world, l.entity, component.DriftComponent.Kind())
		if !ok || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		vx, okX := tengo.ToFloat64(args[0])
		vz, okZ := tengo.ToFloat64(args[1])
		if !okX || !okZ {
			return tengo.FalseValue, nil
		}
		d.VelocityX, d.VelocityZ = vx, vz
		if body, ok := ecs.Get(l.world, l.entity, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
			body.Body.SetVelocity(vx, vz)
		}
		return tengo.TrueValue, nil
	}}

	values["disable"] = &tengo.UserFunction{Name: "disable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, ok := ecs.Get(l.world, l.entity, component.GazeableComponent.Kind())
		if !ok {
			return tengo.FalseValue, nil
		}
		g.Enabled = false
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// ReloadScripts recompiles every script listener whose file matches the
// changed path. It returns how many were reloaded.
func ReloadScripts(w *ecs.World, changed string) int {
	base := filepath.Base(changed)
	n := 0
	ecs.ForEach(w, component.GazeListenerComponent.Kind(), func(e ecs.Entity, gl *component.GazeListener) {
		l, ok := gl.Handler.(*ScriptListener)
		if !ok || filepath.Base(l.path) != base {
			return
		}
		if err := l.Reload(); err != nil {
			log.Printf("script: reload %s for entity=%s: %v", l.path, e, err)
			return
		}
		n++
	})
	return n
}

func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
