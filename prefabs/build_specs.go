package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is one entity: an optional base prefab file whose
// components are merged under the inline ones.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Prefab     string         `yaml:"prefab"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// Resolve merges the base prefab, if any, under s. Inline component keys
// win and a null component removes the base one.
func (s EntityBuildSpec) Resolve() (EntityBuildSpec, error) {
	if s.Prefab == "" {
		return s, nil
	}
	base, err := LoadEntityBuildSpec(s.Prefab)
	if err != nil {
		return s, err
	}
	out := EntityBuildSpec{Name: base.Name, Components: make(map[string]any, len(base.Components)+len(s.Components))}
	if s.Name != "" {
		out.Name = s.Name
	}
	for k, v := range base.Components {
		out.Components[k] = v
	}
	for k, v := range s.Components {
		if v == nil {
			delete(out.Components, k)
			continue
		}
		out.Components[k] = mergeComponent(out.Components[k], v)
	}
	return out, nil
}

// mergeComponent overlays the keys of an inline component block on the
// base block. Non-map values replace the base outright.
func mergeComponent(base, over any) any {
	b, ok := base.(map[string]any)
	if !ok {
		return over
	}
	o, ok := over.(map[string]any)
	if !ok {
		return over
	}
	out := make(map[string]any, len(b)+len(o))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// TransformComponentSpec uses degrees for rotation. Scale sets all axes and
// the per-axis values override it.
type TransformComponentSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	RotX   float64 `yaml:"rot_x"`
	RotY   float64 `yaml:"rot_y"`
	RotZ   float64 `yaml:"rot_z"`
	Scale  float64 `yaml:"scale"`
	ScaleX float64 `yaml:"scale_x"`
	ScaleY float64 `yaml:"scale_y"`
	ScaleZ float64 `yaml:"scale_z"`
}

type CameraComponentSpec struct {
	Projection     string      `yaml:"projection"`
	Fov            float64     `yaml:"fov"`
	Aspect         float64     `yaml:"aspect"`
	Near           float64     `yaml:"near"`
	Far            float64     `yaml:"far"`
	OrthoHeight    float64     `yaml:"ortho_height"`
	Matrix         [16]float64 `yaml:"matrix"`
	ViewportWidth  int         `yaml:"viewport_width"`
	ViewportHeight int         `yaml:"viewport_height"`
}

type CameraRigComponentSpec struct {
	Yaw         float64 `yaml:"yaw"`
	Pitch       float64 `yaml:"pitch"`
	YawRate     float64 `yaml:"yaw_rate"`
	PitchRate   float64 `yaml:"pitch_rate"`
	Sensitivity float64 `yaml:"sensitivity"`
}

type BoundsComponentSpec struct {
	Shape  string  `yaml:"shape"`
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

type MaterialComponentSpec struct {
	Color     string `yaml:"color"`
	Wireframe bool   `yaml:"wireframe"`
}

type GazeableComponentSpec struct {
	Disabled bool `yaml:"disabled"`
}

type DriftComponentSpec struct {
	VelocityX  float64 `yaml:"velocity_x"`
	VelocityZ  float64 `yaml:"velocity_z"`
	Mass       float64 `yaml:"mass"`
	Elasticity float64 `yaml:"elasticity"`
}

type ScriptComponentSpec struct {
	File string `yaml:"file"`
}
