package prefabs

import (
	"fmt"

	"github.com/milk9111/reticulum/gaze"
	"gopkg.in/yaml.v3"
)

// OptionsFile holds the gaze session options.
const OptionsFile = "reticulum.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func LoadOptions(filename string) (gaze.Options, error) {
	if filename == "" {
		filename = OptionsFile
	}
	return LoadSpec[gaze.Options](filename)
}

// SceneSpec describes a gaze scene: one camera, optional physics arena and
// the gazeable entities around it.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Options  string            `yaml:"options"`
	Camera   EntityBuildSpec   `yaml:"camera"`
	Arena    *ArenaSpec        `yaml:"arena"`
	Entities []EntityBuildSpec `yaml:"entities"`
	Rings    []RingSpec        `yaml:"rings"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}

// ArenaSpec bounds drifting entities to a square on the ground plane.
type ArenaSpec struct {
	HalfExtent float64 `yaml:"half_extent"`
}

// RingSpec places Count copies of the listed prefabs evenly on a circle
// around the origin, cycling through Prefabs.
type RingSpec struct {
	Prefabs []string `yaml:"prefabs"`
	Count   int      `yaml:"count"`
	Radius  float64  `yaml:"radius"`
	Y       float64  `yaml:"y"`
	// Phase offsets the first object, in degrees.
	Phase float64 `yaml:"phase"`
	// Spin rotates each object about Y by this many degrees times its index.
	Spin float64 `yaml:"spin"`
}
