package entity

import (
	"fmt"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
)

const defaultCameraPrefab = "camera.yaml"

// NewCamera builds the default camera prefab. The result always carries a
// camera tag so renderers can find it.
func NewCamera(w *ecs.World) (ecs.Entity, error) {
	camera, err := BuildEntity(w, defaultCameraPrefab)
	if err != nil {
		return 0, fmt.Errorf("camera: %w", err)
	}
	if !ecs.Has(w, camera, component.CameraTagComponent.Kind()) {
		if err := ecs.Add(w, camera, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
			return 0, fmt.Errorf("camera: add camera tag: %w", err)
		}
	}
	return camera, nil
}
