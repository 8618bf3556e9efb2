package component

// CameraRig turns the camera by yaw/pitch. Rates are radians per second and
// are applied every frame; input systems may also write Yaw/Pitch directly.
type CameraRig struct {
	Yaw       float64
	Pitch     float64
	YawRate   float64
	PitchRate float64
	// Sensitivity scales pointer deltas, in radians per pixel.
	Sensitivity float64
}

var CameraRigComponent = NewComponent[CameraRig]()
