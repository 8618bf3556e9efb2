package component

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

type ReticleTag struct{}

var ReticleTagComponent = NewComponent[ReticleTag]()
