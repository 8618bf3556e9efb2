package component

import "image/color"

type Material struct {
	Color     color.Color
	Wireframe bool
}

var MaterialComponent = NewComponent[Material]()
