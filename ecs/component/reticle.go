package component

import (
	"image/color"

	"github.com/milk9111/reticulum/common"
)

// ReticleConfig is the resolved reticle configuration, fixed at session init.
type ReticleConfig struct {
	Active  bool
	Visible bool
	Far     float64

	Color   color.Color
	ColorTo color.Color

	InnerRadius   float64
	OuterRadius   float64
	InnerRadiusTo float64
	OuterRadiusTo float64

	Animate bool
	Speed   float64
}

// Reticle is the crosshair state. MoveSpeed stays in [0,1] and blends the
// resting ring into the engaged ring.
type Reticle struct {
	Config    ReticleConfig
	Hit       bool
	MoveSpeed float64
	Visible   bool
}

var ReticleComponent = NewComponent[Reticle]()

// Tint blends Color into ColorTo by MoveSpeed.
func (r *Reticle) Tint() color.Color {
	from := color.NRGBAModel.Convert(colorOr(r.Config.Color)).(color.NRGBA)
	to := color.NRGBAModel.Convert(colorOr(r.Config.ColorTo)).(color.NRGBA)
	t := r.MoveSpeed
	mix := func(a, b uint8) uint8 {
		return uint8(common.Lerp(float64(a), float64(b), t) + 0.5)
	}
	return color.NRGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: mix(from.A, to.A)}
}

func colorOr(c color.Color) color.Color {
	if c == nil {
		return color.NRGBA{R: 0xcc, A: 0xff}
	}
	return c
}
