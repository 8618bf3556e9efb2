package gaze

import (
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"golang.org/x/image/colornames"
)

const (
	DefaultGazingDuration = 2.5
	DefaultFarOffset      = 10.0
	DefaultColor          = "#cc0000"
	DefaultInnerRadius    = 0.0001
	DefaultOuterRadius    = 0.003
	DefaultInnerRadiusTo  = 0.02
	DefaultOuterRadiusTo  = 0.024
	DefaultSpeed          = 5.0
)

// Options configures a session. Zero values fall back to the defaults above;
// the reticle flags are pointers because they default to true.
type Options struct {
	GazingDuration float64        `yaml:"gazing_duration"`
	Proximity      bool           `yaml:"proximity"`
	Reticle        ReticleOptions `yaml:"reticle"`
}

type ReticleOptions struct {
	Active  *bool `yaml:"active"`
	Visible *bool `yaml:"visible"`
	// Far is the resting reticle depth. Defaults to the camera far plane
	// minus DefaultFarOffset.
	Far float64 `yaml:"far"`

	// Color and ColorTo accept #rrggbb, #rrggbbaa, 0xrrggbb or a CSS color name.
	Color   string `yaml:"color"`
	ColorTo string `yaml:"color_to"`

	InnerRadius   float64 `yaml:"inner_radius"`
	OuterRadius   float64 `yaml:"outer_radius"`
	InnerRadiusTo float64 `yaml:"inner_radius_to"`
	OuterRadiusTo float64 `yaml:"outer_radius_to"`

	Animate *bool   `yaml:"animate"`
	Speed   float64 `yaml:"speed"`
}

// Bool returns a pointer to v, for the optional reticle flags.
func Bool(v bool) *bool {
	return &v
}

// Settings is the resolved, read-only session configuration.
type Settings struct {
	Camera         ecs.Entity
	GazingDuration float64
	Proximity      bool
}

func (o Options) settings(camera ecs.Entity) Settings {
	return Settings{
		Camera:         camera,
		GazingDuration: orDefault(o.GazingDuration, DefaultGazingDuration),
		Proximity:      o.Proximity,
	}
}

func (o ReticleOptions) config(cam *component.Camera) component.ReticleConfig {
	far := o.Far
	if far == 0 {
		far = cam.Far - DefaultFarOffset
	}
	return component.ReticleConfig{
		Active:        flagOr(o.Active, true),
		Visible:       flagOr(o.Visible, true),
		Far:           far,
		Color:         colorOrDefault(o.Color),
		ColorTo:       colorOrDefault(o.ColorTo),
		InnerRadius:   orDefault(o.InnerRadius, DefaultInnerRadius),
		OuterRadius:   orDefault(o.OuterRadius, DefaultOuterRadius),
		InnerRadiusTo: orDefault(o.InnerRadiusTo, DefaultInnerRadiusTo),
		OuterRadiusTo: orDefault(o.OuterRadiusTo, DefaultOuterRadiusTo),
		Animate:       flagOr(o.Animate, true),
		Speed:         orDefault(o.Speed, DefaultSpeed),
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func flagOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func colorOrDefault(v string) color.Color {
	if strings.TrimSpace(v) == "" {
		v = DefaultColor
	}
	c, err := ParseColor(v)
	if err != nil {
		log.Printf("gaze: %v, using %s", err, DefaultColor)
		c, _ = ParseColor(DefaultColor)
	}
	return c
}

// ParseColor parses a hex color or a CSS color name.
func ParseColor(v string) (color.Color, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	if named, ok := colornames.Map[s]; ok {
		return named, nil
	}
	if after, ok := strings.CutPrefix(s, "0x"); ok {
		s = after
	} else {
		s = strings.TrimPrefix(s, "#")
	}
	if len(s) != 6 && len(s) != 8 {
		return nil, fmt.Errorf("invalid color format: %q", v)
	}
	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}
	r, err := parse(0)
	if err != nil {
		return nil, fmt.Errorf("parse red component of %q: %w", v, err)
	}
	g, err := parse(2)
	if err != nil {
		return nil, fmt.Errorf("parse green component of %q: %w", v, err)
	}
	b, err := parse(4)
	if err != nil {
		return nil, fmt.Errorf("parse blue component of %q: %w", v, err)
	}
	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return nil, fmt.Errorf("parse alpha component of %q: %w", v, err)
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
