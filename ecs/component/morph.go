package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RingGeometry is a flat annulus in the XY plane, tessellated into
// PhiSegments+1 concentric rings of ThetaSegments+1 vertices.
type RingGeometry struct {
	InnerRadius   float64
	OuterRadius   float64
	ThetaSegments int
	PhiSegments   int
	ThetaStart    float64
	ThetaLength   float64
}

// NewRing builds a full ring with the tessellation used for reticles.
func NewRing(inner, outer float64) RingGeometry {
	return RingGeometry{
		InnerRadius:   inner,
		OuterRadius:   outer,
		ThetaSegments: 32,
		PhiSegments:   3,
		ThetaLength:   2 * math.Pi,
	}
}

// Vertices returns the ring vertices, inner ring first.
func (g RingGeometry) Vertices() []mgl64.Vec3 {
	theta := max(g.ThetaSegments, 3)
	phi := max(g.PhiSegments, 1)
	out := make([]mgl64.Vec3, 0, (theta+1)*(phi+1))
	step := (g.OuterRadius - g.InnerRadius) / float64(phi)
	for j := 0; j <= phi; j++ {
		r := g.InnerRadius + float64(j)*step
		for i := 0; i <= theta; i++ {
			a := g.ThetaStart + float64(i)/float64(theta)*g.ThetaLength
			out = append(out, mgl64.Vec3{r * math.Cos(a), r * math.Sin(a), 0})
		}
	}
	return out
}

// Morph blends a base geometry toward its targets by Influences.
type Morph struct {
	Base       RingGeometry
	Targets    []RingGeometry
	Influences []float64
}

var MorphComponent = NewComponent[Morph]()

// Blend returns base + sum(influence_i * (target_i - base)) per vertex.
func (m *Morph) Blend() []mgl64.Vec3 {
	base := m.Base.Vertices()
	for i, target := range m.Targets {
		if i >= len(m.Influences) || m.Influences[i] == 0 {
			continue
		}
		w := m.Influences[i]
		tv := target.Vertices()
		for k := range base {
			if k >= len(tv) {
				break
			}
			base[k] = base[k].Add(tv[k].Sub(base[k]).Mul(w))
		}
	}
	return base
}
