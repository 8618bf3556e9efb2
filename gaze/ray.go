package gaze

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/reticulum/ecs/component"
)

// Ray is a half-line with a unit direction, so hit parameters are world
// distances.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectBounds tests r against an entity volume placed by t. It returns
// the distance to the first surface in front of the origin.
func IntersectBounds(r Ray, t *component.Transform, b *component.Bounds) (float64, bool) {
	if t == nil || b == nil {
		return 0, false
	}
	if b.Box {
		return intersectBox(r, t, b.HalfExtents)
	}
	return intersectSphere(r, t.Position, b.BoundingRadius()*t.MaxScale())
}

func intersectSphere(r Ray, center mgl64.Vec3, radius float64) (float64, bool) {
	if radius <= 0 {
		return 0, false
	}
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t0 := -b - sqrtDisc
	t1 := -b + sqrtDisc
	if t1 < 0 {
		return 0, false
	}
	if t0 < 0 {
		// origin inside the sphere: report the far wall
		return t1, true
	}
	return t0, true
}

// intersectBox moves the ray into the box's local frame and runs the slab
// test there. The mapping is affine, so the local hit parameter equals the
// world distance.
func intersectBox(r Ray, t *component.Transform, half mgl64.Vec3) (float64, bool) {
	for _, s := range t.Scale {
		if s == 0 {
			return 0, false
		}
	}
	inv := t.Orientation().Conjugate()
	o := inv.Rotate(r.Origin.Sub(t.Position))
	d := inv.Rotate(r.Direction)
	for i := 0; i < 3; i++ {
		o[i] /= t.Scale[i]
		d[i] /= t.Scale[i]
	}

	tmin := 0.0
	tmax := math.Inf(1)
	for i := 0; i < 3; i++ {
		minV, maxV := -half[i], half[i]
		if d[i] == 0 {
			if o[i] < minV || o[i] > maxV {
				return 0, false
			}
			continue
		}
		invD := 1.0 / d[i]
		t1 := (minV - o[i]) * invD
		t2 := (maxV - o[i]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmax < tmin {
			return 0, false
		}
	}
	return tmin, true
}
