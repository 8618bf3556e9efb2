package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/gaze"
	"golang.org/x/image/colornames"
)

const (
	wireWidth  = 1
	solidWidth = 3
)

// boxEdges indexes the corners produced by boxCorners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// RenderSystem draws every bounded entity as seen from the scene camera,
// farthest first, then the reticle on top.
type RenderSystem struct {
	camEntity ecs.Entity
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

type drawItem struct {
	entity ecs.Entity
	depth  float64
}

type view struct {
	camera    *component.Camera
	transform *component.Transform
	viewProj  mgl64.Mat4
	width     float64
	height    float64
}

func (v view) project(p mgl64.Vec3) (float32, float32, bool) {
	x, y, ok := gaze.WorldToScreen(v.viewProj, p, v.width, v.height)
	return float32(x), float32(y), ok
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	if !r.camEntity.Valid() || !ecs.IsAlive(w, r.camEntity) {
		camEntity, ok := ecs.First(w, component.CameraTagComponent.Kind())
		if !ok {
			camEntity, ok = ecs.First(w, component.CameraComponent.Kind())
		}
		if !ok {
			return
		}
		r.camEntity = camEntity
	}

	cam, ok := ecs.Get(w, r.camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}
	camT, ok := ecs.Get(w, r.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	b := screen.Bounds()
	v := view{
		camera:    cam,
		transform: camT,
		viewProj:  gaze.ViewProjection(cam, camT),
		width:     float64(b.Dx()),
		height:    float64(b.Dy()),
	}
	viewMat := gaze.ViewMatrix(camT)

	var items []drawItem
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.BoundsComponent.Kind(), func(e ecs.Entity, t *component.Transform, _ *component.Bounds) {
		if e == r.camEntity {
			return
		}
		depth := viewMat.Mul4x1(t.Position.Vec4(1)).Z()
		items = append(items, drawItem{entity: e, depth: depth})
	})
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].depth != items[j].depth {
			return items[i].depth < items[j].depth
		}
		return uint64(items[i].entity) < uint64(items[j].entity)
	})

	for _, item := range items {
		r.drawEntity(w, screen, v, item.entity)
	}

	ecs.ForEach(w, component.ReticleTagComponent.Kind(), func(e ecs.Entity, _ *component.ReticleTag) {
		r.drawReticle(w, screen, v, e)
	})
}

func (r *RenderSystem) drawEntity(w *ecs.World, screen *ebiten.Image, v view, e ecs.Entity) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	bounds, ok := ecs.Get(w, e, component.BoundsComponent.Kind())
	if !ok {
		return
	}

	var clr color.Color = colornames.White
	wireframe := true
	if mat, ok := ecs.Get(w, e, component.MaterialComponent.Kind()); ok {
		if mat.Color != nil {
			clr = mat.Color
		}
		wireframe = mat.Wireframe
	}
	if g, ok := ecs.Get(w, e, component.GazeableComponent.Kind()); ok && !g.Enabled {
		clr = fade(clr)
	}

	if bounds.Box {
		drawBox(screen, v, t, bounds.HalfExtents, clr, wireframe)
		return
	}
	drawSphere(screen, v, t.Position, bounds.BoundingRadius()*t.MaxScale(), clr, wireframe)
}

// drawBox strokes the twelve edges of the oriented box. Solid boxes use a
// heavier stroke.
func drawBox(screen *ebiten.Image, v view, t *component.Transform, half mgl64.Vec3, clr color.Color, wireframe bool) {
	m := t.Matrix()
	var pts [8][2]float32
	var visible [8]bool
	for i, c := range boxCorners(half) {
		pts[i][0], pts[i][1], visible[i] = v.project(mgl64.TransformCoordinate(c, m))
	}

	width := float32(solidWidth)
	if wireframe {
		width = wireWidth
	}
	for _, edge := range boxEdges {
		a, b := edge[0], edge[1]
		if !visible[a] || !visible[b] {
			continue
		}
		vector.StrokeLine(screen, pts[a][0], pts[a][1], pts[b][0], pts[b][1], width, clr, true)
	}
}

func boxCorners(half mgl64.Vec3) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := range out {
		x, y, z := -half.X(), -half.Y(), -half.Z()
		if i&1 != 0 {
			x = half.X()
		}
		if i&2 != 0 {
			y = half.Y()
		}
		if i&4 != 0 {
			z = half.Z()
		}
		out[i] = mgl64.Vec3{x, y, z}
	}
	return out
}

func drawSphere(screen *ebiten.Image, v view, center mgl64.Vec3, radius float64, clr color.Color, wireframe bool) {
	cx, cy, ok := v.project(center)
	if !ok {
		return
	}
	// measure the projected radius along the camera's right axis
	right := v.transform.Orientation().Rotate(mgl64.Vec3{1, 0, 0})
	ex, ey, ok := v.project(center.Add(right.Mul(radius)))
	if !ok {
		return
	}
	pr := float32(math.Hypot(float64(ex-cx), float64(ey-cy)))
	if pr <= 0 {
		return
	}

	if wireframe {
		vector.StrokeCircle(screen, cx, cy, pr, wireWidth, clr, true)
		return
	}
	vector.FillCircle(screen, cx, cy, pr, clr, true)
}

// drawReticle draws the blended ring as a band of segments. Reticle
// vertices are local to the camera, so they go through the camera transform
// before projection.
func (r *RenderSystem) drawReticle(w *ecs.World, screen *ebiten.Image, v view, e ecs.Entity) {
	ret, ok := ecs.Get(w, e, component.ReticleComponent.Kind())
	if !ok || !ret.Visible {
		return
	}
	morph, ok := ecs.Get(w, e, component.MorphComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return
	}

	m := v.transform.Matrix().Mul4(t.Matrix())
	verts := morph.Blend()
	rows := max(morph.Base.PhiSegments, 1) + 1
	cols := len(verts) / rows
	if cols < 2 {
		return
	}
	inner := verts[:cols]
	outer := verts[len(verts)-cols:]
	clr := ret.Tint()

	type point struct {
		x, y  float32
		width float32
		ok    bool
	}
	band := make([]point, cols)
	for i := range band {
		ix, iy, okIn := v.project(mgl64.TransformCoordinate(inner[i], m))
		ox, oy, okOut := v.project(mgl64.TransformCoordinate(outer[i], m))
		band[i] = point{
			x:     (ix + ox) / 2,
			y:     (iy + oy) / 2,
			width: float32(math.Max(1, math.Hypot(float64(ox-ix), float64(oy-iy)))),
			ok:    okIn && okOut,
		}
	}
	for i := 1; i < len(band); i++ {
		a, b := band[i-1], band[i]
		if !a.ok || !b.ok {
			continue
		}
		vector.StrokeLine(screen, a.x, a.y, b.x, b.y, (a.width+b.width)/2, clr, true)
	}
}

func fade(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A /= 3
	return n
}
