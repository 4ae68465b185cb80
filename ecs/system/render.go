package system

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

var (
	groundColor   = color.RGBA{R: 90, G: 70, B: 50, A: 255}
	waypointColor = color.RGBA{R: 80, G: 200, B: 255, A: 200}
	pathColor     = color.RGBA{R: 255, G: 200, B: 60, A: 200}
)

// RenderSystem draws the scene from the side: X to the right, Y up. Depth
// is dropped.
type RenderSystem struct {
	Scale       float64
	CenterX     float64
	GroundLevel float64
	Margin      float64
}

func NewRenderSystem(scale, groundLevel float64) *RenderSystem {
	if scale <= 0 {
		scale = 8
	}
	return &RenderSystem{Scale: scale, GroundLevel: groundLevel, Margin: 40}
}

// Update is a no-op; drawing happens in Draw.
func (r *RenderSystem) Update(_ *ecs.World) {}

func (r *RenderSystem) toScreen(screen *ebiten.Image, p mgl64.Vec3) (float32, float32) {
	bounds := screen.Bounds()
	x := (p.X()-r.CenterX)*r.Scale + float64(bounds.Dx())/2
	y := float64(bounds.Dy()) - r.Margin - (p.Y()-r.GroundLevel)*r.Scale
	return float32(x), float32(y)
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	bounds := screen.Bounds()
	_, gy := r.toScreen(screen, mgl64.Vec3{0, r.GroundLevel, 0})
	vector.FillRect(screen, 0, gy, float32(bounds.Dx()), float32(bounds.Dy())-gy, groundColor, false)

	ecs.ForEach(w, component.HoverControllerComponent.Kind(), func(_ ecs.Entity, h *component.HoverController) {
		for _, wp := range h.Waypoints {
			x, y := r.toScreen(screen, wp.Position)
			vector.FillRect(screen, x-2, y-2, 4, 4, waypointColor, false)
		}
	})
	ecs.ForEach(w, component.TransportComponent.Kind(), func(_ ecs.Entity, tr *component.Transport) {
		for i := 1; i < len(tr.Path); i++ {
			x0, y0 := r.toScreen(screen, tr.Path[i-1])
			x1, y1 := r.toScreen(screen, tr.Path[i])
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, pathColor, false)
		}
	})

	type drawItem struct {
		t *component.Transform
		r *component.Renderable
	}
	var items []drawItem
	ecs.ForEach2(w, component.RenderableComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, rd *component.Renderable, t *component.Transform) {
		items = append(items, drawItem{t: t, r: rd})
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].r.Layer < items[j].r.Layer })

	for _, it := range items {
		x, y := r.toScreen(screen, it.t.Position)
		wd := float32(it.r.Width * r.Scale)
		ht := float32(it.r.Height * r.Scale)
		vector.FillRect(screen, x-wd/2, y-ht/2, wd, ht, it.r.Color, false)
	}
}

// Follow centres the view horizontally on an entity.
func (r *RenderSystem) Follow(w *ecs.World, e ecs.Entity) {
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		r.CenterX = t.Position.X()
	}
}
