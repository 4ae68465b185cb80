package component

import "image/color"

// Renderable draws an entity as a filled box in the side view.
type Renderable struct {
	Width  float64
	Height float64
	Color  color.RGBA
	Layer  int
}

var RenderableComponent = NewComponent[Renderable]()
