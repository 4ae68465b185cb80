package system

import (
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

// TTLSystem counts TTL components down by the frame step and destroys
// entities when the TTL runs out.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		ttl.Seconds -= dt
		if ttl.Seconds > timerEpsilon {
			return
		}
		for _, child := range Children(w, e) {
			Detach(w, child)
		}
		ecs.DestroyEntity(w, e)
	})
}
