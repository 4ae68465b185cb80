package system

import (
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/rs/zerolog"
)

// ParachuteSystem releases whatever hangs from a parachute once the canopy
// is close enough to the ground, then schedules the canopy for removal.
type ParachuteSystem struct {
	groundLevel float64
	log         zerolog.Logger
}

func NewParachuteSystem(groundLevel float64, log zerolog.Logger) *ParachuteSystem {
	return &ParachuteSystem{
		groundLevel: groundLevel,
		log:         log.With().Str("system", "parachute").Logger(),
	}
}

func (s *ParachuteSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.ParachuteComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, p *component.Parachute, t *component.Transform) {
		if p.Landed || t.Position.Y()-s.groundLevel > p.LandingHeight {
			return
		}
		p.Landed = true
		ecs.Emit(w, ecs.Event{Type: ecs.EventParachuteLanded, Entity: e})

		for _, child := range Children(w, e) {
			Detach(w, child)
			ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerDetached, Entity: child, Other: e})
		}
		if p.DespawnAfter > 0 {
			_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Seconds: p.DespawnAfter})
		}
		s.log.Info().Stringer("entity", e).Float64("height", t.Position.Y()).Msg("parachute landed")
	})
}
