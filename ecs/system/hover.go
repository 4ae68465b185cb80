package system

import (
	"github.com/milk9111/helicopter/common"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/physics"
	"github.com/rs/zerolog"
)

// HoverSystem runs on the fixed step: it pulls each hover controller's body
// toward a smoothed target altitude and flies it around its waypoint loop.
type HoverSystem struct {
	log zerolog.Logger
}

func NewHoverSystem(log zerolog.Logger) *HoverSystem {
	return &HoverSystem{log: log.With().Str("system", "hover").Logger()}
}

func (s *HoverSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach3(w, component.HoverControllerComponent.Kind(), component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, h *component.HoverController, rb *component.RigidBody, t *component.Transform) {
		if rb.Body == nil {
			return
		}
		if !h.Initialized {
			h.CurrentHeight = rb.Body.Position().Y()
			rb.UseGravity = false
			rb.Body.SetGravityEnabled(false)
			h.Initialized = true
		}

		maintainHover(h, rb.Body, dt)
		if reached, ok := moveToWaypoint(h, rb.Body, t, dt); ok {
			ecs.Emit(w, ecs.Event{Type: ecs.EventWaypointReached, Entity: e, Index: reached})
			s.log.Debug().Stringer("entity", e).Int("reached", reached).Int("next", h.CurrentWaypoint).Msg("waypoint reached")
		}
	})
}

func maintainHover(h *component.HoverController, body physics.Body, dt float64) {
	h.CurrentHeight = common.Lerp(h.CurrentHeight, h.HoverHeight, common.Clamp01(dt*h.HoverSmoothness))

	heightDifference := h.CurrentHeight - body.Position().Y()
	lift := common.Up.Mul(heightDifference * h.LiftForce * dt)
	body.AddForce(lift, physics.ForceModeAcceleration)
}

// moveToWaypoint returns the index of the waypoint reached this tick, if any.
func moveToWaypoint(h *component.HoverController, body physics.Body, t *component.Transform, dt float64) (int, bool) {
	n := len(h.Waypoints)
	if n == 0 {
		return 0, false
	}
	if h.CurrentWaypoint < 0 || h.CurrentWaypoint >= n {
		h.CurrentWaypoint = ((h.CurrentWaypoint % n) + n) % n
	}

	target := h.Waypoints[h.CurrentWaypoint].Position
	pos := body.Position()
	direction := common.Normalize(target.Sub(pos))

	body.MovePosition(pos.Add(direction.Mul(h.Speed * dt)))
	if facing, ok := common.LookRotation(direction); ok {
		t.Rotation = common.Slerp(t.Rotation, facing, h.RotationSpeed*dt)
	}

	if pos.Sub(target).Len() < h.WaypointThreshold {
		reached := h.CurrentWaypoint
		h.CurrentWaypoint = (h.CurrentWaypoint + 1) % n
		return reached, true
	}
	return 0, false
}
