package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/physics"
	"github.com/rs/zerolog"
)

// PhysicsSystem creates bodies for RigidBody components, steps the physics
// world and mirrors body positions back into transforms.
type PhysicsSystem struct {
	world  *physics.World
	log    zerolog.Logger
	bodies map[ecs.Entity]physics.Body
}

func NewPhysicsSystem(world *physics.World, log zerolog.Logger) *PhysicsSystem {
	return &PhysicsSystem{
		world:  world,
		log:    log.With().Str("system", "physics").Logger(),
		bodies: make(map[ecs.Entity]physics.Body),
	}
}

func (s *PhysicsSystem) Update(w *ecs.World) {
	if s == nil || s.world == nil || w == nil {
		return
	}

	s.removeDead(w)

	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if rb.Body == nil {
			s.ensureBody(e, rb, t)
			return
		}
		if rb.Body.Kinematic() || t.Parent != 0 {
			rb.Body.SetPosition(t.Position)
		}
		// Parented dynamic bodies must not build up velocity while carried.
		if t.Parent != 0 && !rb.Body.Kinematic() {
			rb.Body.SetVelocity(mgl64.Vec3{})
		}
	})

	s.world.Step(w.DeltaTime())

	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if rb.Body == nil || rb.Body.Kinematic() || t.Parent != 0 {
			return
		}
		t.Position = rb.Body.Position()
	})
}

func (s *PhysicsSystem) ensureBody(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
	rb.Body = s.world.NewBody(physics.BodyConfig{
		Position:   t.Position,
		Mass:       rb.Mass,
		Width:      rb.Width,
		Height:     rb.Height,
		Radius:     rb.Radius,
		Friction:   rb.Friction,
		Elasticity: rb.Elasticity,
		Kinematic:  rb.Kinematic,
		Gravity:    rb.UseGravity,
		Collider:   rb.Collider,
	})
	if rb.InitialVelocity != (mgl64.Vec3{}) {
		rb.Body.SetVelocity(rb.InitialVelocity)
	}
	s.bodies[e] = rb.Body
	s.log.Debug().Stringer("entity", e).Bool("kinematic", rb.Kinematic).Bool("gravity", rb.UseGravity).Msg("body created")
}

func (s *PhysicsSystem) removeDead(w *ecs.World) {
	for e, body := range s.bodies {
		if ecs.IsAlive(w, e) {
			if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body == body {
				continue
			}
		}
		s.world.RemoveBody(body)
		delete(s.bodies, e)
		s.log.Debug().Stringer("entity", e).Msg("body removed")
	}
}
