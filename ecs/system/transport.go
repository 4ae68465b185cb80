package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/common"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/rs/zerolog"
)

// timerEpsilon absorbs float drift when summed frame steps should hit a delay
// exactly.
const timerEpsilon = 1e-9

// SpawnFunc instantiates a prefab at a world position.
type SpawnFunc func(w *ecs.World, prefab string, pos mgl64.Vec3) (ecs.Entity, error)

// TransportSystem runs once per rendered frame. It steps each transport along
// its path and then plays the configured ending exactly once.
type TransportSystem struct {
	spawn SpawnFunc
	log   zerolog.Logger
}

func NewTransportSystem(spawn SpawnFunc, log zerolog.Logger) *TransportSystem {
	return &TransportSystem{
		spawn: spawn,
		log:   log.With().Str("system", "transport").Logger(),
	}
}

func (s *TransportSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach2(w, component.TransportComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, tr *component.Transport, t *component.Transform) {
		switch tr.Phase {
		case "":
			s.start(w, e, tr, t, dt)
		case component.TransportFollowing:
			s.follow(w, e, tr, t, dt)
		case component.TransportAwaitingDrop:
			if tick(tr, dt) {
				s.parachuteDrop(w, e, tr)
			}
		case component.TransportAwaitingLanding:
			if tick(tr, dt) {
				s.land(w, e, tr, t)
			}
		case component.TransportLanded:
			if tick(tr, dt) {
				s.exit(w, e, tr)
			}
		}
	})
}

func tick(tr *component.Transport, dt float64) bool {
	tr.Timer -= dt
	return tr.Timer <= timerEpsilon
}

func (s *TransportSystem) start(w *ecs.World, e ecs.Entity, tr *component.Transport, t *component.Transform, dt float64) {
	if len(tr.Path) == 0 {
		tr.Phase = component.TransportIdle
		s.log.Debug().Stringer("entity", e).Msg("empty path, transport idle")
		return
	}
	if tr.SnapToStart {
		t.Position = tr.Path[0]
	}
	tr.PathIndex = 0
	tr.Phase = component.TransportFollowing
	s.log.Info().Stringer("entity", e).Int("points", len(tr.Path)).Str("mode", string(tr.Mode)).Msg("transport departing")
	s.follow(w, e, tr, t, dt)
}

// follow advances one frame along the path. Points already within the
// arrival radius are consumed without spending the frame.
func (s *TransportSystem) follow(w *ecs.World, e ecs.Entity, tr *component.Transport, t *component.Transform, dt float64) {
	for tr.PathIndex < len(tr.Path) {
		target := tr.Path[tr.PathIndex]
		if t.Position.Sub(target).Len() > tr.ArrivalRadius {
			t.Position = common.MoveTowards(t.Position, target, tr.Speed*dt)
			if facing, ok := common.LookRotation(target.Sub(t.Position)); ok {
				t.Rotation = common.Slerp(t.Rotation, facing, tr.RotationSpeed*dt)
			}
			return
		}
		ecs.Emit(w, ecs.Event{Type: ecs.EventPathPointReached, Entity: e, Index: tr.PathIndex})
		s.log.Debug().Stringer("entity", e).Int("index", tr.PathIndex).Msg("path point reached")
		tr.PathIndex++
	}
	StartEnding(w, e, tr)
}

// StartEnding arms the configured ending. It is a no-op once the mission
// latch is set or while an ending is already running.
func StartEnding(w *ecs.World, e ecs.Entity, tr *component.Transport) bool {
	if tr == nil || tr.MissionCompleted {
		return false
	}
	switch tr.Phase {
	case component.TransportAwaitingDrop, component.TransportAwaitingLanding, component.TransportLanded, component.TransportCompleted:
		return false
	}

	if tr.Mode == component.TransportModeParachuteDrop {
		tr.Phase = component.TransportAwaitingDrop
		tr.Timer = tr.DropDelay
	} else {
		tr.Phase = component.TransportAwaitingLanding
		tr.Timer = tr.LandingDelay
	}
	ecs.Emit(w, ecs.Event{Type: ecs.EventEndingStarted, Entity: e})
	return true
}

func (s *TransportSystem) parachuteDrop(w *ecs.World, e ecs.Entity, tr *component.Transport) {
	passenger, hasPassenger := ecs.Resolve(w, tr.Passenger)
	if hasPassenger {
		setPassengerPhysics(w, passenger, false)
		AttachAt(w, passenger, e, tr.PassengerOffset)
		ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerAttached, Entity: passenger, Other: e})
	} else {
		s.log.Warn().Stringer("entity", e).Msg("parachute drop without passenger")
	}

	dropPos := worldPosition(w, tr.DropPoint, e)
	chute, err := s.spawnParachute(w, tr, dropPos)
	if err != nil {
		s.log.Error().Err(err).Stringer("entity", e).Str("prefab", tr.ParachutePrefab).Msg("spawn parachute")
		if hasPassenger {
			Detach(w, passenger)
			ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerDetached, Entity: passenger, Other: e})
		}
	} else {
		tr.Parachute = uint64(chute)
		ecs.Emit(w, ecs.Event{Type: ecs.EventParachuteSpawned, Entity: e, Other: chute})
		if hasPassenger {
			Attach(w, passenger, chute)
			ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerAttached, Entity: passenger, Other: chute})
		}
	}

	s.complete(w, e, tr)
	if hasPassenger {
		setPassengerPhysics(w, passenger, true)
	}
}

func (s *TransportSystem) spawnParachute(w *ecs.World, tr *component.Transport, pos mgl64.Vec3) (ecs.Entity, error) {
	if s.spawn == nil {
		return 0, errNoSpawner
	}
	chute, err := s.spawn(w, tr.ParachutePrefab, pos)
	if err != nil {
		return 0, err
	}
	fall := mgl64.Vec3{0, tr.ParachuteVelocity, 0}
	if rb, ok := ecs.Get(w, chute, component.RigidBodyComponent.Kind()); ok {
		if rb.Body != nil {
			rb.Body.SetVelocity(fall)
		} else {
			rb.InitialVelocity = fall
		}
	}
	return chute, nil
}

func (s *TransportSystem) land(w *ecs.World, e ecs.Entity, tr *component.Transport, t *component.Transform) {
	passenger, hasPassenger := ecs.Resolve(w, tr.Passenger)
	if hasPassenger {
		setPassengerPhysics(w, passenger, false)
		Attach(w, passenger, e)
		ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerAttached, Entity: passenger, Other: e})
	} else {
		s.log.Warn().Stringer("entity", e).Msg("landing without passenger")
	}

	t.Position = worldPosition(w, tr.LandingPoint, e)
	if hasPassenger {
		SyncTransform(w, passenger)
	}
	ecs.Emit(w, ecs.Event{Type: ecs.EventVehicleLanded, Entity: e})
	s.log.Info().Stringer("entity", e).Msg("vehicle landed")

	tr.Phase = component.TransportLanded
	tr.Timer = tr.ExitDelay
}

func (s *TransportSystem) exit(w *ecs.World, e ecs.Entity, tr *component.Transport) {
	if passenger, ok := ecs.Resolve(w, tr.Passenger); ok {
		Detach(w, passenger)
		setPassengerPhysics(w, passenger, true)
		ecs.Emit(w, ecs.Event{Type: ecs.EventPassengerDetached, Entity: passenger, Other: e})
	}
	s.complete(w, e, tr)
}

func (s *TransportSystem) complete(w *ecs.World, e ecs.Entity, tr *component.Transport) {
	tr.MissionCompleted = true
	tr.Phase = component.TransportCompleted
	tr.Timer = 0
	ecs.Emit(w, ecs.Event{Type: ecs.EventMissionCompleted, Entity: e})
	s.log.Info().Stringer("entity", e).Str("mode", string(tr.Mode)).Msg("mission completed")
}

// setPassengerPhysics freezes (kinematic, no collider) or restores a
// passenger's body.
func setPassengerPhysics(w *ecs.World, passenger ecs.Entity, enabled bool) {
	rb, ok := ecs.Get(w, passenger, component.RigidBodyComponent.Kind())
	if !ok {
		return
	}
	rb.Kinematic = !enabled
	rb.Collider = enabled
	if rb.Body == nil {
		return
	}
	rb.Body.SetKinematic(!enabled)
	rb.Body.SetColliderEnabled(enabled)
}

// worldPosition resolves a marker reference, falling back to the fallback
// entity's position.
func worldPosition(w *ecs.World, ref uint64, fallback ecs.Entity) mgl64.Vec3 {
	if e, ok := ecs.Resolve(w, ref); ok {
		SyncTransform(w, e)
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			return t.Position
		}
	}
	if t, ok := ecs.Get(w, fallback, component.TransformComponent.Kind()); ok {
		return t.Position
	}
	return mgl64.Vec3{}
}
