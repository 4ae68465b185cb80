package system

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

const frameDt = 0.1

type transportRig struct {
	w         *ecs.World
	vehicle   ecs.Entity
	passenger ecs.Entity
	body      *fakeBody
	tr        *component.Transport
	events    []ecs.Event
	sys       *TransportSystem
}

func newTransportRig(t *testing.T, tr component.Transport, spawn SpawnFunc) *transportRig {
	t.Helper()
	w := ecs.NewWorld()

	vehicle := ecs.CreateEntity(w)
	_ = ecs.Add(w, vehicle, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{-50, 20, 0}))

	passenger, body := spawnBodyEntity(w, mgl64.Vec3{0, 0, 5})
	_ = ecs.Add(w, passenger, component.PassengerComponent.Kind(), &component.Passenger{})

	if tr.ArrivalRadius == 0 {
		tr.ArrivalRadius = component.DefaultArrivalRadius
	}
	if tr.DropDelay == 0 {
		tr.DropDelay = component.DefaultDropDelay
	}
	if tr.ExitDelay == 0 {
		tr.ExitDelay = component.DefaultExitDelay
	}
	if tr.ParachuteVelocity == 0 {
		tr.ParachuteVelocity = component.DefaultParachuteVelocity
	}
	tr.Passenger = uint64(passenger)
	if err := ecs.Add(w, vehicle, component.TransportComponent.Kind(), &tr); err != nil {
		t.Fatal(err)
	}
	stored, _ := ecs.Get(w, vehicle, component.TransportComponent.Kind())

	return &transportRig{
		w:         w,
		vehicle:   vehicle,
		passenger: passenger,
		body:      body,
		tr:        stored,
		sys:       NewTransportSystem(spawn, quietLogger()),
	}
}

func (r *transportRig) frame() {
	r.w.SetDeltaTime(frameDt)
	r.sys.Update(r.w)
	r.w.Advance(frameDt)
	r.events = append(r.events, r.w.Events().Drain()...)
}

func (r *transportRig) framesUntil(t *testing.T, phase component.TransportPhase, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		r.frame()
		if r.tr.Phase == phase {
			return i
		}
	}
	t.Fatalf("phase %q not reached in %d frames (at %q)", phase, limit, r.tr.Phase)
	return 0
}

func (r *transportRig) marker(pos mgl64.Vec3) uint64 {
	e := ecs.CreateEntity(r.w)
	_ = ecs.Add(r.w, e, component.TransformComponent.Kind(), component.NewTransform(pos))
	_ = ecs.Add(r.w, e, component.MarkerComponent.Kind(), &component.Marker{})
	return uint64(e)
}

func (r *transportRig) transform(e ecs.Entity) *component.Transform {
	t, _ := ecs.Get(r.w, e, component.TransformComponent.Kind())
	return t
}

// parachuteSpawner builds a canopy entity whose body may already exist.
func parachuteSpawner(withBody bool, spawned *[]ecs.Entity) SpawnFunc {
	return func(w *ecs.World, prefab string, pos mgl64.Vec3) (ecs.Entity, error) {
		if prefab != "parachute" {
			return 0, errors.New("unknown prefab " + prefab)
		}
		e := ecs.CreateEntity(w)
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(pos))
		rb := &component.RigidBody{Mass: 1, UseGravity: true}
		if withBody {
			rb.Body = newFakeBody(pos)
		}
		_ = ecs.Add(w, e, component.RigidBodyComponent.Kind(), rb)
		_ = ecs.Add(w, e, component.ParachuteComponent.Kind(), &component.Parachute{LandingHeight: 0.5})
		*spawned = append(*spawned, e)
		return e, nil
	}
}

func TestTransportVisitsPathPointsInOrder(t *testing.T) {
	path := []mgl64.Vec3{{0, 10, 0}, {5, 10, 0}, {5, 10, 5}, {0, 12, 5}}
	rig := newTransportRig(t, component.Transport{
		Path:          path,
		Mode:          component.TransportModeLandAndExit,
		Speed:         10,
		RotationSpeed: 5,
		SnapToStart:   true,
		LandingDelay:  1,
	}, nil)

	rig.framesUntil(t, component.TransportAwaitingLanding, 200)

	var got []int
	for _, evt := range rig.events {
		if evt.Type == ecs.EventPathPointReached {
			got = append(got, evt.Index)
		}
	}
	if len(got) != len(path) {
		t.Fatalf("expected %d arrivals, got %v", len(path), got)
	}
	for i, idx := range got {
		if idx != i {
			t.Fatalf("arrivals out of order: %v", got)
		}
	}
	if countType(rig.events, ecs.EventEndingStarted) != 1 {
		t.Fatalf("ending should start once after the last point")
	}
}

func TestTransportLandAndExit(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Path:          []mgl64.Vec3{{0, 10, 0}, {10, 10, 0}},
		Mode:          component.TransportModeLandAndExit,
		Speed:         10,
		RotationSpeed: 5,
		LandingDelay:  3,
		SnapToStart:   true,
	}, nil)
	landing := mgl64.Vec3{10, 0, 0}
	rig.tr.LandingPoint = rig.marker(landing)

	travel := rig.framesUntil(t, component.TransportAwaitingLanding, 200)
	// 10 units at 10 u/s plus the frame that consumes the final point.
	if travel < 10 || travel > 12 {
		t.Fatalf("expected ~1s of travel, took %d frames", travel)
	}
	if rig.transform(rig.passenger).Parent != 0 {
		t.Fatalf("passenger must not be attached before landing")
	}

	for i := 0; i < 29; i++ {
		rig.frame()
	}
	if rig.tr.Phase != component.TransportAwaitingLanding {
		t.Fatalf("landed before the 3s delay elapsed")
	}
	rig.frame()
	if rig.tr.Phase != component.TransportLanded {
		t.Fatalf("expected landed after 3s, phase %q", rig.tr.Phase)
	}
	if got := rig.transform(rig.vehicle).Position; got != landing {
		t.Fatalf("vehicle should teleport to the landing point, got %v", got)
	}
	pt := rig.transform(rig.passenger)
	if pt.Parent != uint64(rig.vehicle) {
		t.Fatalf("passenger should ride the vehicle while landed")
	}
	if !rig.body.kinematic || rig.body.collider {
		t.Fatalf("passenger physics should be frozen while carried")
	}

	for i := 0; i < 19; i++ {
		rig.frame()
	}
	if rig.tr.Phase != component.TransportLanded || rig.tr.MissionCompleted {
		t.Fatalf("passenger left before the exit delay")
	}
	rig.frame()

	if rig.tr.Phase != component.TransportCompleted || !rig.tr.MissionCompleted {
		t.Fatalf("expected completed mission, phase %q", rig.tr.Phase)
	}
	if rig.transform(rig.passenger).Parent != 0 {
		t.Fatalf("passenger should be detached after exit")
	}
	if rig.body.kinematic || !rig.body.collider {
		t.Fatalf("passenger physics should be restored after exit")
	}
	if countType(rig.events, ecs.EventVehicleLanded) != 1 {
		t.Fatalf("expected one landing event")
	}
}

func TestTransportParachuteDrop(t *testing.T) {
	cases := []struct {
		name     string
		withBody bool
	}{
		{"body_already_created", true},
		{"body_created_later", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var spawned []ecs.Entity
			rig := newTransportRig(t, component.Transport{
				Path:            []mgl64.Vec3{{0, 30, 0}, {4, 30, 0}},
				Mode:            component.TransportModeParachuteDrop,
				Speed:           10,
				SnapToStart:     true,
				PassengerOffset: component.DefaultPassengerOffset,
				ParachutePrefab: "parachute",
			}, parachuteSpawner(tc.withBody, &spawned))
			rig.tr.DropPoint = rig.marker(mgl64.Vec3{4, 28, 0})

			rig.framesUntil(t, component.TransportAwaitingDrop, 100)
			for i := 0; i < 9; i++ {
				rig.frame()
			}
			if len(spawned) != 0 {
				t.Fatalf("parachute spawned before the 1s drop delay")
			}
			rig.frame()

			if len(spawned) != 1 {
				t.Fatalf("expected one parachute, got %d", len(spawned))
			}
			chute := spawned[0]
			if rig.tr.Parachute != uint64(chute) {
				t.Fatalf("transport should remember its parachute")
			}
			if got := rig.transform(rig.passenger).Parent; got != uint64(chute) {
				t.Fatalf("passenger should hang from the parachute, parent=%d", got)
			}
			if got := rig.transform(chute).Position; got != (mgl64.Vec3{4, 28, 0}) {
				t.Fatalf("parachute should spawn at the drop point, got %v", got)
			}

			// The hand-off to the canopy keeps the passenger where the vehicle
			// placed it: one unit above the vehicle.
			seat := rig.transform(rig.vehicle).Position.Add(component.DefaultPassengerOffset)
			pt := rig.transform(rig.passenger)
			if !pt.Position.ApproxEqualThreshold(seat, 1e-9) {
				t.Fatalf("passenger should stay at %v after the hand-off, got %v", seat, pt.Position)
			}
			if !rig.body.pos.ApproxEqualThreshold(seat, 1e-9) {
				t.Fatalf("passenger body should stay at %v, got %v", seat, rig.body.pos)
			}
			if want := seat.Sub(mgl64.Vec3{4, 28, 0}); !pt.LocalPosition.ApproxEqualThreshold(want, 1e-9) {
				t.Fatalf("passenger should sit at %v relative to the canopy, got %v", want, pt.LocalPosition)
			}

			rb, _ := ecs.Get(rig.w, chute, component.RigidBodyComponent.Kind())
			want := mgl64.Vec3{0, -2, 0}
			if tc.withBody {
				if rb.Body.Velocity() != want {
					t.Fatalf("expected chute velocity %v, got %v", want, rb.Body.Velocity())
				}
			} else if rb.InitialVelocity != want {
				t.Fatalf("expected initial chute velocity %v, got %v", want, rb.InitialVelocity)
			}

			if !rig.tr.MissionCompleted || rig.tr.Phase != component.TransportCompleted {
				t.Fatalf("mission should complete at drop time")
			}
			if rig.body.kinematic || !rig.body.collider {
				t.Fatalf("passenger physics should be restored after the drop")
			}
		})
	}
}

func TestTransportParachuteSpawnFailureReleasesPassenger(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Path:            []mgl64.Vec3{{0, 30, 0}},
		Mode:            component.TransportModeParachuteDrop,
		Speed:           10,
		SnapToStart:     true,
		PassengerOffset: component.DefaultPassengerOffset,
		ParachutePrefab: "missing",
	}, parachuteSpawner(true, new([]ecs.Entity)))

	rig.framesUntil(t, component.TransportCompleted, 100)

	if rig.transform(rig.passenger).Parent != 0 {
		t.Fatalf("passenger should not stay attached when the parachute fails")
	}
	if !rig.tr.MissionCompleted {
		t.Fatalf("mission should still complete")
	}
}

func TestTransportMissionLatchIsSetOnce(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Path:         []mgl64.Vec3{{0, 10, 0}},
		Mode:         component.TransportModeLandAndExit,
		Speed:        10,
		SnapToStart:  true,
		LandingDelay: 0.2,
		ExitDelay:    0.2,
	}, nil)

	rig.framesUntil(t, component.TransportCompleted, 50)
	for i := 0; i < 50; i++ {
		rig.frame()
	}

	if n := countType(rig.events, ecs.EventMissionCompleted); n != 1 {
		t.Fatalf("expected exactly one completion, got %d", n)
	}
	if StartEnding(rig.w, rig.vehicle, rig.tr) {
		t.Fatalf("ending must not restart after completion")
	}
}

func TestStartEndingIsIdempotent(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Path:  []mgl64.Vec3{{0, 10, 0}, {100, 10, 0}},
		Mode:  component.TransportModeParachuteDrop,
		Speed: 1,
	}, nil)
	rig.frame()

	if !StartEnding(rig.w, rig.vehicle, rig.tr) {
		t.Fatalf("first StartEnding should arm the ending")
	}
	timer := rig.tr.Timer
	if StartEnding(rig.w, rig.vehicle, rig.tr) {
		t.Fatalf("second StartEnding should be ignored")
	}
	if rig.tr.Timer != timer || rig.tr.Phase != component.TransportAwaitingDrop {
		t.Fatalf("second StartEnding must not reset the ending")
	}
	if StartEnding(rig.w, rig.vehicle, nil) {
		t.Fatalf("nil transport should be ignored")
	}
}

func TestTransportEmptyPathStaysIdle(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Mode:  component.TransportModeLandAndExit,
		Speed: 10,
	}, nil)
	start := rig.transform(rig.vehicle).Position

	for i := 0; i < 100; i++ {
		rig.frame()
	}

	if rig.tr.Phase != component.TransportIdle {
		t.Fatalf("expected idle transport, got %q", rig.tr.Phase)
	}
	if rig.tr.MissionCompleted || len(rig.events) != 0 {
		t.Fatalf("idle transport should not emit events: %v", rig.events)
	}
	if rig.transform(rig.vehicle).Position != start {
		t.Fatalf("idle transport should not move")
	}
}

func TestTransportWithoutSnapFliesFromCurrentPosition(t *testing.T) {
	rig := newTransportRig(t, component.Transport{
		Path:         []mgl64.Vec3{{-50, 20, 10}},
		Mode:         component.TransportModeLandAndExit,
		Speed:        10,
		LandingDelay: 5,
	}, nil)

	rig.frame()
	got := rig.transform(rig.vehicle).Position
	if got != (mgl64.Vec3{-50, 20, 1}) {
		t.Fatalf("expected one 1-unit step toward the first point, got %v", got)
	}
}
