package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

func TestParachuteLandingReleasesPassenger(t *testing.T) {
	w := ecs.NewWorld()
	chute := newPosed(w, mgl64.Vec3{0, 3, 0})
	_ = ecs.Add(w, chute, component.ParachuteComponent.Kind(), &component.Parachute{LandingHeight: 0.5, DespawnAfter: 1})
	passenger := newPosed(w, mgl64.Vec3{0, 2, 0})
	Attach(w, passenger, chute)

	s := NewParachuteSystem(0, quietLogger())
	w.SetDeltaTime(frameDt)
	s.Update(w)
	if transformOf(w, passenger).Parent != uint64(chute) {
		t.Fatalf("passenger released while still high")
	}

	transformOf(w, chute).Position = mgl64.Vec3{0, 0.4, 0}
	s.Update(w)
	s.Update(w)

	p, _ := ecs.Get(w, chute, component.ParachuteComponent.Kind())
	if !p.Landed {
		t.Fatalf("expected parachute to land")
	}
	if transformOf(w, passenger).Parent != 0 {
		t.Fatalf("passenger should be detached on landing")
	}
	events := w.Events().Drain()
	if countType(events, ecs.EventParachuteLanded) != 1 {
		t.Fatalf("expected exactly one landing event, got %v", events)
	}
	ttl, ok := ecs.Get(w, chute, component.TTLComponent.Kind())
	if !ok || ttl.Seconds != 1 {
		t.Fatalf("landed parachute should get its despawn TTL")
	}
}

func TestParachuteRespectsGroundLevel(t *testing.T) {
	w := ecs.NewWorld()
	chute := newPosed(w, mgl64.Vec3{0, 10.3, 0})
	_ = ecs.Add(w, chute, component.ParachuteComponent.Kind(), &component.Parachute{LandingHeight: 0.5})

	NewParachuteSystem(10, quietLogger()).Update(w)

	p, _ := ecs.Get(w, chute, component.ParachuteComponent.Kind())
	if !p.Landed {
		t.Fatalf("height is measured from the ground level")
	}
	if ecs.Has(w, chute, component.TTLComponent.Kind()) {
		t.Fatalf("zero DespawnAfter keeps the canopy")
	}
}

func TestTTLDestroysAfterDelay(t *testing.T) {
	w := ecs.NewWorld()
	e := newPosed(w, mgl64.Vec3{})
	_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Seconds: 1})
	child := newPosed(w, mgl64.Vec3{0, 1, 0})
	Attach(w, child, e)

	s := NewTTLSystem()
	for i := 0; i < 9; i++ {
		w.SetDeltaTime(frameDt)
		s.Update(w)
	}
	if !ecs.IsAlive(w, e) {
		t.Fatalf("destroyed before TTL elapsed")
	}
	w.SetDeltaTime(frameDt)
	s.Update(w)

	if ecs.IsAlive(w, e) {
		t.Fatalf("expected entity destroyed after 1s")
	}
	if !ecs.IsAlive(w, child) || transformOf(w, child).Parent != 0 {
		t.Fatalf("children should survive detached")
	}
}
