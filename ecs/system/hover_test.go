package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

const fixedDt = 0.02

func addHover(w *ecs.World, e ecs.Entity, h *component.HoverController) *component.HoverController {
	_ = ecs.Add(w, e, component.HoverControllerComponent.Kind(), h)
	got, _ := ecs.Get(w, e, component.HoverControllerComponent.Kind())
	return got
}

func runFixed(w *ecs.World, s ecs.System, ticks int) {
	for i := 0; i < ticks; i++ {
		w.SetDeltaTime(fixedDt)
		s.Update(w)
		w.Advance(fixedDt)
	}
}

func TestHoverAltitudeApproachesTargetWithoutOvershoot(t *testing.T) {
	cases := []struct {
		name       string
		start      float64
		target     float64
		smoothness float64
	}{
		{"climb", 0, 10, 2},
		{"descend", 20, 5, 3},
		{"smoothing_clamped", 0, 10, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, _ := spawnBodyEntity(w, mgl64.Vec3{0, tc.start, 0})
			h := addHover(w, e, &component.HoverController{
				LiftForce:       10,
				HoverHeight:     tc.target,
				HoverSmoothness: tc.smoothness,
			})
			s := NewHoverSystem(quietLogger())

			prevGap := math.Abs(tc.target - tc.start)
			for i := 0; i < 300; i++ {
				runFixed(w, s, 1)
				gap := math.Abs(tc.target - h.CurrentHeight)
				if gap > prevGap+1e-12 {
					t.Fatalf("tick %d: smoothed altitude moved away from target (%.6f > %.6f)", i, gap, prevGap)
				}
				if (tc.target-tc.start)*(tc.target-h.CurrentHeight) < -1e-12 {
					t.Fatalf("tick %d: smoothed altitude overshot target: %.6f", i, h.CurrentHeight)
				}
				prevGap = gap
			}
			if prevGap > 0.01 {
				t.Fatalf("smoothed altitude should converge, gap %.4f", prevGap)
			}
		})
	}
}

func TestHoverInitDisablesGravityAndLifts(t *testing.T) {
	w := ecs.NewWorld()
	e, body := spawnBodyEntity(w, mgl64.Vec3{0, 0, 0})
	addHover(w, e, &component.HoverController{LiftForce: 10, HoverHeight: 5, HoverSmoothness: 1})
	s := NewHoverSystem(quietLogger())

	runFixed(w, s, 1)

	if body.gravity {
		t.Fatalf("hover controller should disable gravity on its body")
	}
	rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	if rb.UseGravity {
		t.Fatalf("rigid body config should mirror disabled gravity")
	}
	if len(body.forces) != 1 || body.forces[0].Y() <= 0 {
		t.Fatalf("expected one upward lift, got %v", body.forces)
	}
	if body.forces[0].X() != 0 || body.forces[0].Z() != 0 {
		t.Fatalf("lift must be vertical, got %v", body.forces[0])
	}
}

func TestHoverWaypointsCycleInOrder(t *testing.T) {
	w := ecs.NewWorld()
	e, _ := spawnBodyEntity(w, mgl64.Vec3{0, 5, 0})
	h := addHover(w, e, &component.HoverController{
		HoverHeight:       5,
		Speed:             10,
		RotationSpeed:     5,
		WaypointThreshold: 0.5,
		Waypoints: []component.Waypoint{
			{Position: mgl64.Vec3{0, 5, 0}},
			{Position: mgl64.Vec3{2, 5, 0}},
			{Position: mgl64.Vec3{2, 5, 2}},
		},
	})
	s := NewHoverSystem(quietLogger())

	var reached []int
	prev := h.CurrentWaypoint
	for i := 0; i < 400; i++ {
		runFixed(w, s, 1)
		if h.CurrentWaypoint < 0 || h.CurrentWaypoint >= len(h.Waypoints) {
			t.Fatalf("waypoint index out of range: %d", h.CurrentWaypoint)
		}
		if h.CurrentWaypoint != prev && h.CurrentWaypoint != (prev+1)%len(h.Waypoints) {
			t.Fatalf("index jumped from %d to %d", prev, h.CurrentWaypoint)
		}
		prev = h.CurrentWaypoint
		for _, evt := range w.Events().Drain() {
			if evt.Type == ecs.EventWaypointReached {
				reached = append(reached, evt.Index)
			}
		}
	}

	if len(reached) < 4 {
		t.Fatalf("expected the loop to wrap, reached %v", reached)
	}
	for i, idx := range reached {
		if idx != i%3 {
			t.Fatalf("waypoints reached out of order: %v", reached)
		}
	}
}

func TestHoverNormalizesStaleIndex(t *testing.T) {
	w := ecs.NewWorld()
	e, _ := spawnBodyEntity(w, mgl64.Vec3{0, 5, 0})
	h := addHover(w, e, &component.HoverController{
		Speed:             1,
		WaypointThreshold: 0.1,
		Waypoints:         []component.Waypoint{{Position: mgl64.Vec3{10, 5, 0}}, {Position: mgl64.Vec3{-10, 5, 0}}},
		CurrentWaypoint:   7,
	})

	runFixed(w, NewHoverSystem(quietLogger()), 1)

	if h.CurrentWaypoint != 1 {
		t.Fatalf("expected index 7 to wrap to 1, got %d", h.CurrentWaypoint)
	}
}

func TestHoverWithoutWaypointsOnlyLifts(t *testing.T) {
	w := ecs.NewWorld()
	start := mgl64.Vec3{3, 1, -2}
	e, body := spawnBodyEntity(w, start)
	addHover(w, e, &component.HoverController{LiftForce: 5, HoverHeight: 10, HoverSmoothness: 1, Speed: 10})

	runFixed(w, NewHoverSystem(quietLogger()), 50)

	if body.moves != 0 {
		t.Fatalf("no waypoints should mean no horizontal seek, got %d moves", body.moves)
	}
	if body.pos != start {
		t.Fatalf("body moved without waypoints: %v", body.pos)
	}
	if len(body.forces) != 50 {
		t.Fatalf("lift should be applied every tick, got %d", len(body.forces))
	}
}

func TestHoverSettersTakeEffectNextTick(t *testing.T) {
	w := ecs.NewWorld()
	e, body := spawnBodyEntity(w, mgl64.Vec3{0, 5, 0})
	h := addHover(w, e, &component.HoverController{
		HoverHeight:       5,
		HoverSmoothness:   1,
		Speed:             1,
		WaypointThreshold: 0.1,
		Waypoints:         []component.Waypoint{{Position: mgl64.Vec3{100, 5, 0}}},
	})
	s := NewHoverSystem(quietLogger())

	runFixed(w, s, 1)
	x0 := body.pos.X()

	h.SetMoveSpeed(4)
	h.SetHoverHeight(8)
	runFixed(w, s, 1)

	step := body.pos.X() - x0
	if math.Abs(step-4*fixedDt) > 1e-9 {
		t.Fatalf("expected seek step %.3f after SetMoveSpeed, got %.6f", 4*fixedDt, step)
	}
	if h.HoverHeight != 8 || h.CurrentHeight <= 5 {
		t.Fatalf("expected target 8 and rising smoothed altitude, got %.3f / %.3f", h.HoverHeight, h.CurrentHeight)
	}
}
