package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/physics"
	"github.com/rs/zerolog"
)

// fakeBody moves instantly on MovePosition and records forces.
type fakeBody struct {
	pos       mgl64.Vec3
	vel       mgl64.Vec3
	kinematic bool
	collider  bool
	gravity   bool
	mass      float64

	forces []mgl64.Vec3
	moves  int
}

var _ physics.Body = (*fakeBody)(nil)

func newFakeBody(pos mgl64.Vec3) *fakeBody {
	return &fakeBody{pos: pos, collider: true, gravity: true, mass: 1}
}

func (b *fakeBody) Position() mgl64.Vec3       { return b.pos }
func (b *fakeBody) SetPosition(p mgl64.Vec3)   { b.pos = p }
func (b *fakeBody) Velocity() mgl64.Vec3       { return b.vel }
func (b *fakeBody) SetVelocity(v mgl64.Vec3)   { b.vel = v }
func (b *fakeBody) Kinematic() bool            { return b.kinematic }
func (b *fakeBody) SetKinematic(k bool)        { b.kinematic = k }
func (b *fakeBody) ColliderEnabled() bool      { return b.collider }
func (b *fakeBody) SetColliderEnabled(on bool) { b.collider = on }
func (b *fakeBody) GravityEnabled() bool       { return b.gravity }
func (b *fakeBody) SetGravityEnabled(on bool)  { b.gravity = on }
func (b *fakeBody) Mass() float64              { return b.mass }

func (b *fakeBody) MovePosition(p mgl64.Vec3) {
	b.pos = p
	b.moves++
}

func (b *fakeBody) AddForce(f mgl64.Vec3, _ physics.ForceMode) {
	b.forces = append(b.forces, f)
}

func quietLogger() zerolog.Logger {
	return zerolog.Nop()
}

// spawnBodyEntity creates an entity with a transform and a rigid body backed
// by a fake.
func spawnBodyEntity(w *ecs.World, pos mgl64.Vec3) (ecs.Entity, *fakeBody) {
	e := ecs.CreateEntity(w)
	body := newFakeBody(pos)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(pos))
	_ = ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Body:       body,
		Mass:       1,
		UseGravity: true,
		Collider:   true,
	})
	return e, body
}

func drainTypes(w *ecs.World) []ecs.EventType {
	var out []ecs.EventType
	for _, evt := range w.Events().Drain() {
		out = append(out, evt.Type)
	}
	return out
}

func countType(events []ecs.Event, typ ecs.EventType) int {
	n := 0
	for _, evt := range events {
		if evt.Type == typ {
			n++
		}
	}
	return n
}
