package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeBody
)

const defaultBodySize = 1.0

// Config tunes a physics world.
type Config struct {
	// Gravity is the vertical acceleration (negative pulls down).
	Gravity     float64
	GroundLevel float64
}

// World owns the Chipmunk space. Chipmunk simulates the vertical plane
// (X, Y up); the depth axis Z is integrated by each body alongside it.
type World struct {
	space       *cp.Space
	ground      *cp.Shape
	groundLevel float64
	bodies      map[*body]struct{}
}

// NewWorld creates a space with a static ground line at cfg.GroundLevel.
func NewWorld(cfg Config) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})

	ground := cp.NewSegment(space.StaticBody, cp.Vector{X: -1e5, Y: cfg.GroundLevel}, cp.Vector{X: 1e5, Y: cfg.GroundLevel}, 0)
	ground.SetFriction(1)
	ground.SetCollisionType(collisionTypeGround)
	space.AddShape(ground)

	return &World{
		space:       space,
		ground:      ground,
		groundLevel: cfg.GroundLevel,
		bodies:      make(map[*body]struct{}),
	}
}

// GroundLevel returns the height of the ground line.
func (w *World) GroundLevel() float64 {
	if w == nil {
		return 0
	}
	return w.groundLevel
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return len(w.bodies)
}

// NewBody creates a body and adds it to the space.
func (w *World) NewBody(cfg BodyConfig) Body {
	if w == nil || w.space == nil {
		return nil
	}
	mass := cfg.Mass
	if mass <= 0 {
		mass = 1
	}

	cpBody := cp.NewBody(mass, math.Inf(1))
	cpBody.SetPosition(cp.Vector{X: cfg.Position.X(), Y: cfg.Position.Y()})

	var shape *cp.Shape
	if cfg.Radius > 0 {
		shape = cp.NewCircle(cpBody, cfg.Radius, cp.Vector{})
	} else {
		width, height := cfg.Width, cfg.Height
		if width <= 0 {
			width = defaultBodySize
		}
		if height <= 0 {
			height = defaultBodySize
		}
		shape = cp.NewBox(cpBody, width, height, 0)
	}
	shape.SetFriction(cfg.Friction)
	shape.SetElasticity(cfg.Elasticity)
	shape.SetCollisionType(collisionTypeBody)

	b := &body{
		world:    w,
		cp:       cpBody,
		shape:    shape,
		z:        cfg.Position.Z(),
		mass:     mass,
		gravity:  cfg.Gravity,
		collider: cfg.Collider,
	}
	cpBody.SetVelocityUpdateFunc(func(cb *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		if !b.gravity {
			gravity = cp.Vector{}
		}
		cp.BodyUpdateVelocity(cb, gravity, damping, dt)
	})

	w.space.AddBody(cpBody)
	if cfg.Collider {
		w.space.AddShape(shape)
	}
	if cfg.Kinematic {
		b.SetKinematic(true)
	}
	w.bodies[b] = struct{}{}
	return b
}

// RemoveBody takes a body and its shape out of the space.
func (w *World) RemoveBody(handle Body) {
	b, ok := handle.(*body)
	if w == nil || !ok || b == nil || b.world != w {
		return
	}
	if b.collider {
		w.space.RemoveShape(b.shape)
	}
	w.space.RemoveBody(b.cp)
	delete(w.bodies, b)
	b.world = nil
}

// Step applies pending moves, advances the solver and integrates depth.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil || dt <= 0 {
		return
	}
	for b := range w.bodies {
		b.applyPendingMove()
		b.integrateDepthVelocity(dt)
	}
	w.space.Step(dt)
	for b := range w.bodies {
		b.z += b.vz * dt
	}
}

type body struct {
	world *World
	cp    *cp.Body
	shape *cp.Shape

	z, vz, fz float64
	mass      float64

	kinematic bool
	gravity   bool
	collider  bool

	pendingMove *mgl64.Vec3
}

func (b *body) Position() mgl64.Vec3 {
	p := b.cp.Position()
	return mgl64.Vec3{p.X, p.Y, b.z}
}

func (b *body) SetPosition(p mgl64.Vec3) {
	b.pendingMove = nil
	b.cp.SetPosition(cp.Vector{X: p.X(), Y: p.Y()})
	b.z = p.Z()
}

func (b *body) MovePosition(p mgl64.Vec3) {
	b.pendingMove = &p
}

func (b *body) applyPendingMove() {
	if b.pendingMove == nil {
		return
	}
	target := *b.pendingMove
	b.pendingMove = nil
	b.cp.SetPosition(cp.Vector{X: target.X(), Y: target.Y()})
	b.z = target.Z()
}

func (b *body) Velocity() mgl64.Vec3 {
	v := b.cp.Velocity()
	return mgl64.Vec3{v.X, v.Y, b.vz}
}

func (b *body) SetVelocity(v mgl64.Vec3) {
	b.cp.SetVelocity(v.X(), v.Y())
	b.vz = v.Z()
}

func (b *body) AddForce(f mgl64.Vec3, mode ForceMode) {
	if b.kinematic {
		return
	}
	if mode == ForceModeAcceleration {
		f = f.Mul(b.mass)
	}
	b.cp.SetForce(b.cp.Force().Add(cp.Vector{X: f.X(), Y: f.Y()}))
	b.fz += f.Z()
}

// integrateDepthVelocity mirrors Chipmunk's velocity pass for the Z axis.
// Forces on Z are consumed here the same way cp resets its own each step.
func (b *body) integrateDepthVelocity(dt float64) {
	if !b.kinematic {
		b.vz += b.fz / b.mass * dt
	}
	b.fz = 0
}

func (b *body) Kinematic() bool {
	return b.kinematic
}

func (b *body) SetKinematic(kinematic bool) {
	if b.kinematic == kinematic {
		return
	}
	b.kinematic = kinematic
	if kinematic {
		b.cp.SetType(cp.BODY_KINEMATIC)
		b.cp.SetVelocity(0, 0)
		b.vz = 0
		b.fz = 0
		return
	}
	b.cp.SetType(cp.BODY_DYNAMIC)
	b.cp.SetMass(b.mass)
	b.cp.SetMoment(math.Inf(1))
}

func (b *body) ColliderEnabled() bool {
	return b.collider
}

func (b *body) SetColliderEnabled(enabled bool) {
	if b.collider == enabled {
		return
	}
	b.collider = enabled
	if b.world == nil {
		return
	}
	if enabled {
		b.world.space.AddShape(b.shape)
	} else {
		b.world.space.RemoveShape(b.shape)
	}
}

func (b *body) GravityEnabled() bool {
	return b.gravity
}

func (b *body) SetGravityEnabled(enabled bool) {
	b.gravity = enabled
}

func (b *body) Mass() float64 {
	return b.mass
}
