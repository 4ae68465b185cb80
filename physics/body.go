package physics

import "github.com/go-gl/mathgl/mgl64"

// ForceMode selects how AddForce interprets its vector.
type ForceMode int

const (
	// ForceModeForce applies a force scaled by the inverse mass.
	ForceModeForce ForceMode = iota
	// ForceModeAcceleration applies an acceleration regardless of mass.
	ForceModeAcceleration
)

// Body is the rigid body collaborator systems drive. Systems only call these
// methods; the solver behind them is owned by a World.
type Body interface {
	Position() mgl64.Vec3
	// SetPosition teleports the body.
	SetPosition(p mgl64.Vec3)
	// MovePosition moves the body to p during the next step.
	MovePosition(p mgl64.Vec3)
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	AddForce(f mgl64.Vec3, mode ForceMode)
	Kinematic() bool
	SetKinematic(kinematic bool)
	ColliderEnabled() bool
	SetColliderEnabled(enabled bool)
	GravityEnabled() bool
	SetGravityEnabled(enabled bool)
	Mass() float64
}

// BodyConfig describes a body to create.
type BodyConfig struct {
	Position   mgl64.Vec3
	Mass       float64
	Width      float64
	Height     float64
	Radius     float64
	Friction   float64
	Elasticity float64
	Kinematic  bool
	Gravity    bool
	// Collider false creates the body with its shape out of the space.
	Collider bool
}
