package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/physics"
)

// RigidBody stores body configuration and, once the physics system has
// created it, the runtime body handle.
type RigidBody struct {
	Body       physics.Body
	Mass       float64
	Width      float64
	Height     float64
	Radius     float64
	Friction   float64
	Elasticity float64
	Kinematic  bool
	UseGravity bool
	Collider   bool

	// InitialVelocity is applied once when the body is created.
	InitialVelocity mgl64.Vec3
}

var RigidBodyComponent = NewComponent[RigidBody]()
