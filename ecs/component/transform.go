package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is an entity's world pose. While Parent is set the hierarchy
// system derives Position and Rotation from the parent and the local pose.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat

	Parent        uint64 // ecs.Entity of the parent, 0 when detached
	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
}

func NewTransform(pos mgl64.Vec3) *Transform {
	return &Transform{
		Position:      pos,
		Rotation:      mgl64.QuatIdent(),
		LocalRotation: mgl64.QuatIdent(),
	}
}

var TransformComponent = NewComponent[Transform]()
