package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
)

const maxHierarchyDepth = 16

// HierarchySystem derives world poses of parented entities and drags their
// bodies along so the solver never moves an attached entity on its own.
type HierarchySystem struct{}

func NewHierarchySystem() *HierarchySystem {
	return &HierarchySystem{}
}

func (s *HierarchySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	synced := make(map[ecs.Entity]bool)
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, t *component.Transform) {
		if t.Parent == 0 {
			return
		}
		syncTransform(w, e, synced, 0)
	})
}

// SyncTransform recomputes the world pose of e from its parents right away.
func SyncTransform(w *ecs.World, e ecs.Entity) {
	syncTransform(w, e, make(map[ecs.Entity]bool), 0)
}

func syncTransform(w *ecs.World, e ecs.Entity, synced map[ecs.Entity]bool, depth int) {
	if synced[e] || depth > maxHierarchyDepth {
		return
	}
	synced[e] = true

	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t.Parent == 0 {
		return
	}
	parent, ok := ecs.Resolve(w, t.Parent)
	if !ok {
		t.Parent = 0
		return
	}
	syncTransform(w, parent, synced, depth+1)

	pt, ok := ecs.Get(w, parent, component.TransformComponent.Kind())
	if !ok {
		return
	}
	t.Position = pt.Position.Add(pt.Rotation.Rotate(t.LocalPosition))
	t.Rotation = pt.Rotation.Mul(t.LocalRotation).Normalize()

	if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body != nil {
		rb.Body.SetPosition(t.Position)
		rb.Body.SetVelocity(mgl64.Vec3{})
	}
}

// Attach parents child to parent keeping the child's current world pose.
func Attach(w *ecs.World, child, parent ecs.Entity) bool {
	ct, pt, ok := attachable(w, child, parent)
	if !ok {
		return false
	}
	inv := pt.Rotation.Inverse()
	ct.LocalPosition = inv.Rotate(ct.Position.Sub(pt.Position))
	ct.LocalRotation = inv.Mul(ct.Rotation).Normalize()
	ct.Parent = uint64(parent)
	SyncTransform(w, child)
	return true
}

// AttachAt parents child to parent at a local offset with no local rotation.
func AttachAt(w *ecs.World, child, parent ecs.Entity, local mgl64.Vec3) bool {
	ct, _, ok := attachable(w, child, parent)
	if !ok {
		return false
	}
	ct.LocalPosition = local
	ct.LocalRotation = mgl64.QuatIdent()
	ct.Parent = uint64(parent)
	SyncTransform(w, child)
	return true
}

// Detach clears the parent of child, leaving it where it is in the world.
func Detach(w *ecs.World, child ecs.Entity) bool {
	ct, ok := ecs.Get(w, child, component.TransformComponent.Kind())
	if !ok || ct.Parent == 0 {
		return false
	}
	SyncTransform(w, child)
	ct.Parent = 0
	ct.LocalPosition = mgl64.Vec3{}
	ct.LocalRotation = mgl64.QuatIdent()
	return true
}

// Children returns the live entities directly parented to parent.
func Children(w *ecs.World, parent ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, t *component.Transform) {
		if t.Parent == uint64(parent) {
			out = append(out, e)
		}
	})
	return out
}

func attachable(w *ecs.World, child, parent ecs.Entity) (*component.Transform, *component.Transform, bool) {
	if child == parent {
		return nil, nil, false
	}
	ct, ok := ecs.Get(w, child, component.TransformComponent.Kind())
	if !ok {
		return nil, nil, false
	}
	pt, ok := ecs.Get(w, parent, component.TransformComponent.Kind())
	if !ok {
		return nil, nil, false
	}
	// Refuse cycles: parent must not already hang below child.
	for ref, depth := pt.Parent, 0; ref != 0 && depth <= maxHierarchyDepth; depth++ {
		if ref == uint64(child) {
			return nil, nil, false
		}
		up, ok := ecs.Resolve(w, ref)
		if !ok {
			break
		}
		ut, ok := ecs.Get(w, up, component.TransformComponent.Kind())
		if !ok {
			break
		}
		ref = ut.Parent
	}
	// Bring both poses up to date before rebasing.
	SyncTransform(w, parent)
	SyncTransform(w, child)
	return ct, pt, true
}
