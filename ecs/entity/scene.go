package entity

import (
	"fmt"

	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/ecs/system"
	"github.com/milk9111/helicopter/prefabs"
)

// Scene is a loaded scene: its entities by scene name.
type Scene struct {
	Name     string
	Entities map[string]ecs.Entity
	// Names in load order.
	Order []string
}

func (s *Scene) Lookup(name string) (ecs.Entity, bool) {
	if s == nil {
		return 0, false
	}
	e, ok := s.Entities[name]
	return e, ok
}

type pendingTransport struct {
	name   string
	entity ecs.Entity
	refs   transportRefs
}

// LoadScene builds every entity of a scene, applies placement and parenting,
// then resolves and checks transport references. On error nothing the scene
// created is left in the world.
func LoadScene(w *ecs.World, name string) (*Scene, error) {
	spec, err := prefabs.LoadSceneSpec(name)
	if err != nil {
		return nil, fmt.Errorf("load scene %q: %w", name, err)
	}
	scene, err := buildScene(w, spec)
	if err != nil {
		return nil, fmt.Errorf("load scene %q: %w", name, err)
	}
	return scene, nil
}

func buildScene(w *ecs.World, spec prefabs.SceneSpec) (scene *Scene, err error) {
	scene = &Scene{Name: spec.Name, Entities: make(map[string]ecs.Entity)}
	defer func() {
		if err != nil {
			for _, e := range scene.Entities {
				ecs.DestroyEntity(w, e)
			}
			scene = nil
		}
	}()

	var transports []pendingTransport
	for i, ent := range spec.Entities {
		entName := ent.Name
		if entName == "" {
			entName = fmt.Sprintf("%s#%d", ent.Prefab, i)
		}
		if _, dup := scene.Entities[entName]; dup {
			return scene, fmt.Errorf("%w: %q", ErrDuplicateName, entName)
		}

		e, ctx, err := buildEntity(w, ent.Prefab, ent.Overrides)
		if err != nil {
			return scene, err
		}
		scene.Entities[entName] = e
		scene.Order = append(scene.Order, entName)

		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
			n.Value = entName
		}
		if ent.Position != nil {
			SetEntityPosition(w, e, ent.Position.Vec())
		}
		if ctx.Transport != nil {
			transports = append(transports, pendingTransport{name: entName, entity: e, refs: *ctx.Transport})
		}
	}

	for i, ent := range spec.Entities {
		if ent.Parent == "" {
			continue
		}
		childName := scene.Order[i]
		parent, ok := scene.Entities[ent.Parent]
		if !ok {
			return scene, fmt.Errorf("%w: %q parent %q", ErrMissingReference, childName, ent.Parent)
		}
		if !system.Attach(w, scene.Entities[childName], parent) {
			return scene, fmt.Errorf("%w: %q under %q", ErrInvalidParent, childName, ent.Parent)
		}
	}

	for _, pt := range transports {
		if err := resolveTransport(w, scene, pt); err != nil {
			return scene, err
		}
	}
	return scene, nil
}

func resolveTransport(w *ecs.World, scene *Scene, pt pendingTransport) error {
	tr, ok := ecs.Get(w, pt.entity, component.TransportComponent.Kind())
	if !ok {
		return nil
	}

	lookup := func(role, ref string, required bool) (uint64, error) {
		if ref == "" {
			if required {
				return 0, fmt.Errorf("%w: transport %q has no %s", ErrMissingReference, pt.name, role)
			}
			return 0, nil
		}
		e, ok := scene.Lookup(ref)
		if !ok {
			return 0, fmt.Errorf("%w: transport %q %s %q not in scene", ErrMissingReference, pt.name, role, ref)
		}
		return uint64(e), nil
	}

	dropMode := tr.Mode == component.TransportModeParachuteDrop
	var err error
	if tr.Passenger, err = lookup("passenger", pt.refs.Passenger, true); err != nil {
		return err
	}
	if tr.DropPoint, err = lookup("drop point", pt.refs.DropPoint, dropMode); err != nil {
		return err
	}
	if tr.LandingPoint, err = lookup("landing point", pt.refs.LandingPoint, !dropMode); err != nil {
		return err
	}

	passenger := ecs.Entity(tr.Passenger)
	if !ecs.Has(w, passenger, component.RigidBodyComponent.Kind()) {
		return fmt.Errorf("%w: transport %q passenger %q", ErrNoRigidBody, pt.name, pt.refs.Passenger)
	}
	if dropMode {
		if tr.ParachutePrefab == "" {
			return fmt.Errorf("%w: transport %q has no parachute prefab", ErrMissingReference, pt.name)
		}
		if !prefabs.Exists(tr.ParachutePrefab) {
			return fmt.Errorf("%w: transport %q parachute prefab %q", ErrMissingReference, pt.name, tr.ParachutePrefab)
		}
	}
	return nil
}
