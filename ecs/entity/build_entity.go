package entity

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/prefabs"
)

// transportRefs holds the scene names a transport prefab points at until
// the scene can resolve them.
type transportRefs struct {
	Passenger    string
	DropPoint    string
	LandingPoint string
}

type buildContext struct {
	PrefabPath string
	Transport  *transportRefs
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":        addTransform,
	"rigid_body":       addRigidBody,
	"hover_controller": addHoverController,
	"transport":        addTransport,
	"parachute":        addParachute,
	"renderable":       addRenderable,
	"flight_script":    addFlightScript,
	"ttl":              addTTL,
	"passenger":        addPassenger,
	"marker":           addMarker,
}

var componentBuildOrder = []string{
	"transform",
	"passenger",
	"marker",
	"rigid_body",
	"hover_controller",
	"flight_script",
	"transport",
	"parachute",
	"ttl",
	"renderable",
}

// BuildEntity instantiates a prefab as a new entity.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	e, _, err := buildEntity(w, prefabPath, nil)
	return e, err
}

// SpawnAt instantiates a prefab and places it at pos. It matches
// system.SpawnFunc.
func SpawnAt(w *ecs.World, prefabPath string, pos mgl64.Vec3) (ecs.Entity, error) {
	e, err := BuildEntity(w, prefabPath)
	if err != nil {
		return 0, err
	}
	SetEntityPosition(w, e, pos)
	return e, nil
}

func buildEntity(w *ecs.World, prefabPath string, overrides map[string]any) (ecs.Entity, *buildContext, error) {
	if w == nil {
		return 0, nil, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, nil, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	components := mergeComponents(spec.Components, overrides)
	if len(components) == 0 {
		return 0, nil, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(components))
	for k, v := range components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, nil, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, nil, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, names[0])
	}

	_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name, Prefab: prefabPath})
	return e, ctx, nil
}

// mergeComponents overlays scene overrides on a prefab's components. Nested
// maps merge one level deep; anything else replaces the prefab value.
func mergeComponents(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		baseMap, okBase := out[k].(map[string]any)
		overMap, okOver := v.(map[string]any)
		if !okBase || !okOver {
			out[k] = v
			continue
		}
		merged := make(map[string]any, len(baseMap)+len(overMap))
		for bk, bv := range baseMap {
			merged[bk] = bv
		}
		for ovk, ovv := range overMap {
			merged[ovk] = ovv
		}
		out[k] = merged
	}
	return out
}

// SetEntityPosition moves an entity and, if it already has one, its body.
func SetEntityPosition(w *ecs.World, e ecs.Entity, pos mgl64.Vec3) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), component.NewTransform(pos))
		return
	}
	t.Position = pos
	if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body != nil {
		rb.Body.SetPosition(pos)
	}
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t := component.NewTransform(spec.Position.Vec())
	t.Rotation = eulerDegrees(spec.Rotation.Vec())
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func eulerDegrees(v mgl64.Vec3) mgl64.Quat {
	if v == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.AnglesToQuat(mgl64.DegToRad(v.X()), mgl64.DegToRad(v.Y()), mgl64.DegToRad(v.Z()), mgl64.XYZ).Normalize()
}

type rigidBodySpec = prefabs.RigidBodyComponentSpec

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[rigidBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode rigid body spec: %w", err)
	}
	return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Mass:       spec.Mass,
		Width:      spec.Width,
		Height:     spec.Height,
		Radius:     spec.Radius,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Kinematic:  spec.Kinematic,
		UseGravity: boolOr(spec.UseGravity, true),
		Collider:   boolOr(spec.Collider, true),
	})
}

type hoverControllerSpec = prefabs.HoverControllerComponentSpec

func addHoverController(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[hoverControllerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode hover controller spec: %w", err)
	}

	speed := floatOr(spec.WaypointSpeed, floatOr(spec.MoveSpeed, component.DefaultWaypointSpeed))
	turn := floatOr(spec.RotationSpeed, floatOr(spec.TurnSpeed, component.DefaultHoverRotationSpeed))

	waypoints := make([]component.Waypoint, 0, len(spec.Waypoints))
	for _, wp := range spec.Waypoints {
		waypoints = append(waypoints, component.Waypoint{
			Position: wp.Position.Vec(),
			Rotation: eulerDegrees(wp.Rotation.Vec()),
		})
	}

	return ecs.Add(w, e, component.HoverControllerComponent.Kind(), &component.HoverController{
		LiftForce:         floatOr(spec.LiftForce, component.DefaultLiftForce),
		HoverHeight:       floatOr(spec.HoverHeight, component.DefaultHoverHeight),
		HoverSmoothness:   floatOr(spec.HoverSmoothness, component.DefaultHoverSmoothness),
		Speed:             speed,
		RotationSpeed:     turn,
		WaypointThreshold: floatOr(spec.WaypointThreshold, component.DefaultWaypointThreshold),
		Waypoints:         waypoints,
	})
}

type transportSpec = prefabs.TransportComponentSpec

func addTransport(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transportSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transport spec: %w", err)
	}

	mode := component.TransportMode(spec.Mode)
	switch mode {
	case component.TransportModeParachuteDrop, component.TransportModeLandAndExit:
	case "":
		mode = component.TransportModeLandAndExit
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}

	path := make([]mgl64.Vec3, 0, len(spec.Path))
	for _, p := range spec.Path {
		path = append(path, p.Vec())
	}

	tr := &component.Transport{
		Path:              path,
		Mode:              mode,
		Speed:             floatOr(spec.Speed, component.DefaultTransportSpeed),
		RotationSpeed:     floatOr(spec.RotationSpeed, component.DefaultTransportRotationSpeed),
		LandingDelay:      floatOr(spec.LandingDelay, component.DefaultLandingDelay),
		SnapToStart:       boolOr(spec.SnapToStart, true),
		ArrivalRadius:     floatOr(spec.ArrivalRadius, component.DefaultArrivalRadius),
		DropDelay:         floatOr(spec.DropDelay, component.DefaultDropDelay),
		ExitDelay:         floatOr(spec.ExitDelay, component.DefaultExitDelay),
		PassengerOffset:   component.DefaultPassengerOffset,
		ParachuteVelocity: floatOr(spec.ParachuteVelocity, component.DefaultParachuteVelocity),
		ParachutePrefab:   spec.ParachutePrefab,
	}
	if spec.PassengerOffset != nil {
		tr.PassengerOffset = spec.PassengerOffset.Vec()
	}

	ctx.Transport = &transportRefs{
		Passenger:    spec.Passenger,
		DropPoint:    spec.DropPoint,
		LandingPoint: spec.LandingPoint,
	}
	return ecs.Add(w, e, component.TransportComponent.Kind(), tr)
}

type parachuteSpec = prefabs.ParachuteComponentSpec

func addParachute(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[parachuteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode parachute spec: %w", err)
	}
	return ecs.Add(w, e, component.ParachuteComponent.Kind(), &component.Parachute{
		LandingHeight: spec.LandingHeight,
		DespawnAfter:  spec.DespawnAfter,
	})
}

type renderableSpec = prefabs.RenderableComponentSpec

func addRenderable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderableSpec](raw)
	if err != nil {
		return fmt.Errorf("decode renderable spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{
		Width:  spec.Width,
		Height: spec.Height,
		Color:  spec.Color.RGBA,
		Layer:  spec.Layer,
	})
}

type flightScriptSpec = prefabs.FlightScriptComponentSpec

func addFlightScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[flightScriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode flight script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("flight script path is empty")
	}
	if _, err := prefabs.LoadScript(spec.Path); err != nil {
		return fmt.Errorf("load flight script %q: %w", spec.Path, err)
	}
	return ecs.Add(w, e, component.FlightScriptComponent.Kind(), &component.FlightScript{Path: spec.Path})
}

type ttlSpec = prefabs.TTLComponentSpec

func addTTL(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[ttlSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ttl spec: %w", err)
	}
	return ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Seconds: spec.Seconds})
}

func addPassenger(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PassengerComponent.Kind(), &component.Passenger{})
}

func addMarker(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.MarkerComponent.Kind(), &component.Marker{})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
