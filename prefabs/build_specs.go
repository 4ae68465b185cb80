package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Position Vec3 `yaml:"position"`
	// Rotation is Euler angles in degrees.
	Rotation Vec3 `yaml:"rotation"`
}

type RigidBodyComponentSpec struct {
	Mass       float64 `yaml:"mass"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Radius     float64 `yaml:"radius"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Kinematic  bool    `yaml:"kinematic"`
	UseGravity *bool   `yaml:"use_gravity"`
	Collider   *bool   `yaml:"collider"`
}

type WaypointComponentSpec struct {
	Position Vec3 `yaml:"position"`
	Rotation Vec3 `yaml:"rotation"`
}

// HoverControllerComponentSpec fields are pointers so an explicit zero is kept
// and only absent keys fall back to defaults.
type HoverControllerComponentSpec struct {
	LiftForce         *float64 `yaml:"lift_force"`
	HoverHeight       *float64 `yaml:"hover_height"`
	HoverSmoothness   *float64 `yaml:"hover_smoothness"`
	WaypointSpeed     *float64 `yaml:"waypoint_speed"`
	MoveSpeed         *float64 `yaml:"move_speed"`
	RotationSpeed     *float64 `yaml:"rotation_speed"`
	TurnSpeed         *float64 `yaml:"turn_speed"`
	WaypointThreshold *float64 `yaml:"waypoint_threshold"`

	Waypoints []WaypointComponentSpec `yaml:"waypoints"`
}

type TransportComponentSpec struct {
	// Mode is parachute_drop or land_and_exit; empty means land_and_exit.
	Mode          string   `yaml:"mode"`
	Path          []Vec3   `yaml:"path"`
	Speed         *float64 `yaml:"speed"`
	RotationSpeed *float64 `yaml:"rotation_speed"`
	LandingDelay  *float64 `yaml:"landing_delay"`
	SnapToStart   *bool    `yaml:"snap_to_start"`

	ArrivalRadius     *float64 `yaml:"arrival_radius"`
	DropDelay         *float64 `yaml:"drop_delay"`
	ExitDelay         *float64 `yaml:"exit_delay"`
	PassengerOffset   *Vec3    `yaml:"passenger_offset"`
	ParachuteVelocity *float64 `yaml:"parachute_velocity"`
	ParachutePrefab   string   `yaml:"parachute_prefab"`

	// Scene names of the referenced entities.
	Passenger    string `yaml:"passenger"`
	DropPoint    string `yaml:"drop_point"`
	LandingPoint string `yaml:"landing_point"`
}

type ParachuteComponentSpec struct {
	LandingHeight float64 `yaml:"landing_height"`
	DespawnAfter  float64 `yaml:"despawn_after"`
}

type RenderableComponentSpec struct {
	Width  float64   `yaml:"width"`
	Height float64   `yaml:"height"`
	Color  YAMLColor `yaml:"color"`
	Layer  int       `yaml:"layer"`
}

type FlightScriptComponentSpec struct {
	Path string `yaml:"path"`
}

type TTLComponentSpec struct {
	Seconds float64 `yaml:"seconds"`
}
