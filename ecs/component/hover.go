package component

import "github.com/go-gl/mathgl/mgl64"

// Defaults for hover tunables a prefab leaves out.
const (
	DefaultLiftForce          = 5.0
	DefaultHoverHeight        = 10.0
	DefaultHoverSmoothness    = 2.0
	DefaultWaypointSpeed      = 10.0
	DefaultHoverRotationSpeed = 2.0
	DefaultWaypointThreshold  = 2.0
)

// Waypoint is a patrol target. Rotation is carried for scene authoring; the
// controller only seeks Position.
type Waypoint struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// HoverController keeps a body near HoverHeight while cycling through
// Waypoints forever.
type HoverController struct {
	LiftForce         float64
	HoverHeight       float64
	HoverSmoothness   float64
	Speed             float64
	RotationSpeed     float64
	WaypointThreshold float64
	Waypoints         []Waypoint

	CurrentHeight   float64
	CurrentWaypoint int
	Initialized     bool
}

// SetHoverHeight changes the target altitude from the next tick on.
func (h *HoverController) SetHoverHeight(height float64) {
	h.HoverHeight = height
}

// SetMoveSpeed changes the horizontal seek speed from the next tick on.
func (h *HoverController) SetMoveSpeed(speed float64) {
	h.Speed = speed
}

var HoverControllerComponent = NewComponent[HoverController]()
