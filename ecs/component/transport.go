package component

import "github.com/go-gl/mathgl/mgl64"

type TransportMode string

const (
	TransportModeParachuteDrop TransportMode = "parachute_drop"
	TransportModeLandAndExit   TransportMode = "land_and_exit"
)

type TransportPhase string

const (
	TransportIdle            TransportPhase = "idle"
	TransportFollowing       TransportPhase = "following"
	TransportAwaitingDrop    TransportPhase = "awaiting_drop"
	TransportAwaitingLanding TransportPhase = "awaiting_landing"
	TransportLanded          TransportPhase = "landed"
	TransportCompleted       TransportPhase = "completed"
)

const (
	DefaultTransportSpeed         = 10.0
	DefaultLandingDelay           = 3.0
	DefaultTransportRotationSpeed = 2.0
	DefaultArrivalRadius          = 0.5
	DefaultDropDelay              = 1.0
	DefaultExitDelay              = 2.0
	DefaultParachuteVelocity      = -2.0
)

var DefaultPassengerOffset = mgl64.Vec3{0, 1, 0}

// Transport flies a fixed path once, then runs one scripted ending that hands
// the passenger off.
type Transport struct {
	Path          []mgl64.Vec3
	Mode          TransportMode
	Speed         float64
	RotationSpeed float64
	LandingDelay  float64
	SnapToStart   bool

	ArrivalRadius     float64
	DropDelay         float64
	ExitDelay         float64
	PassengerOffset   mgl64.Vec3
	ParachuteVelocity float64
	ParachutePrefab   string

	// Entity references (ecs.Entity values).
	Passenger    uint64
	DropPoint    uint64
	LandingPoint uint64

	Phase            TransportPhase
	PathIndex        int
	Timer            float64
	MissionCompleted bool
	Parachute        uint64
}

var TransportComponent = NewComponent[Transport]()
