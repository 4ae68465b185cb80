package component

// Parachute carries attached entities down until it is LandingHeight above
// the ground, then lets go of them.
type Parachute struct {
	LandingHeight float64
	// DespawnAfter is the TTL the canopy gets once it has landed.
	DespawnAfter float64
	Landed       bool
}

var ParachuteComponent = NewComponent[Parachute]()
