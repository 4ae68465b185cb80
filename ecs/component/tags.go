package component

// Passenger marks an entity the transport can carry.
type Passenger struct{}

var PassengerComponent = NewComponent[Passenger]()

// Marker is a named point in the scene (drop point, landing point).
type Marker struct{}

var MarkerComponent = NewComponent[Marker]()
