package component

// FlightScript points a hover controller at a tengo script whose update
// function may retune it while flying.
type FlightScript struct {
	Path string
}

var FlightScriptComponent = NewComponent[FlightScript]()
