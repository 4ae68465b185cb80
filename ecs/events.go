package ecs

// EventType names a simulation event.
type EventType string

const (
	EventWaypointReached   EventType = "waypoint_reached"
	EventPathPointReached  EventType = "path_point_reached"
	EventEndingStarted     EventType = "ending_started"
	EventPassengerAttached EventType = "passenger_attached"
	EventPassengerDetached EventType = "passenger_detached"
	EventVehicleLanded     EventType = "vehicle_landed"
	EventParachuteSpawned  EventType = "parachute_spawned"
	EventParachuteLanded   EventType = "parachute_landed"
	EventMissionCompleted  EventType = "mission_completed"
)

// Event is emitted by systems and drained once per frame.
type Event struct {
	Type   EventType
	Entity Entity
	// Other is the second party of the event (new parent, spawned parachute).
	Other Entity
	// Index is the waypoint or path index for arrival events.
	Index int
	Time  float64
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}

// Emit pushes an event stamped with the world clock.
func Emit(w *World, evt Event) {
	if w == nil {
		return
	}
	evt.Time = w.elapsed
	w.events.Push(evt)
}
