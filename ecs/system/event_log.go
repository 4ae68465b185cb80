package system

import (
	"github.com/milk9111/helicopter/ecs"
	"github.com/rs/zerolog"
)

// EventLogSystem drains the frame's events, logs them and hands them to an
// optional sink.
type EventLogSystem struct {
	log  zerolog.Logger
	sink func(ecs.Event)
}

func NewEventLogSystem(log zerolog.Logger, sink func(ecs.Event)) *EventLogSystem {
	return &EventLogSystem{
		log:  log.With().Str("system", "events").Logger(),
		sink: sink,
	}
}

func (s *EventLogSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, evt := range w.Events().Drain() {
		ev := s.log.Debug()
		if evt.Type == ecs.EventMissionCompleted || evt.Type == ecs.EventParachuteLanded {
			ev = s.log.Info()
		}
		ev.Str("event", string(evt.Type)).
			Stringer("entity", evt.Entity).
			Stringer("other", evt.Other).
			Int("index", evt.Index).
			Float64("t", evt.Time).
			Msg("event")
		if s.sink != nil {
			s.sink(evt)
		}
	}
}
