// Package sim wires the world, physics and both update schedules into one
// steppable simulation.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/milk9111/helicopter/config"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/ecs/entity"
	"github.com/milk9111/helicopter/ecs/system"
	"github.com/milk9111/helicopter/physics"
	"github.com/milk9111/helicopter/prefabs"
	"github.com/rs/zerolog"
)

const stepEpsilon = 1e-9

// Sim owns one loaded scene. Fixed-step systems (flight scripts, hover,
// hierarchy, physics) run from an accumulator; frame systems (transport,
// hierarchy, parachutes, TTL, events) run once per Frame call.
type Sim struct {
	RunID string

	// Realtime paces Run against the wall clock.
	Realtime bool

	cfg  *config.Config
	log  zerolog.Logger
	sink func(ecs.Event)

	world     *ecs.World
	physics   *physics.World
	scene     *entity.Scene
	sceneName string
	fixed     *ecs.Scheduler
	frame     *ecs.Scheduler
	scripts   *system.FlightScriptSystem

	accumulator float64
	frames      int
	ticks       int
	counts      map[ecs.EventType]int
}

// New builds a simulation and loads cfg.Scene. sink, when set, receives every
// drained event after it has been logged.
func New(cfg *config.Config, log zerolog.Logger, sink func(ecs.Event)) (*Sim, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s := &Sim{
		RunID: id,
		cfg:   cfg,
		log:   log.With().Str("run", id).Logger(),
		sink:  sink,
	}
	if err := s.load(cfg.Scene); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sim) load(name string) error {
	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, name)
	if err != nil {
		return fmt.Errorf("sim: load scene %q: %w", name, err)
	}

	pw := physics.NewWorld(physics.Config{Gravity: s.cfg.Gravity, GroundLevel: s.cfg.GroundLevel})
	scripts := system.NewFlightScriptSystem(prefabs.LoadScript, s.log)
	hierarchy := system.NewHierarchySystem()

	s.world = w
	s.physics = pw
	s.scene = scene
	s.sceneName = name
	s.scripts = scripts
	s.fixed = ecs.NewScheduler(
		scripts,
		system.NewHoverSystem(s.log),
		hierarchy,
		system.NewPhysicsSystem(pw, s.log),
	)
	s.frame = ecs.NewScheduler(
		system.NewTransportSystem(entity.SpawnAt, s.log),
		hierarchy,
		system.NewParachuteSystem(pw.GroundLevel(), s.log),
		system.NewTTLSystem(),
		system.NewEventLogSystem(s.log, s.record),
	)
	s.accumulator = 0
	s.frames = 0
	s.ticks = 0
	s.counts = make(map[ecs.EventType]int)

	s.log.Info().
		Str("scene", name).
		Int("entities", len(scene.Order)).
		Float64("fixed_step", s.cfg.FixedStep).
		Msg("scene loaded")
	return nil
}

func (s *Sim) record(evt ecs.Event) {
	s.counts[evt.Type]++
	if s.sink != nil {
		s.sink(evt)
	}
}

// Reload rebuilds the world from the current scene file. On failure the
// running world is kept.
func (s *Sim) Reload() error {
	name := s.sceneName
	prev := *s
	if err := s.load(name); err != nil {
		*s = prev
		s.log.Error().Err(err).Str("scene", name).Msg("scene reload failed")
		return err
	}
	ev := s.log.Info().Str("scene", name)
	if modified, ok := prefabs.ModTime(prefabs.ScenePath(name)); ok {
		ev = ev.Time("modified", modified)
	}
	ev.Msg("scene reloaded")
	return nil
}

// InvalidateScripts drops compiled flight scripts so the next tick recompiles
// them from disk.
func (s *Sim) InvalidateScripts() {
	s.scripts.Invalidate()
	s.log.Info().Msg("flight scripts invalidated")
}

// Frame advances the clock by dt, runs as many fixed steps as the
// accumulator allows (capped by MaxFixedSteps) and then the frame schedule.
func (s *Sim) Frame(dt float64) {
	if dt <= 0 {
		return
	}
	s.world.Advance(dt)
	s.accumulator += dt

	step := s.cfg.FixedStep
	n := 0
	for s.accumulator+stepEpsilon >= step && n < s.cfg.MaxFixedSteps {
		s.fixed.Update(s.world, step)
		s.accumulator -= step
		n++
	}
	if s.accumulator+stepEpsilon >= step {
		s.log.Warn().
			Float64("behind", s.accumulator).
			Int("steps", n).
			Msg("fixed step budget exhausted, dropping time")
		s.accumulator = 0
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}
	s.ticks += n

	s.frame.Update(s.world, dt)
	s.world.FlushEvents()
	s.frames++
}

// Run steps the simulation with a constant frame step until ctx is done or
// duration seconds of simulated time have elapsed. A non-positive duration
// runs until Done reports true.
func (s *Sim) Run(ctx context.Context, frameDt, duration float64) error {
	if frameDt <= 0 {
		frameDt = s.cfg.FrameStep
	}
	var tick <-chan time.Time
	if s.Realtime {
		ticker := time.NewTicker(time.Duration(frameDt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	s.log.Info().Float64("frame_step", frameDt).Float64("duration", duration).Msg("run started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Float64("t", s.world.Elapsed()).Msg("run cancelled")
			return ctx.Err()
		default:
		}
		if duration > 0 && s.world.Elapsed()+stepEpsilon >= duration {
			break
		}
		if duration <= 0 && s.Done() {
			break
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
		s.Frame(frameDt)
	}

	s.log.Info().
		Float64("t", s.world.Elapsed()).
		Int("frames", s.frames).
		Int("fixed_steps", s.ticks).
		Int("missions", s.counts[ecs.EventMissionCompleted]).
		Msg("run finished")
	return nil
}

// Done reports whether every transport has finished (or has nothing to do)
// and no parachute is still in the air. Hovering aircraft never finish.
func (s *Sim) Done() bool {
	done := true
	ecs.ForEach(s.world, component.TransportComponent.Kind(), func(_ ecs.Entity, tr *component.Transport) {
		if len(tr.Path) > 0 && !tr.MissionCompleted {
			done = false
		}
	})
	ecs.ForEach(s.world, component.ParachuteComponent.Kind(), func(_ ecs.Entity, p *component.Parachute) {
		if !p.Landed {
			done = false
		}
	})
	return done
}

func (s *Sim) World() *ecs.World {
	return s.world
}

func (s *Sim) Physics() *physics.World {
	return s.physics
}

func (s *Sim) Scene() *entity.Scene {
	return s.scene
}

func (s *Sim) Config() *config.Config {
	return s.cfg
}

// Frames returns how many frames have run since the scene was loaded.
func (s *Sim) Frames() int {
	return s.frames
}

// FixedSteps returns how many fixed updates have run since the scene was
// loaded.
func (s *Sim) FixedSteps() int {
	return s.ticks
}

// EventCount returns how many events of typ have been drained.
func (s *Sim) EventCount(typ ecs.EventType) int {
	return s.counts[typ]
}
