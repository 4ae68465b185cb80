package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/rs/zerolog"
)

const flightScriptDispatch = `
update(__engine, __time)
`

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

type flightScriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	failed   bool
}

// FlightScriptSystem runs a hover controller's tengo script before the
// controller ticks. Scripts retune the controller through its setters.
type FlightScriptSystem struct {
	load  ScriptLoader
	log   zerolog.Logger
	cache map[ecs.Entity]*flightScriptRuntime
}

func NewFlightScriptSystem(load ScriptLoader, log zerolog.Logger) *FlightScriptSystem {
	return &FlightScriptSystem{
		load:  load,
		log:   log.With().Str("system", "flight_script").Logger(),
		cache: make(map[ecs.Entity]*flightScriptRuntime),
	}
}

// Invalidate drops compiled scripts so edited sources are picked up.
func (s *FlightScriptSystem) Invalidate() {
	if s == nil {
		return
	}
	s.cache = make(map[ecs.Entity]*flightScriptRuntime)
}

func (s *FlightScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for e := range s.cache {
		if !ecs.IsAlive(w, e) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach2(w, component.FlightScriptComponent.Kind(), component.HoverControllerComponent.Kind(), func(e ecs.Entity, fs *component.FlightScript, h *component.HoverController) {
		if strings.TrimSpace(fs.Path) == "" {
			return
		}
		rt := s.runtime(e, fs.Path)
		if rt.failed {
			return
		}
		if err := rt.run(buildFlightEngine(h, s.log.With().Stringer("entity", e).Logger()), w.Elapsed()); err != nil {
			rt.failed = true
			s.log.Error().Err(err).Stringer("entity", e).Str("script", fs.Path).Msg("flight script update")
		}
	})
}

func (s *FlightScriptSystem) runtime(e ecs.Entity, path string) *flightScriptRuntime {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt
	}
	rt, err := compileFlightScript(s.load, path)
	if err != nil {
		s.log.Error().Err(err).Stringer("entity", e).Str("script", path).Msg("load flight script")
		rt = &flightScriptRuntime{path: path, failed: true}
	}
	s.cache[e] = rt
	return rt
}

func compileFlightScript(load ScriptLoader, path string) (*flightScriptRuntime, error) {
	if load == nil {
		return nil, fmt.Errorf("flight script %q: no loader", path)
	}
	src, err := load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + flightScriptDispatch))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__time", 0.0)
	script.SetImports(stdlib.GetModuleMap("math", "fmt"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("flight script %q: compile: %w", path, err)
	}
	return &flightScriptRuntime{path: path, compiled: compiled}, nil
}

func (rt *flightScriptRuntime) run(engine *tengo.ImmutableMap, now float64) error {
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__time", now); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildFlightEngine(h *component.HoverController, log zerolog.Logger) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"hover_height":   &tengo.Float{Value: h.HoverHeight},
		"speed":          &tengo.Float{Value: h.Speed},
		"altitude":       &tengo.Float{Value: h.CurrentHeight},
		"waypoint":       &tengo.Int{Value: int64(h.CurrentWaypoint)},
		"waypoint_count": &tengo.Int{Value: int64(len(h.Waypoints))},
	}

	values["set_hover_height"] = &tengo.UserFunction{Name: "set_hover_height", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, ok := objectAsFloat(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		h.SetHoverHeight(v)
		return tengo.TrueValue, nil
	}}

	values["set_move_speed"] = &tengo.UserFunction{Name: "set_move_speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, ok := objectAsFloat(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		h.SetMoveSpeed(v)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Debug().Msg(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsFloat(args []tengo.Object) (float64, bool) {
	if len(args) < 1 {
		return 0, false
	}
	switch v := args[0].(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
