package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/helicopter/config"
	"github.com/milk9111/helicopter/ecs"
	"github.com/milk9111/helicopter/ecs/component"
	"github.com/milk9111/helicopter/ecs/system"
	"github.com/milk9111/helicopter/prefabs"
	"github.com/milk9111/helicopter/sim"
	"github.com/rs/zerolog"
)

type Game struct {
	frames int
	debug  bool
	paused bool
	quit   bool

	width  int
	height int

	sim     *sim.Sim
	render  *system.RenderSystem
	watcher *prefabs.Watcher
	pause   *pauseMenu
	log     zerolog.Logger
}

func NewGame(cfg *config.Config, s *sim.Sim, watcher *prefabs.Watcher, debug bool, log zerolog.Logger) *Game {
	g := &Game{
		debug:   debug,
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		sim:     s,
		render:  system.NewRenderSystem(cfg.Window.Scale, s.Physics().GroundLevel()),
		watcher: watcher,
		log:     log,
	}
	g.pause = newPauseMenu(g)
	return g
}

func (g *Game) Update() error {
	g.frames++
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	g.pollWatcher()

	if !g.step(1.0 / float64(ebiten.TPS())) {
		g.pause.refresh(g)
		g.pause.ui.Update()
	}
	if g.quit {
		return ebiten.Termination
	}
	return nil
}

// step advances the simulation unless paused and reports whether it ran.
func (g *Game) step(dt float64) bool {
	if g.paused {
		return false
	}
	g.sim.Frame(dt)
	return true
}

func (g *Game) resume() {
	g.paused = false
}

// reloadScene rebuilds the scene and resumes; a failed reload stays paused.
func (g *Game) reloadScene() {
	if err := g.sim.Reload(); err == nil {
		g.paused = false
	}
}

func (g *Game) requestQuit() {
	g.quit = true
}

// statusLine summarises the run for the pause panel.
func (g *Game) statusLine() string {
	return fmt.Sprintf("t %.1fs   missions %d   parachutes %d   bodies %d",
		g.sim.World().Elapsed(),
		g.sim.EventCount(ecs.EventMissionCompleted),
		g.sim.EventCount(ecs.EventParachuteLanded),
		g.sim.Physics().Len(),
	)
}

// pollWatcher applies pending file edits: scripts are recompiled in place,
// prefab and scene edits rebuild the scene.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	reload := false
	for {
		select {
		case path := <-g.watcher.Events:
			if prefabs.IsScriptFile(path) {
				g.sim.InvalidateScripts()
				continue
			}
			g.log.Info().Str("path", path).Msg("prefab changed")
			reload = true
		case err := <-g.watcher.Errors:
			g.log.Warn().Err(err).Msg("watcher error")
		default:
			if reload {
				_ = g.sim.Reload()
			}
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if e, ok := ecs.First(g.sim.World(), component.TransportComponent.Kind()); ok {
		g.render.Follow(g.sim.World(), e)
	}
	g.render.Draw(g.sim.World(), screen)

	msg := fmt.Sprintf("Frames: %d    FPS: %.2f    t: %.1fs", g.frames, ebiten.ActualFPS(), g.sim.World().Elapsed())
	if g.debug {
		msg += fmt.Sprintf("\nfixed steps: %d    bodies: %d    missions: %d    done: %v",
			g.sim.FixedSteps(), g.sim.Physics().Len(), g.sim.EventCount(ecs.EventMissionCompleted), g.sim.Done())
	}
	ebitenutil.DebugPrint(screen, msg)

	if g.paused {
		g.pause.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.width), float64(g.height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
