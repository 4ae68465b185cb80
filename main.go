package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/helicopter/config"
	"github.com/milk9111/helicopter/logging"
	"github.com/milk9111/helicopter/prefabs"
	"github.com/milk9111/helicopter/sim"
)

func main() {
	configPath := flag.String("config", "", "config file (defaults to ./helicopter.{yaml,json,toml})")
	sceneName := flag.String("scene", "", "scene name in prefabs/scenes/ (overrides config)")
	headless := flag.Bool("headless", false, "run without a window")
	duration := flag.Float64("duration", 0, "headless: simulated seconds to run (0 runs until every mission is done)")
	realtime := flag.Bool("realtime", false, "headless: pace frames against the wall clock")
	debug := flag.Bool("debug", false, "enable debug logging and overlay")
	watch := flag.Bool("watch", false, "reload prefabs, scenes and flight scripts when they change on disk")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logging.New("info", true)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	if *sceneName != "" {
		cfg.Scene = *sceneName
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	s, err := sim.New(cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Str("scene", cfg.Scene).Msg("failed to start simulation")
	}
	log = log.With().Str("run", s.RunID).Logger()

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s.Realtime = *realtime
		if err := s.Run(ctx, cfg.FrameStep, *duration); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("run failed")
			os.Exit(1)
		}
		return
	}

	var watcher *prefabs.Watcher
	if *watch {
		dirs := prefabs.WatchDirs()
		if len(dirs) == 0 {
			log.Warn().Str("root", prefabs.DiskRoot).Msg("nothing to watch")
		} else if watcher, err = prefabs.NewWatcher(dirs...); err != nil {
			log.Warn().Err(err).Msg("file watching disabled")
			watcher = nil
		} else {
			defer watcher.Close()
			log.Info().Strs("dirs", dirs).Msg("watching for changes")
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("helicopter")

	game := NewGame(cfg, s, watcher, *debug, log)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("game loop failed")
	}
}
