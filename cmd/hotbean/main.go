// Command hotbean runs a scene file in an ebiten window with hot reload and
// an optional ImGui inspector.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	backend "github.com/plus3/hotbean/backend/ebiten"
	"github.com/plus3/hotbean/config"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/debugui"
	debugui_ebiten "github.com/plus3/hotbean/ecs/debugui/ebiten"
	"github.com/plus3/hotbean/ecs/scene"
	"github.com/plus3/hotbean/ecs/systems"
	"github.com/plus3/hotbean/logging"
	"github.com/sirupsen/logrus"
)

type options struct {
	config  string
	scene   string
	save    string
	debug   bool
	watch   bool
	profile string
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "YAML config file; defaults and HOTBEAN_* variables apply without one")
	flag.StringVar(&opts.scene, "scene", "", "scene file to run (default <assets>/scenes/main.yaml)")
	flag.StringVar(&opts.save, "save", "", "write a snapshot of the world to this file on exit")
	flag.BoolVar(&opts.debug, "debug", false, "enable the ImGui inspector, toggled with F1")
	flag.BoolVar(&opts.watch, "watch", true, "reload the scene and scripts when they change on disk")
	flag.StringVar(&opts.profile, "profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	os.Exit(realMain(opts))
}

func realMain(opts options) int {
	switch opts.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", opts.profile)
		return 2
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Close()

	if err := run(cfg, opts, log.Logger); err != nil {
		log.WithError(err).Error("hotbean exited")
		return 1
	}
	return 0
}

func run(cfg config.Config, opts options, log *logrus.Logger) error {
	world := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithMaxEntities(cfg.ECS.MaxEntities),
		ecs.WithStrict(cfg.ECS.Strict),
	)
	if err := components.RegisterDefaults(world); err != nil {
		return err
	}
	loop := ecs.NewGameLoop(world)

	assets := cfg.Assets.Path
	scriptDir := filepath.Join(assets, "scripts")
	err := systems.RegisterDefaults(world, systems.Defaults{
		Gravity:   components.Vec2{Y: cfg.Loop.Gravity},
		ScriptDir: scriptDir,
		Viewport:  components.Vec2{X: float64(cfg.Window.Width), Y: float64(cfg.Window.Height)},
		Audio:     backend.NewAudioPlayer(assets),
	})
	if err != nil {
		return err
	}
	render, err := ecs.RegisterSystem(world, backend.NewRenderSystem(assets))
	if err != nil {
		return err
	}
	loop.AddParticipant(backend.NewInputSystem())

	path := opts.scene
	if path == "" {
		path = filepath.Join(assets, "scenes", "main.yaml")
	}
	scenes := ecs.NewSceneManager(loop)
	level := scene.NewFileScene(path)
	if err := scenes.Register(level); err != nil {
		return err
	}
	if err := scenes.Load(level.Name()); err != nil {
		return err
	}

	if opts.watch {
		if err := watch(loop, scenes, path, scriptDir); err != nil {
			log.WithError(err).Warn("hot reload disabled")
		}
	}
	if opts.save != "" {
		loop.AddParticipant(&snapshotOnExit{path: opts.save})
	}

	game := backend.NewGame(loop, render, cfg.Window)
	if opts.debug {
		if _, err := debugui.Install(loop); err != nil {
			return err
		}
		game.Overlays = append(game.Overlays,
			debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height))
	}

	log.WithFields(logrus.Fields{
		"scene":     path,
		"tick_rate": cfg.Loop.TickRate,
		"debug":     opts.debug,
	}).Info("starting")
	return game.Run(cfg.Loop.TickRate)
}

// watch adds a HotReloader for the scene's directory and, when it exists, the
// script directory.
func watch(loop *ecs.GameLoop, scenes *ecs.SceneManager, scenePath, scriptDir string) error {
	dirs := []string{filepath.Dir(scenePath)}
	if info, err := os.Stat(scriptDir); err == nil && info.IsDir() {
		dirs = append(dirs, scriptDir)
	}
	watcher, err := scene.NewWatcher(dirs...)
	if err != nil {
		return err
	}

	reloader := scene.NewHotReloader(scenes, watcher)
	if scripts, ok := ecs.GetSystem[*systems.ScriptSystem](loop.World()); ok {
		reloader.OnScript = scripts.Invalidate
	}
	loop.AddParticipant(reloader)
	return nil
}

type snapshotOnExit struct {
	ecs.NopParticipant
	path string
}

func (s *snapshotOnExit) Name() string { return "SnapshotOnExit" }

func (s *snapshotOnExit) OnShutdown(w *ecs.World) {
	if err := scene.Save(w, s.path); err != nil {
		w.Logger().WithError(err).WithField("path", s.path).Error("snapshot failed")
		return
	}
	w.Logger().WithField("path", s.path).Info("snapshot written")
}
