// Command ecs-stress populates a world with random entities, runs the default
// systems for a fixed duration and prints a markdown report.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/hotbean/config"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
	"github.com/plus3/hotbean/ecs/systems"
	"github.com/plus3/hotbean/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 4000, "The initial number of entities to create.")
	churn := flag.Int("churn", 10, "Entities destroyed and respawned every frame.")
	scripted := flag.Float64("scripted", 0.01, "Fraction of entities that carry a script.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	logLevel := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	log, err := logging.New(config.Logging{Level: *logLevel, Console: true})
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	defer log.Close()

	log.Info("Starting ECS stress test...")

	// 1. World, components and systems
	world := ecs.NewWorld(
		ecs.WithLogger(log.Logger),
		ecs.WithMaxEntities(*entityCount+*churn),
	)
	if err := components.RegisterDefaults(world); err != nil {
		log.WithError(err).Fatal("register components")
	}
	if err := systems.RegisterDefaults(world, systems.Defaults{Gravity: components.Vec2{Y: 980}}); err != nil {
		log.WithError(err).Fatal("register systems")
	}
	loop := ecs.NewGameLoop(world)

	// 2. Populate the world
	rng := rand.New(rand.NewPCG(1, 2))
	spawner := &Spawner{World: world, Rand: rng, Scripted: *scripted}
	log.WithField("entities", *entityCount).Info("Populating world...")
	for range *entityCount {
		if _, err := spawner.Spawn(); err != nil {
			log.WithError(err).Fatal("spawn")
		}
	}
	log.Info("Population complete.")

	// 3. Run the loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Churn:          *churn,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.WithField("duration", *duration).Info("Running simulation...")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	loop.Init()
	startTime := time.Now()
	lastFrameTime := startTime
	var totalUpdates int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			now := time.Now()
			deltaTime := now.Sub(lastFrameTime)
			lastFrameTime = now

			spawner.Churn(world.Commands(), *churn)

			updateStart := time.Now()
			loop.Frame(deltaTime.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.World = world.CollectStats()
	report.Loop = *loop.GetStats()
	loop.Shutdown()

	log.Info("Simulation finished.")

	// 4. Report
	if err := report.Generate(os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to generate report")
	}
	log.Info("Stress test complete.")
}
