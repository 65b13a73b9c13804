package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/spaces/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a .toml or .yaml config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The number of entities kept alive.")
	spaceCount := flag.Int("spaces", 0, "The number of spaces entities are spread over.")
	churn := flag.Int("churn", 0, "Entities destroyed and respawned each frame.")
	seed := flag.Int64("seed", 0, "Random seed.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "spaces":
			cfg.Stress.Spaces = *spaceCount
		case "churn":
			cfg.Stress.ChurnPerFrame = *churn
		case "seed":
			cfg.Stress.Seed = *seed
		case "profile":
			cfg.Stress.Profile = *profileMode
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	switch cfg.Stress.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	log.Info("starting ECS stress test",
		zap.Int("entities", cfg.Stress.Entities),
		zap.Int("spaces", cfg.Stress.Spaces),
		zap.Int("churn_per_frame", cfg.Stress.ChurnPerFrame),
		zap.Duration("duration", cfg.Stress.Duration))

	sim, err := newSimulation(cfg, log)
	if err != nil {
		return err
	}
	defer sim.world.Destroy()
	log.Info("population complete", zap.Int("entities", sim.world.EntityCount()))

	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		Spaces:         cfg.Stress.Spaces,
		ChurnPerFrame:  cfg.Stress.ChurnPerFrame,
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()
	if err := sim.run(ctx, &report.UpdateTime); err != nil {
		return err
	}

	runtime.ReadMemStats(&report.MemStatsEnd)
	report.fill(sim)
	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Duration("avg_update", report.UpdateTime.Avg))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return err
	}
	fmt.Println("--- End of Report ---")
	return nil
}

// run steps the world with wall-clock deltas until ctx is done, recording
// each update's duration.
func (sim *simulation) run(ctx context.Context, samples *Stats) error {
	lastFrameTime := time.Now()
	for ctx.Err() == nil {
		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		if err := sim.world.Update(deltaTime.Seconds()); err != nil {
			return err
		}
		samples.Samples = append(samples.Samples, time.Since(updateStart))
	}
	samples.Finalize()
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
