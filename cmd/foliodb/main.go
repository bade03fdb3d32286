package main

import (
	"context"
	"log"

	"foliodb/internal/app"
	"foliodb/internal/snapshots"
	"foliodb/pkg/config"
	"foliodb/pkg/logger"
	"foliodb/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	config.LoadDotenv()

	flags := config.ParseConfigFlags()
	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}
	envCfg, _ := config.ParseConfigEnvs()
	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists, envCfg)
	if err != nil {
		log.Fatalf("failed to resolve config: %v", err)
	}

	if eff.Config.Logging.Level != "" {
		logger.InitWithLevel(eff.Config.Logging.Level)
	} else {
		logger.Init()
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("app initialization failed", err, eff.StorePath)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	stopSnapshots, err := snapshots.Start(ctx, eff.Config, a.Backups())
	if err != nil {
		shutdown.Abort("snapshot scheduler failed", err, eff.StorePath)
	}
	defer stopSnapshots()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server exited", err, eff.StorePath)
	}
	logger.Info("server_stopped")
}
