package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := shared.ConfigPath()
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.ApplyEnv(config)
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "reelx",
		Usage:    "Browse the movie catalogue and manage your favourites",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	runner.Close()

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented", "error", err)
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
