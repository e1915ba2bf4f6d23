package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) targetConfigPath() string {
	return shared.FirstNonEmpty(r.configPath, shared.ConfigPath())
}

// SetupConfig writes a config file populated with default values.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.targetConfigPath()

	if cmd.Bool("force") {
		if err := shared.SaveConfig(path, shared.DefaultConfig()); err != nil {
			return err
		}
	} else if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url and api.token, or run 'reelx setup token --curl ...'\n")
	return r.writePlain("2. Run 'reelx auth login -u <username>' to start a session\n")
}

// SetupDatabase initializes the local storage database and runs migrations, or rolls back the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Storage
	if d := cfg.Driver; d != "" && d != "sqlite" && d != "sqlite3" {
		return fmt.Errorf("%w: storage driver is %q, not sqlite", shared.ErrInvalidConfig, d)
	}

	r.logger.Info("initializing database", "path", cfg.Path)

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Database: %s", cfg.Path))
	for _, s := range statuses {
		mark := "✗"
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, s.Version, s.Name)
	}
	return nil
}

// SetupToken imports the API base URL and app token from a cURL command copied from the browser.
func (r *Runner) SetupToken(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var (
		req *shared.CurlRequest
		err error
	)
	if curlFile != "" {
		if req, err = shared.ParseCurlFile(curlFile); err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		if req, err = shared.ParseCurlCommand(curlCmd); err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	baseURL, err := req.BaseURL()
	if err != nil {
		return err
	}
	r.config.API.BaseURL = baseURL

	if token := req.AppToken(); token != "" {
		r.config.API.Token = token
	} else {
		r.logger.Warn("no x-app-token header found, keeping the configured token")
	}

	path := r.targetConfigPath()
	if err := shared.SaveConfig(path, r.config); err != nil {
		return err
	}

	r.logger.Info("config updated", "path", path, "base_url", baseURL)

	r.writePlain("✓ API configured\n")
	r.writePlain("Base URL: %s\n", baseURL)
	r.writePlain("Config saved to: %s\n", path)
	if req.BearerToken() != "" {
		r.writePlainln("The request carried a session token; it was not saved. Use 'reelx auth login' instead.")
	}
	return nil
}
