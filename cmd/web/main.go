package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/posture-atlas/pkg/server"
	"github.com/de-tools/posture-atlas/pkg/services/config"
	"github.com/de-tools/posture-atlas/pkg/services/registry"
	"github.com/de-tools/posture-atlas/pkg/services/workflow"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Posture Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (environment variables prefixed with POSTURE_ override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := zerolog.InfoLevel
	if cfg.App.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	db, err := duckdb.NewDB(ctx, duckdb.Settings{
		DbPath:            cfg.Database.Path,
		ConnectMaxElapsed: cfg.Database.ConnectMaxElapsed,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	reg, err := registry.New(db, *cfg)
	if err != nil {
		return err
	}

	if interval := cfg.Workflow.SnapshotInterval; interval > 0 {
		runner := workflow.NewRunner(reg.Aggregator, reg.Metrics, interval)
		jobCtx, cancel := context.WithCancel(ctx)
		go runner.Run(jobCtx)
		defer func() {
			cancel()
			<-runner.Done()
		}()
	}

	logger.Info().
		Str("database", cfg.Database.Path).
		Strs("cors_origins", cfg.Server.CORSOrigins).
		Msgf("Configuration for %s %s loaded.", cfg.App.Name, cfg.App.Version)

	api, err := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		AppName:         cfg.App.Name,
		Version:         cfg.App.Version,
		Dependencies: server.Dependencies{
			Vulnerabilities: reg.Vulnerabilities,
			Incidents:       reg.Incidents,
			Compliance:      reg.Compliance,
			Metrics:         reg.Metrics,
			Aggregator:      reg.Aggregator,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure server: %w", err)
	}

	return api.Start()
}
