package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/config"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/logging"
)

var (
	rootCmd = &cobra.Command{
		Use:          "arena",
		Short:        "Voting and reputation backend for the system-design arena",
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
	recalculateCmd = &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild user stats from content and votes",
		Long:  `Without --user every active user is recomputed with the bulk weights. With --user only that user is recomputed, with the on-demand weights.`,
		Args:  cobra.NoArgs,
		RunE:  runRecalculate,
	}
	recalculateUser string
)

func init() {
	recalculateCmd.Flags().StringVar(&recalculateUser, "user", "", "recalculate a single user id")
	rootCmd.AddCommand(serveCmd, migrateCmd, recalculateCmd)
}

// bootstrap loads config, sets up logging and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, database.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log)

	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}
