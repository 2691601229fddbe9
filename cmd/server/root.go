package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rolodex/internal/contact/store"
	"rolodex/internal/platform/config"
	"rolodex/internal/platform/logger"
	"rolodex/internal/platform/postgres"
)

type cliState struct {
	envFile string
	cfg     config.Server
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	cmd := &cobra.Command{
		Use:          "rolodex",
		Short:        "Contacts REST service",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadEnvFile(state.envFile); err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger.New(os.Stdout, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&state.envFile, "env-file", ".env", "load environment variables from this file when it exists")
	cmd.AddCommand(newServeCmd(state), newMigrateCmd(state))
	return cmd
}

func newServeCmd(state *cliState) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, state.cfg, state.logger, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the PostgreSQL schema before serving")
	return cmd
}

func newMigrateCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context(), state.cfg, state.logger)
		},
	}
}

func migrate(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migrate requires DATABASE_URL")
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.InfoContext(ctx, "schema applied")
	return nil
}

// loadEnvFile populates unset variables from path. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
