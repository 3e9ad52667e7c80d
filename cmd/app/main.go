package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consolidation/cmd"
	"consolidation/internal/adapters/out/postgres"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "consolidation",
		Short:        "Batch consolidation and lifecycle engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, scheduled jobs and the order intake consumer",
			RunE: func(c *cobra.Command, _ []string) error {
				cfg, err := cmd.LoadConfig(envFile)
				if err != nil {
					return err
				}
				return serve(c.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the postgres schema",
			RunE: func(_ *cobra.Command, _ []string) error {
				cfg, err := cmd.LoadConfig(envFile)
				if err != nil {
					return err
				}
				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				if err = postgres.Migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				cfg.NewLogger().Info("Schema is up to date", "database", cfg.DBName)
				return nil
			},
		},
	)
	return root
}

func serve(ctx context.Context, cfg cmd.Config) error {
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	var db *gorm.DB
	if cfg.StorageDriver == cmd.StorageDriverPostgres {
		var err error
		if db, err = openDB(cfg); err != nil {
			return err
		}
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	app, err := cmd.NewCompositionRoot(cfg, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close adapters", "error", err)
		}
	}()

	e, err := app.CreateRouter()
	if err != nil {
		return err
	}

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(); err != nil {
		log.Fatal("Failed to start jobs: ", err)
	}
	defer jobManager.StopAll()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if consumer := app.CreateOrderConsumer(); consumer != nil {
		consumer.Start(ctx)
		defer consumer.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openDB(cfg cmd.Config) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return db, nil
}
