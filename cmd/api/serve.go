package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todoapi/internal/adapter/database"
	apphttp "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/logger"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "Apply pending migrations before serving")
	rootCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "Apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLokiLogger(cfg.ServiceName, cfg.LokiURL, cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	tel.ServeMetrics()
	tel.AppMetrics.StartSystemMetrics(ctx)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := tel.RegisterDB(db.DB.DB, cfg.ServiceName); err != nil {
		log.Logger.Warn("Failed to register database pool metrics", zap.Error(err))
	}

	if migrateOnStart {
		m, err := newMigrator(cfg, db)
		if err != nil {
			return err
		}

		if err := database.MigrateUp(m); err != nil {
			return err
		}
	}

	return apphttp.StartServerWithConfig(ctx, cfg, db, tel.AppMetrics, log, tel.NewTelemetryProbe())
}
