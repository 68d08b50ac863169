package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/adapter/database/sqlite"
	"todoapi/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "todoapi",
	Short: "Todo and category REST API",
	Long: `todoapi serves the todo/category REST API under /api.

Running it without a subcommand is the same as "todoapi serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// openDatabase connects to the configured driver.
func openDatabase(cfg *config.AppConfig) (*database.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(postgres.Config{URL: cfg.DatabaseURL, Name: cfg.ServiceName, LogSQL: cfg.LogSQL})
	default:
		return sqlite.Open(sqlite.Config{Path: cfg.DatabasePath, Name: cfg.ServiceName, LogSQL: cfg.LogSQL})
	}
}

func newMigrator(cfg *config.AppConfig, db *database.DB) (*migrate.Migrate, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return postgres.NewMigrator(db.DB.DB)
	}

	return sqlite.NewMigrator(db.DB.DB)
}
