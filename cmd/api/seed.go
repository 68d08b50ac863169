package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/database/repository"
	"todoapi/internal/adapter/database/seed"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample categories and todos",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(cfg, db)
	if err != nil {
		return err
	}

	if err := database.MigrateUp(m); err != nil {
		return err
	}

	probe := telemetry.NewNoOpProbe()
	seeder := seed.NewSeeder(
		repository.NewCategoryRepository(db, probe),
		repository.NewTodoRepository(db, probe),
		database.NewTransactionManager(db),
	)

	result, err := seeder.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories and %d todos\n", result.Categories, result.Todos)
	return nil
}
