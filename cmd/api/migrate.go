package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoapi/internal/adapter/database"
	"todoapi/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the embedded schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
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

	switch args[0] {
	case "up":
		err = database.MigrateUp(m)
	case "down":
		err = database.MigrateDown(m)
	}
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: no migrations applied\n", args[0])
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: version %d (dirty=%t)\n", args[0], version, dirty)
	return nil
}
