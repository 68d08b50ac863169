package test

import (
	"log"
	"strings"
	"testing"

	"todoapi/internal/adapter/database"
	"todoapi/internal/adapter/database/sqlite"
)

type TestSetup[T any] struct {
	DB   *database.DB
	Repo *T
}

// InitTestDB opens a migrated in-memory SQLite database.
func InitTestDB() *database.DB {
	db, err := sqlite.Open(sqlite.Config{Path: sqlite.MemoryPath, Name: "todoapi_test"})
	if err != nil {
		log.Fatal(err)
	}

	if err := sqlite.RunMigrations(db.DB.DB); err != nil {
		log.Fatal(err)
	}

	return db
}

func SetupTest[T any](t *testing.T, repo *T) *TestSetup[T] {
	db := InitTestDB()

	return &TestSetup[T]{
		DB:   db,
		Repo: repo,
	}
}

func TeardownTest[T any](t *testing.T, setup *TestSetup[T]) {
	if setup.DB != nil {
		CleanDB(t, setup.DB)
		setup.DB.Close()
	}
}

// CleanDB empties every application table, children first.
func CleanDB(t *testing.T, db *database.DB) {
	var tables []string
	err := db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}

	for _, table := range orderForDelete(tables) {
		if _, err := db.Exec("DELETE FROM " + strings.TrimSpace(table)); err != nil {
			t.Fatalf("Failed to execute delete for table %s: %v", table, err)
		}
	}
}

func orderForDelete(tables []string) []string {
	ordered := make([]string, 0, len(tables))

	for _, table := range tables {
		if table == "todo_category" {
			ordered = append([]string{table}, ordered...)
			continue
		}
		ordered = append(ordered, table)
	}

	return ordered
}
