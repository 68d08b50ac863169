package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"todoapi/internal/adapter/database"
)

const MemoryPath = ":memory:"

type Config struct {
	Path   string
	Name   string
	LogSQL bool
}

// Open connects to the SQLite file at cfg.Path with foreign keys enforced.
// An in-memory database is pinned to a single connection so every query sees
// the same schema.
func Open(cfg Config) (*database.DB, error) {
	if cfg.Path == "" {
		cfg.Path = "database.db"
	}

	if cfg.Name == "" {
		cfg.Name = "todoapi"
	}

	dsn := dataSourceName(cfg.Path)

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(cfg.Name),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if cfg.LogSQL {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sql").Logger()
		sqlDB = sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger))
	}

	if isMemory(cfg.Path) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return database.New(sqlDB, database.DialectSQLite), nil
}

func NewMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return database.NewMigrator("sqlite", "sqlite3", driver)
}

// RunMigrations applies every pending migration. The migrator is not closed
// because that would close db as well.
func RunMigrations(db *sql.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}

	return database.MigrateUp(m)
}

func dataSourceName(path string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return path + separator + "_foreign_keys=on&_busy_timeout=5000"
}

func isMemory(path string) bool {
	return strings.HasPrefix(path, MemoryPath) || strings.Contains(path, "mode=memory")
}
