package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"todoapi/internal/adapter/database"
)

type Config struct {
	URL    string
	Name   string
	LogSQL bool
}

func Open(cfg Config) (*database.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	if cfg.Name == "" {
		cfg.Name = "todoapi"
	}

	sqlDB, err := otelsql.Open("pgx", cfg.URL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(cfg.Name),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	if cfg.LogSQL {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sql").Logger()
		sqlDB = sqldblogger.OpenDriver(cfg.URL, sqlDB.Driver(), zerologadapter.New(logger))
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return database.New(sqlDB, database.DialectPostgres), nil
}

func NewMigrator(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return database.NewMigrator("postgres", "postgres", driver)
}

func RunMigrations(db *sql.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}

	return database.MigrateUp(m)
}
