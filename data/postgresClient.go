package data

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
)

const (
	defaultConnAttempts = 10
	connRetryDelay      = time.Second
)

func NewPostgresClient(cfg *config.Config) *sqlx.DB {
	db, err := connectWithRetry(postgresDSN(cfg.Postgres), defaultConnAttempts)
	if err != nil {
		slog.Error("Postgres connection failed", slog.String("err", err.Error()))
		panic(err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
	slog.Info("Postgres connected")

	if err = migratePostgres(db, cfg.Postgres.MigrationDir); err != nil {
		slog.Error("postgres migration failed", slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("postgres migrated successfully")

	return db
}

func postgresDSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.DbName,
		cfg.Password,
	)
}

func connectWithRetry(dsn string, attempts int) (db *sqlx.DB, err error) {
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			return db, nil
		}

		slog.Info("Postgres is trying to connect", slog.Int("attempt", attempt), slog.Int("attempts left", attempts-attempt))
		time.Sleep(connRetryDelay)
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", attempts, err)
}

func migratePostgres(db *sqlx.DB, migrationDir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres.WithInstance: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationDir),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("migrate.NewWithDatabaseInstance: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
