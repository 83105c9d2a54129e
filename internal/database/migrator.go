package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"expense-tracker/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	defaultReadyAttempts = 30
	defaultReadyInterval = 2 * time.Second
)

var errNoMigrations = errors.New("migrations directory not found")

// Migrator applies the versioned SQL migrations under db/migrations and the
// optional seed files under db/seeds.
type Migrator struct {
	db             *sql.DB
	migrationsPath string
	seedsPath      string
	seed           bool

	attempts int
	interval time.Duration
}

func NewMigrator(db *sql.DB, cfg *config.DatabaseConfig) *Migrator {
	return &Migrator{
		db:             db,
		migrationsPath: cfg.MigrationsPath,
		seedsPath:      cfg.SeedsPath,
		seed:           cfg.SeedDatabase,
		attempts:       defaultReadyAttempts,
		interval:       defaultReadyInterval,
	}
}

// AwaitReady pings until the database answers, the attempts run out or ctx ends
func (m *Migrator) AwaitReady(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if lastErr = m.db.PingContext(ctx); lastErr == nil {
			return nil
		}
		slog.Warn("database not ready", "attempt", attempt, "max_attempts", m.attempts, "error", lastErr)

		if attempt == m.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", m.attempts, lastErr)
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	if _, err := os.Stat(m.migrationsPath); err != nil {
		return nil, fmt.Errorf("%w: %s", errNoMigrations, m.migrationsPath)
	}

	absPath, err := filepath.Abs(m.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	return migrate.NewWithDatabaseInstance("file://"+absPath, "postgres", driver)
}

// Up applies every pending migration and reports the resulting version.
// A dirty schema is forced back to its recorded version first.
func (m *Migrator) Up() (uint, error) {
	mg, err := m.instance()
	if err != nil {
		return 0, err
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		slog.Warn("schema is dirty, forcing version", "version", version)
		if err := mg.Force(int(version)); err != nil {
			return 0, fmt.Errorf("failed to force version %d: %w", version, err)
		}
	}

	switch err := mg.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		return version, nil
	case err != nil:
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, _, err = mg.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}

// Seed runs the seed files in name order. A file that fails is logged and
// skipped; Seed returns how many files applied.
func (m *Migrator) Seed(ctx context.Context) (int, error) {
	if !m.seed {
		return 0, nil
	}

	files, err := filepath.Glob(filepath.Join(m.seedsPath, "*.sql"))
	if err != nil {
		return 0, fmt.Errorf("failed to list seed files: %w", err)
	}
	sort.Strings(files)

	applied := 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("failed to read seed file %s: %w", filepath.Base(file), err)
		}

		if _, err := m.db.ExecContext(ctx, string(content)); err != nil {
			slog.Warn("seed file failed", "file", filepath.Base(file), "error", err)
			continue
		}
		applied++
	}
	return applied, nil
}

// Migrate brings the schema up to date when AUTO_MIGRATE is on; an absent
// migrations directory is not an error.
func Migrate(ctx context.Context, db *sql.DB, cfg *config.DatabaseConfig) error {
	if !cfg.AutoMigrate {
		slog.Info("auto-migration disabled")
		return nil
	}

	m := NewMigrator(db, cfg)
	if err := m.AwaitReady(ctx); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}

	version, err := m.Up()
	switch {
	case errors.Is(err, errNoMigrations):
		slog.Warn("skipping migrations", "error", err)
	case err != nil:
		return err
	default:
		slog.Info("schema up to date", "version", version)
	}

	applied, err := m.Seed(ctx)
	if err != nil {
		slog.Warn("seed data loading failed", "error", err)
	} else if applied > 0 {
		slog.Info("seed data loaded", "files", applied)
	}
	return nil
}
