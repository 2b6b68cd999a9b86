package dal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"bookameal/internal/config"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres error codes the repositories translate.
const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository is the shared base of the Postgres repositories.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to Postgres, verifies the connection and applies the pool
// settings from cfg.
func Open(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// ApplyMigrations runs every embedded migration in lexical order. The
// migrations are idempotent.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Info("migration applied", zap.String("name", name))
	}
	return nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// Postgres is the database/sql backed Catalog.
type Postgres struct {
	*pgStore
	*mealRepository
	*menuRepository
	*menuItemRepository
	*orderRepository
	*reportRepository
}

var _ Catalog = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		pgStore:            newPgStore(db),
		mealRepository:     NewMealRepository(db),
		menuRepository:     NewMenuRepository(db),
		menuItemRepository: NewMenuItemRepository(db),
		orderRepository:    NewOrderRepository(db),
		reportRepository:   NewReportRepository(db),
	}
}
