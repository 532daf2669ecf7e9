// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetWidget(ctx context.Context, widgetID string) (*model.Widget, error) {
	return queryGetWidget(ctx, s.db, widgetID)
}

func (s *PostgresStore) SaveWidget(ctx context.Context, w *model.Widget, layoutID int64) error {
	return querySaveWidget(ctx, s.db, w, layoutID)
}

func (s *PostgresStore) DeleteWidget(ctx context.Context, widgetID string) (bool, error) {
	return queryDeleteWidget(ctx, s.db, widgetID)
}

func (s *PostgresStore) ListWidgets(ctx context.Context, filter model.WidgetFilter) ([]*model.Widget, error) {
	return queryListWidgets(ctx, s.db, filter)
}

// SaveLayout saves the layout and its widgets in a single transaction.
// Row IDs are left untouched when the transaction rolls back.
func (s *PostgresStore) SaveLayout(ctx context.Context, l *model.Layout) error {
	restore := sqlutil.SnapshotRowIDs(l)
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		return tx.SaveLayout(ctx, l)
	})
	if err != nil {
		restore()
	}
	return err
}

func (s *PostgresStore) GetLayout(ctx context.Context, name string) (*model.Layout, error) {
	return queryGetLayout(ctx, s.db, name)
}

func (s *PostgresStore) ListLayouts(ctx context.Context) ([]*model.LayoutSummary, error) {
	return queryListLayouts(ctx, s.db)
}

func (s *PostgresStore) ListLayoutWidgets(ctx context.Context, layoutID int64) ([]*model.Widget, error) {
	return queryListLayoutWidgets(ctx, s.db, layoutID)
}

func (s *PostgresStore) DeleteLayout(ctx context.Context, name string) (bool, error) {
	return queryDeleteLayout(ctx, s.db, name)
}

func (s *PostgresStore) AttachWidget(ctx context.Context, layoutID int64, widgetID string) error {
	return queryAttachWidget(ctx, s.db, layoutID, widgetID)
}

func (s *PostgresStore) DetachWidget(ctx context.Context, widgetID string) error {
	return queryDetachWidget(ctx, s.db, widgetID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) GetWidget(ctx context.Context, widgetID string) (*model.Widget, error) {
	return queryGetWidget(ctx, s.tx, widgetID)
}

func (s *txStore) SaveWidget(ctx context.Context, w *model.Widget, layoutID int64) error {
	return querySaveWidget(ctx, s.tx, w, layoutID)
}

func (s *txStore) DeleteWidget(ctx context.Context, widgetID string) (bool, error) {
	return queryDeleteWidget(ctx, s.tx, widgetID)
}

func (s *txStore) ListWidgets(ctx context.Context, filter model.WidgetFilter) ([]*model.Widget, error) {
	return queryListWidgets(ctx, s.tx, filter)
}

func (s *txStore) SaveLayout(ctx context.Context, l *model.Layout) error {
	return querySaveLayout(ctx, s.tx, l)
}

func (s *txStore) GetLayout(ctx context.Context, name string) (*model.Layout, error) {
	return queryGetLayout(ctx, s.tx, name)
}

func (s *txStore) ListLayouts(ctx context.Context) ([]*model.LayoutSummary, error) {
	return queryListLayouts(ctx, s.tx)
}

func (s *txStore) ListLayoutWidgets(ctx context.Context, layoutID int64) ([]*model.Widget, error) {
	return queryListLayoutWidgets(ctx, s.tx, layoutID)
}

func (s *txStore) DeleteLayout(ctx context.Context, name string) (bool, error) {
	return queryDeleteLayout(ctx, s.tx, name)
}

func (s *txStore) AttachWidget(ctx context.Context, layoutID int64, widgetID string) error {
	return queryAttachWidget(ctx, s.tx, layoutID, widgetID)
}

func (s *txStore) DetachWidget(ctx context.Context, widgetID string) error {
	return queryDetachWidget(ctx, s.tx, widgetID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
