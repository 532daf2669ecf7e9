// Package sqlite implements the store.Store interface backed by a local
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements store.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements store.Store.
var _ store.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the SQLite database at path and runs any
// pending migrations. The parent directory is created when missing.
func New(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	// m.Close would close db as well.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetWidget(ctx context.Context, widgetID string) (*model.Widget, error) {
	return queryGetWidget(ctx, s.db, widgetID)
}

func (s *SQLiteStore) SaveWidget(ctx context.Context, w *model.Widget, layoutID int64) error {
	return querySaveWidget(ctx, s.db, w, layoutID)
}

func (s *SQLiteStore) DeleteWidget(ctx context.Context, widgetID string) (bool, error) {
	return queryDeleteWidget(ctx, s.db, widgetID)
}

func (s *SQLiteStore) ListWidgets(ctx context.Context, filter model.WidgetFilter) ([]*model.Widget, error) {
	return queryListWidgets(ctx, s.db, filter)
}

// SaveLayout saves the layout and its widgets in a single transaction.
// Row IDs are left untouched when the transaction rolls back.
func (s *SQLiteStore) SaveLayout(ctx context.Context, l *model.Layout) error {
	restore := sqlutil.SnapshotRowIDs(l)
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		return tx.SaveLayout(ctx, l)
	})
	if err != nil {
		restore()
	}
	return err
}

func (s *SQLiteStore) GetLayout(ctx context.Context, name string) (*model.Layout, error) {
	return queryGetLayout(ctx, s.db, name)
}

func (s *SQLiteStore) ListLayouts(ctx context.Context) ([]*model.LayoutSummary, error) {
	return queryListLayouts(ctx, s.db)
}

func (s *SQLiteStore) ListLayoutWidgets(ctx context.Context, layoutID int64) ([]*model.Widget, error) {
	return queryListLayoutWidgets(ctx, s.db, layoutID)
}

func (s *SQLiteStore) DeleteLayout(ctx context.Context, name string) (bool, error) {
	return queryDeleteLayout(ctx, s.db, name)
}

func (s *SQLiteStore) AttachWidget(ctx context.Context, layoutID int64, widgetID string) error {
	return queryAttachWidget(ctx, s.db, layoutID, widgetID)
}

func (s *SQLiteStore) DetachWidget(ctx context.Context, widgetID string) error {
	return queryDetachWidget(ctx, s.db, widgetID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *SQLiteStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
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
