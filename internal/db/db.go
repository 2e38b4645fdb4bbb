// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the persistence layer for mcard. It abstracts the
// underlying database (SQLite, PostgreSQL, MySQL) behind a consistent
// Store interface so the rest of the application can read and write cards
// in a uniform way.
package db // import "github.com/mcardproject/mcard/internal/db"

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	// SQL drivers required for integration tests and runtime.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mcardproject/mcard/internal/config"
	"github.com/mcardproject/mcard/internal/model"
)

// package-level variables
var (
	store Store
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// Init opens the store described by the configuration snapshot, runs
// migrations and sets the package-level store used by the helpers below.
func Init(snap *config.Snapshot) error {
	s, err := NewStoreFromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	store = s
	return nil
}

// IsInitialized reports whether the package-level store has been set.
func IsInitialized() bool {
	return store != nil
}

// DefaultStore returns the package-level store, or nil before Init.
func DefaultStore() Store {
	return store
}

// Shutdown closes and clears the package-level store.
func Shutdown() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// NewStoreFromSnapshot builds a store from a validated configuration
// snapshot, applying its pool limits and per-call timeout.
func NewStoreFromSnapshot(snap *config.Snapshot) (Store, error) {
	return newStore(snap.Engine, snap.DBPath, snap.MaxConnections, snap.Timeout)
}

// NewStoreFromDSN opens a store with the defaults of the given engine.
// Tests use this to get an in-memory SQLite store without a snapshot.
func NewStoreFromDSN(engine, dsn string) (Store, error) {
	return newStore(engine, dsn, 5, 30*time.Second)
}

func newStore(engine, dsn string, maxConns int, timeout time.Duration) (Store, error) {
	driverName := engine
	// The pgx stdlib registers driver name "pgx"; map "postgres" to it.
	if engine == "postgres" {
		driverName = "pgx"
	}
	// Plain sqlite file paths get their parent directory created; the
	// driver itself will not.
	if engine == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, MapDBError(fmt.Errorf("failed to open database: %w", err))
	}

	// For in-memory SQLite databases, force a single open connection so the
	// schema stays visible across calls; each connection would otherwise see
	// its own empty database. Shared-cache DSNs keep their configured size.
	if engine == "sqlite" && dsn == ":memory:" {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	dbLogf("db: opened %s driver in %s (max conns=%d, timeout=%s)", driverName, time.Since(start), maxConns, timeout)

	migStart := time.Now()
	if err := RunMigrations(sqlDB, engine); err != nil {
		_ = sqlDB.Close()
		return nil, MapDBError(fmt.Errorf("failed to run migrations: %w", err))
	}
	dbLogf("db: migrations for %s completed in %s", engine, time.Since(migStart))

	bunDB := createBunDB(sqlDB, engine)
	base := bunStore{bun: bunDB, timeout: timeout}
	switch engine {
	case "sqlite":
		return &SqliteStore{bunStore: base}, nil
	case "postgres":
		return &PostgresStore{bunStore: base}, nil
	case "mysql":
		return &MySQLStore{bunStore: base}, nil
	default:
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unsupported database engine for store creation: '%s'", engine)
	}
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and engine.
// Centralizing construction keeps dialect selection in one place.
func createBunDB(sqlDB *sql.DB, engine string) *bun.DB {
	switch engine {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// RunMigrations applies the pending .up.sql migrations for an engine,
// tracking applied versions in a schema_migrations table.
func RunMigrations(db *sql.DB, engine string) error {
	migrationsPath := fmt.Sprintf("migrations/%s", engine)

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	if err := ensureSchemaMigrationsTable(db, engine); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		query := "SELECT 1 FROM schema_migrations WHERE version = ?"
		if engine == "postgres" {
			query = "SELECT 1 FROM schema_migrations WHERE version = $1"
		}
		err := db.QueryRow(query, version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		data, err := embeddedMigrations.ReadFile(path.Join(migrationsPath, fname))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fname, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}

		insertQuery := "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"
		if engine == "postgres" {
			insertQuery = "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)"
		}
		if _, err := tx.Exec(insertQuery, version, time.Now()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
	}

	return nil
}

// ensureSchemaMigrationsTable creates the bookkeeping table if missing.
func ensureSchemaMigrationsTable(db *sql.DB, engine string) error {
	// MySQL does not permit TEXT columns as primary keys without a length,
	// so use a VARCHAR there. Other engines can use TEXT.
	if engine == "mysql" {
		_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP)`)
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`)
	return err
}

// RunMaintenance performs engine-specific maintenance for the given DSN.
// For SQLite this runs PRAGMA optimize, VACUUM and a WAL checkpoint; for
// Postgres VACUUM ANALYZE; for MySQL OPTIMIZE TABLE over all tables.
func RunMaintenance(engine, dsn string) error {
	driverName := engine
	if engine == "postgres" {
		driverName = "pgx"
	}
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return MapDBError(fmt.Errorf("failed to open database for maintenance: %w", err))
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch engine {
	case "sqlite":
		// optimize may be unsupported in some environments; non-fatal.
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := sqlDB.ExecContext(ctx, "VACUUM;"); err != nil {
			return MapDBError(fmt.Errorf("sqlite vacuum failed: %w", err))
		}
		_, _ = sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
		var res string
		if row := sqlDB.QueryRowContext(ctx, "PRAGMA integrity_check;"); row != nil {
			_ = row.Scan(&res)
			if res != "ok" {
				return fmt.Errorf("sqlite integrity_check failed: %s", res)
			}
		}
	case "postgres":
		if _, err := sqlDB.ExecContext(ctx, "VACUUM ANALYZE;"); err != nil {
			return MapDBError(fmt.Errorf("postgres vacuum failed: %w", err))
		}
	case "mysql":
		rows, err := sqlDB.QueryContext(ctx, "SHOW TABLES")
		if err != nil {
			return MapDBError(fmt.Errorf("mysql show tables failed: %w", err))
		}
		defer func() { _ = rows.Close() }()
		var table string
		var lastErr error
		for rows.Next() {
			if err := rows.Scan(&table); err != nil {
				return fmt.Errorf("mysql read table name failed: %w", err)
			}
			if _, err := sqlDB.ExecContext(ctx, fmt.Sprintf("OPTIMIZE TABLE %s", table)); err != nil {
				dbLogf("db: mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if err := rows.Err(); err != nil {
			return MapDBError(err)
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
	default:
		return fmt.Errorf("unsupported db engine for maintenance: %s", engine)
	}
	return nil
}

// Save stores a card via the package-level store.
func Save(card model.Card) (bool, error) {
	return store.Save(card)
}

// SaveMany stores a batch of cards via the package-level store.
func SaveMany(cards []model.Card) (inserted, skipped int, err error) {
	return store.SaveMany(cards)
}

// Get retrieves a card by hash via the package-level store.
func Get(hash string) (*model.Card, error) {
	return store.Get(hash)
}

// GetAll retrieves all cards via the package-level store.
func GetAll() ([]model.Card, error) {
	return store.GetAll()
}

// Delete removes a card by hash via the package-level store.
func Delete(hash string) (bool, error) {
	return store.Delete(hash)
}

// Count returns the number of stored cards via the package-level store.
func Count() (int, error) {
	return store.Count()
}
