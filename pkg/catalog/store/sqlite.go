package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver (cgo)
	_ "modernc.org/sqlite"          // sqlite driver (pure Go)

	"licentia-hq/licentia/pkg/catalog/registry"
	"licentia-hq/licentia/pkg/telemetry/metrics"
)

// Config contains configuration for the catalogue store.
type Config struct {
	// Path is the database file path.
	Path string

	// Driver selects the SQLite driver: "sqlite" (modernc, pure Go,
	// default) or "sqlite3" (mattn, cgo).
	Driver string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "data/catalog.db",
		Driver:      "sqlite",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// Store is the catalogue's relational store. It owns one SQLite connection,
// opened at process start and closed at shutdown, and is passed by reference
// to the assembler and the match engine.
//
// Pragmas are applied per connection, so the pool is pinned to a single
// connection; SQLite only supports a single writer anyway. Write operations
// called directly on the Store each run as one transaction. Multi-step
// writes are bracketed by the caller with BeginWrite/Commit/Rollback, and
// nothing inside such a bracket commits implicitly.
type Store struct {
	db        *sql.DB
	config    *Config
	reg       *registry.Registry
	logger    *slog.Logger
	metrics   *metrics.Metrics
	closeOnce sync.Once
}

// New opens the database, creates the schema, and seeds the RULE_TYPE and
// ACTION tables from the registry vocabulary. The metrics argument may be
// nil.
func New(config *Config, reg *registry.Registry, m *metrics.Metrics) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	driver := config.Driver
	switch driver {
	case "":
		driver = "sqlite"
	case "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	logger := slog.Default().With("component", "catalog.store")

	// Foreign keys ride the DSN so a connection database/sql replaces after
	// a driver error still enforces them. The pragma syntax differs per
	// driver.
	dsn := config.Path
	switch driver {
	case "sqlite":
		dsn += "?_pragma=foreign_keys(1)"
	case "sqlite3":
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection so session pragmas hold for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:      db,
		config:  config,
		reg:     reg,
		logger:  logger,
		metrics: m,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("catalog store initialized",
		"path", config.Path,
		"driver", driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas, creates the schema, and seeds the vocabulary.
func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return s.seedVocabulary()
}

// seedVocabulary loads the registry's rule types and actions into their
// tables. Seeding is idempotent; existing rows are left untouched.
func (s *Store) seedVocabulary() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin vocabulary seed: %w", err)
	}
	defer tx.Rollback()

	for _, rt := range s.reg.PermittedRuleTypes() {
		_, err := tx.Exec(`INSERT OR IGNORE INTO RULE_TYPE (URI, LABEL) VALUES (?, ?)`, rt.URI, rt.Label)
		if err != nil {
			return fmt.Errorf("failed to seed rule type %s: %w", rt.URI, err)
		}
	}

	for _, a := range s.reg.Actions() {
		_, err := tx.Exec(`INSERT OR IGNORE INTO ACTION (URI, LABEL, DEFINITION) VALUES (?, ?, ?)`,
			a.URI, a.Label, a.Definition)
		if err != nil {
			return fmt.Errorf("failed to seed action %s: %w", a.URI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vocabulary seed: %w", err)
	}

	s.logger.Debug("vocabulary seeded",
		"rule_types", len(s.reg.PermittedRuleTypes()),
		"actions", len(s.reg.Actions()),
	)
	return nil
}

// Registry returns the registry the store validates against.
func (s *Store) Registry() *registry.Registry {
	return s.reg
}

// BeginWrite starts an explicit write transaction. Every write operation on
// the returned Tx stays pending until Commit; Rollback discards all of them.
func (s *Store) BeginWrite(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, store: s}, nil
}

// withTx runs one operation as a single transaction, the contract of the
// Store-level write methods.
func (s *Store) withTx(ctx context.Context, operation string, fn func(*Tx) error) error {
	tx, err := s.BeginWrite(ctx)
	if err != nil {
		s.metrics.RecordStoreOp(operation, err)
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.metrics.RecordStoreOp(operation, err)
		return err
	}
	err = tx.Commit()
	s.metrics.RecordStoreOp(operation, err)
	return err
}

// Checkpoint runs a WAL checkpoint. It is a no-op when WAL mode is off.
func (s *Store) Checkpoint(ctx context.Context) error {
	if !s.config.WALMode {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// Vacuum rebuilds the database file, reclaiming free pages.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to vacuum: %w", err)
	}
	return nil
}

// Close releases the database connection. Close is idempotent and safe to
// call multiple times.
func (s *Store) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if s.config.WALMode {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
		}
		closeErr = s.db.Close()
		s.logger.Info("catalog store closed")
	})
	return closeErr
}
