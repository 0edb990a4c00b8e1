package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maloquacious/sensordb/internal/logger"
	"github.com/maloquacious/sensordb/internal/store"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteStore)(nil)

// SQLiteStore implements the Store interface using modernc.org/sqlite.
type SQLiteStore struct {
	dbPath   string
	db       *sql.DB
	policy   store.Policy
	readOnly bool
	log      logger.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithPolicy sets how an existing readings table is treated by InitSchema.
func WithPolicy(p store.Policy) Option {
	return func(s *SQLiteStore) {
		s.policy = p
	}
}

// WithLogger replaces logger.Default.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// ReadOnly skips the pragmas that write to the database file.
func ReadOnly() Option {
	return func(s *SQLiteStore) {
		s.readOnly = true
	}
}

// New creates a new SQLiteStore. The database is not touched until Open.
func New(dbPath string, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		dbPath: dbPath,
		log:    logger.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path backing the store.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Open opens the SQLite database with safe defaults. The engine creates the
// file if it does not exist; parent directories are not created.
func (s *SQLiteStore) Open(ctx context.Context) error {
	if s.dbPath == "" {
		return fmt.Errorf("%w: empty database path", store.ErrStorageUnavailable)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %w", store.ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	// Per-connection settings only. journal_mode is stored in the file
	// header, so it is left as the file already has it.
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	if s.readOnly {
		pragmas = []string{"PRAGMA busy_timeout=5000"}
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("%w: failed to set pragma %q: %w", store.ErrStorageUnavailable, pragma, err)
		}
	}

	s.db = db
	s.log.Debug("opened %s", s.dbPath)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// InitSchema creates the readings table if it is absent and commits.
// Under PolicyStrict an existing table must match store.ReadingsColumns or
// store.ErrSchemaConflict is returned and nothing is committed.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	if s.db == nil {
		return store.ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", store.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, readingsSchema); err != nil {
		return fmt.Errorf("%w: failed to create schema: %w", store.ErrStorageUnavailable, err)
	}

	if s.policy == store.PolicyStrict {
		if err := checkReadings(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", store.ErrStorageUnavailable, err)
	}

	return nil
}

// CheckState returns the current state of the datastore.
func (s *SQLiteStore) CheckState(ctx context.Context) (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, store.ErrNotOpen
	}

	exists, err := tableExists(ctx, s.db, store.ReadingsTable)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("%w: failed to check readings table: %w", store.ErrStorageUnavailable, err)
	}
	if !exists {
		return store.StateUninitialized, nil
	}

	if err := checkReadings(ctx, s.db); err != nil {
		if errors.Is(err, store.ErrSchemaConflict) {
			s.log.Warn("%s: %v", s.dbPath, err)
			return store.StateConflict, nil
		}
		return store.StateUninitialized, err
	}

	return store.StateReady, nil
}

// Columns returns the columns of the readings table as reported by SQLite.
func (s *SQLiteStore) Columns(ctx context.Context) ([]store.Column, error) {
	if s.db == nil {
		return nil, store.ErrNotOpen
	}
	return tableColumns(ctx, s.db, store.ReadingsTable)
}
