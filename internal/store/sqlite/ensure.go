package sqlite

import (
	"context"
	"fmt"

	"github.com/maloquacious/sensordb/internal/store"
)

// EnsureSchema opens the database at path, creating the file if needed,
// makes sure the readings table exists, commits and closes the handle.
// Calling it again on an initialized file changes nothing.
func EnsureSchema(ctx context.Context, path string, opts ...Option) (err error) {
	s := New(path, opts...)
	s.log.Debug("ensuring %s table in %s (policy %s)", store.ReadingsTable, path, s.policy)

	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close database: %w", store.ErrStorageUnavailable, cerr)
		}
	}()

	return s.InitSchema(ctx)
}

// Verify reports the state of the database at path without creating it.
func Verify(ctx context.Context, path string, opts ...Option) (state store.StoreState, err error) {
	exists, err := store.CheckExists(path)
	if err != nil {
		return store.StateMissing, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	if !exists {
		return store.StateMissing, nil
	}

	s := New(path, append(opts, ReadOnly())...)
	if err := s.Open(ctx); err != nil {
		return store.StateMissing, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close database: %w", store.ErrStorageUnavailable, cerr)
		}
	}()

	return s.CheckState(ctx)
}
