package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultDBFile = "sensor_data.db"
)

var (
	// ErrStorageUnavailable is returned when the database file cannot be
	// created, opened or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSchemaConflict is returned when a readings table exists but does
	// not match ReadingsColumns.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrNotOpen is returned by SQLiteStore methods called before Open.
	ErrNotOpen = errors.New("database not opened")
)

// CheckExists verifies if the database file exists at the given path.
// Returns true if the file exists, false otherwise.
func CheckExists(dbPath string) (bool, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check store existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("datastore path is a directory, expected file: %s", dbPath)
	}
	return true, nil
}

// GetStorePath returns the path to the datastore directory.
// This defaults to the current working directory.
func GetStorePath() string {
	return "."
}

// GetDBPath returns the full path to the database file.
func GetDBPath(storePath string) string {
	return filepath.Join(storePath, DefaultDBFile)
}
