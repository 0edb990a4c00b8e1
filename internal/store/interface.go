package store

import (
	"context"
	"fmt"
)

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing       StoreState = iota // File doesn't exist
	StateUninitialized                   // File exists but no readings table
	StateConflict                        // readings exists with a different shape
	StateReady                           // readings matches ReadingsColumns
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateConflict:
		return "conflict"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("StoreState(%d)", int(s))
}

// Policy decides how an existing readings table is treated.
type Policy int

const (
	// PolicyStrict requires an existing readings table to match
	// ReadingsColumns exactly.
	PolicyStrict Policy = iota
	// PolicyNameOnly accepts any table named readings as initialized.
	PolicyNameOnly
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyNameOnly:
		return "name-only"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "strict" or "name-only". An empty string is strict.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "strict":
		return PolicyStrict, nil
	case "name-only", "nameonly":
		return PolicyNameOnly, nil
	}
	return PolicyStrict, fmt.Errorf("unknown schema policy %q", s)
}

// Store defines the sensor datastore contract.
type Store interface {
	// Open opens the datastore connection
	Open(ctx context.Context) error

	// Close closes the datastore connection
	Close() error

	// InitSchema creates the readings table if it is absent
	InitSchema(ctx context.Context) error

	// CheckState returns the current state of the datastore
	CheckState(ctx context.Context) (StoreState, error)
}
