package store

import (
	"fmt"
	"strings"
)

const ReadingsTable = "readings"

// Column describes one column of a table as reported by PRAGMA table_xinfo.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	HasDefault bool
	Hidden     bool // generated or hidden column
}

// ReadingsColumns is the contract for the readings table, in column order.
var ReadingsColumns = []Column{
	{Name: "id", Type: "INTEGER", PrimaryKey: true},
	{Name: "temperature", Type: "REAL"},
	{Name: "humidity", Type: "REAL"},
	{Name: "timestamp", Type: "TEXT"},
}

// CompareColumns returns nil when got matches want in order, name, declared
// type (case-insensitive), nullability, primary key membership, default
// value and hidden flag.
func CompareColumns(want, got []Column) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: want %d columns, got %d", ErrSchemaConflict, len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if !strings.EqualFold(w.Name, g.Name) {
			return fmt.Errorf("%w: column %d: want %q, got %q", ErrSchemaConflict, i, w.Name, g.Name)
		}
		if !strings.EqualFold(w.Type, strings.TrimSpace(g.Type)) {
			return fmt.Errorf("%w: column %q: want type %s, got %q", ErrSchemaConflict, w.Name, w.Type, g.Type)
		}
		if w.NotNull != g.NotNull {
			return fmt.Errorf("%w: column %q: want not null=%v, got %v", ErrSchemaConflict, w.Name, w.NotNull, g.NotNull)
		}
		if w.PrimaryKey != g.PrimaryKey {
			return fmt.Errorf("%w: column %q: want primary key=%v, got %v", ErrSchemaConflict, w.Name, w.PrimaryKey, g.PrimaryKey)
		}
		if w.HasDefault != g.HasDefault {
			return fmt.Errorf("%w: column %q: want default=%v, got %v", ErrSchemaConflict, w.Name, w.HasDefault, g.HasDefault)
		}
		if w.Hidden != g.Hidden {
			return fmt.Errorf("%w: column %q: want hidden=%v, got %v", ErrSchemaConflict, w.Name, w.Hidden, g.Hidden)
		}
	}
	return nil
}
