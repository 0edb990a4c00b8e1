package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maloquacious/sensordb/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func tableExists(ctx context.Context, q querier, name string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func tableColumns(ctx context.Context, q querier, name string) ([]store.Column, error) {
	// PRAGMA arguments cannot be bound; name is always a package constant.
	// table_xinfo also lists generated columns, which table_info hides.
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_xinfo(%q)", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	var cols []store.Column
	for rows.Next() {
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    any
			pk      int
			hidden  int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk, &hidden); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		cols = append(cols, store.Column{
			Name:       colName,
			Type:       colType,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
			HasDefault: dflt != nil,
			Hidden:     hidden != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// uniqueIndexes returns the names of unique indexes on the table, whether
// they come from a UNIQUE constraint or a separate CREATE UNIQUE INDEX.
func uniqueIndexes(ctx context.Context, q querier, name string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, "unique" FROM pragma_index_list(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			idxName string
			unique  int
		)
		if err := rows.Scan(&idxName, &unique); err != nil {
			return nil, fmt.Errorf("failed to scan index list: %w", err)
		}
		if unique != 0 {
			names = append(names, idxName)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// checkReadings compares the readings table against store.ReadingsColumns
// and rejects any constraint beyond the AUTOINCREMENT primary key on id.
func checkReadings(ctx context.Context, q querier) error {
	cols, err := tableColumns(ctx, q, store.ReadingsTable)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	if err := store.CompareColumns(store.ReadingsColumns, cols); err != nil {
		return err
	}

	unique, err := uniqueIndexes(ctx, q, store.ReadingsTable)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	if len(unique) > 0 {
		return fmt.Errorf("%w: %s table has unique indexes %v", store.ErrSchemaConflict, store.ReadingsTable, unique)
	}

	var ddl sql.NullString
	err = q.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type='table' AND name=?`, store.ReadingsTable).Scan(&ddl)
	if err != nil {
		return fmt.Errorf("%w: failed to read table definition: %w", store.ErrStorageUnavailable, err)
	}
	return checkReadingsDDL(ddl.String)
}
