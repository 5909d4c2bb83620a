package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/rickgao/tablesync/internal/database"
)

// ErrTableNotFound is returned when the target table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Column is a column as reported by the catalog.
type Column struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

const columnsSQL = `
SELECT a.attname AS name, format_type(a.atttypid, a.atttypmod) AS type
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = to_regclass($1)
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

const existsSQL = `SELECT to_regclass($1) IS NOT NULL`

// Columns returns the table's columns in table order.
func Columns(ctx context.Context, db pgxscan.Querier, table database.TableName) ([]Column, error) {
	var exists bool
	if err := pgxscan.Get(ctx, db, &exists, existsSQL, table.Sanitize()); err != nil {
		return nil, fmt.Errorf("look up table %s: %w", table, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	var cols []Column
	if err := pgxscan.Select(ctx, db, &cols, columnsSQL, table.Sanitize()); err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	return cols, nil
}

// Names returns the column names.
func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
