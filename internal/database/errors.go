package database

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLState returns the SQLSTATE code of a server error, or "" if err did not come from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTable reports whether the statement referenced a missing table.
func IsUndefinedTable(err error) bool {
	return SQLState(err) == pgerrcode.UndefinedTable
}

// IsUndefinedColumn reports whether the statement referenced a missing column.
func IsUndefinedColumn(err error) bool {
	return SQLState(err) == pgerrcode.UndefinedColumn
}

// IsDuplicateColumn reports whether ADD COLUMN hit an existing column.
func IsDuplicateColumn(err error) bool {
	return SQLState(err) == pgerrcode.DuplicateColumn
}

// IsNoConflictTarget reports whether an ON CONFLICT clause named a column set
// with no matching unique index or constraint.
func IsNoConflictTarget(err error) bool {
	return SQLState(err) == pgerrcode.InvalidColumnReference
}

// IsUniqueViolation reports whether the statement violated a unique constraint.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == pgerrcode.UniqueViolation
}
