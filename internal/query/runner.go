package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/model"
)

// ErrEmptyQuery is returned for blank SQL.
var ErrEmptyQuery = errors.New("query is empty")

// Runner executes statements, each in its own transaction.
type Runner struct {
	db     database.DB
	logger *slog.Logger
}

// NewRunner creates a Runner over db.
func NewRunner(db database.DB, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, logger: logger}
}

// Run executes sql with positional args ($1, $2, ...).
//
// If the statement returns a result set, every row is read into a Frame whose
// columns follow the statement's projection. Statements without a result set
// return a nil Frame. The transaction is committed on success and rolled back
// on failure; failures are logged with the statement text and returned.
func (r *Runner) Run(ctx context.Context, sql string, args ...any) (*model.Frame, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyQuery
	}

	frame, err := r.run(ctx, sql, args)
	if err != nil {
		r.logger.Error("query failed", "sql", sql, "error", err)
		return nil, err
	}
	return frame, nil
}

// Exec executes sql and returns the number of rows affected.
func (r *Runner) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if strings.TrimSpace(sql) == "" {
		return 0, ErrEmptyQuery
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		r.logger.Error("exec failed", "sql", sql, "error", err)
		return 0, fmt.Errorf("exec statement: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Runner) run(ctx context.Context, sql string, args []any) (_ *model.Frame, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	frame, err := collect(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return frame, nil
}

// collect reads all rows. It returns nil when the statement has no result set.
func collect(rows pgx.Rows) (*model.Frame, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var frame *model.Frame
	if len(fields) > 0 {
		cols := make([]string, len(fields))
		for i, fd := range fields {
			cols[i] = fd.Name
		}
		frame = model.NewFrame(cols...)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if frame != nil {
			frame.Rows = append(frame.Rows, values)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	return frame, nil
}
