package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/tablesync/internal/database"
)

// Options tune a single Reconcile call.
type Options struct {
	// Protect lists columns that are never dropped.
	Protect []string

	// CreateMissing creates the table (all columns TEXT) when it does not exist.
	CreateMissing bool

	// Key is the primary key of a created table.
	Key string

	// DryRun computes the plan without changing anything.
	DryRun bool
}

// Reconciler applies column plans to tables.
type Reconciler struct {
	db     database.DB
	logger *slog.Logger
}

// NewReconciler creates a Reconciler over db.
func NewReconciler(db database.DB, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{db: db, logger: logger}
}

// Reconcile makes table's columns match desired under policy. Introspection
// and all DDL run in one transaction: it either commits every change or none.
// Running it twice with the same desired columns issues no DDL the second time.
func (r *Reconciler) Reconcile(ctx context.Context, table database.TableName, desired []string, policy Policy, opts Options) (_ Plan, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil || opts.DryRun {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	plan, err := r.plan(ctx, tx, table, desired, policy, opts)
	if err != nil {
		return Plan{}, err
	}
	if opts.DryRun {
		return plan, nil
	}

	for _, stmt := range plan.Statements() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			r.logger.Error("schema change failed", "table", table.String(), "sql", stmt, "error", err)
			return Plan{}, fmt.Errorf("alter %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Plan{}, fmt.Errorf("commit schema changes: %w", err)
	}

	if !plan.Empty() {
		r.logger.Info("table schema reconciled",
			"table", table.String(),
			"policy", policy.String(),
			"created", plan.Create,
			"added", plan.Add,
			"dropped", plan.Drop,
		)
	}
	return plan, nil
}

func (r *Reconciler) plan(ctx context.Context, tx pgx.Tx, table database.TableName, desired []string, policy Policy, opts Options) (Plan, error) {
	for _, c := range desired {
		if err := database.ValidateIdent(c); err != nil {
			return Plan{}, fmt.Errorf("column of %s: %w", table, err)
		}
	}

	cols, err := Columns(ctx, tx, table)
	if errors.Is(err, ErrTableNotFound) && opts.CreateMissing {
		plan := Diff(table, nil, desired, AddOnly)
		plan.Create = true
		plan.Key = opts.Key
		return plan, nil
	}
	if err != nil {
		return Plan{}, err
	}

	protect := opts.Protect
	if opts.Key != "" {
		protect = append(append([]string{}, protect...), opts.Key)
	}
	return Diff(table, Names(cols), desired, policy, protect...), nil
}
