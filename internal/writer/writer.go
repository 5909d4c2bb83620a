package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/model"
	"github.com/rickgao/tablesync/internal/schema"
)

var (
	// ErrEmptyFrame is returned for a nil frame or one without columns.
	ErrEmptyFrame = errors.New("frame has no columns")

	// ErrMissingKey is returned when the key column is empty or absent from the frame.
	ErrMissingKey = errors.New("key column missing")
)

// Writer synchronizes frames into tables.
type Writer struct {
	cfg    WriterConfig
	db     database.DB
	schema *schema.Reconciler
	logger *slog.Logger

	metricsMu sync.Mutex
	metrics   WriterMetrics
}

// NewWriter creates a new Writer.
func NewWriter(cfg WriterConfig, db database.DB, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	return &Writer{
		cfg:    cfg,
		db:     db,
		schema: schema.NewReconciler(db, logger),
		logger: logger,
	}
}

// WriteUpsert adds any frame columns the table lacks, then upserts every row
// keyed on key. Existing columns are never dropped.
func (w *Writer) WriteUpsert(ctx context.Context, frame *model.Frame, table database.TableName, key string) (Result, error) {
	if key == Wildcard {
		return Result{}, fmt.Errorf("%w: upsert needs a named key, not %q", ErrMissingKey, Wildcard)
	}
	return w.sync(ctx, frame, table, key, schema.AddOnly)
}

// WriteReplaceOrUpsert makes the table's columns match the frame exactly
// (adding and dropping), then replaces all rows when keyOrWildcard is "*" or
// upserts on the named key otherwise.
func (w *Writer) WriteReplaceOrUpsert(ctx context.Context, frame *model.Frame, table database.TableName, keyOrWildcard string) (Result, error) {
	return w.sync(ctx, frame, table, keyOrWildcard, schema.AddAndDrop)
}

// Plan reports the schema changes a write would make without applying them.
func (w *Writer) Plan(ctx context.Context, frame *model.Frame, table database.TableName, keyOrWildcard string, policy schema.Policy) (schema.Plan, error) {
	frame, key, err := w.prepare(frame, keyOrWildcard)
	if err != nil {
		return schema.Plan{}, err
	}
	return w.schema.Reconcile(ctx, table, frame.Columns, policy, w.schemaOptions(key, true))
}

// Stats returns cumulative metrics.
func (w *Writer) Stats() WriterMetrics {
	w.metricsMu.Lock()
	defer w.metricsMu.Unlock()
	return w.metrics
}

func (w *Writer) sync(ctx context.Context, frame *model.Frame, table database.TableName, keyOrWildcard string, policy schema.Policy) (Result, error) {
	start := time.Now()
	res := Result{SyncID: uuid.New(), Table: table}
	logger := w.logger.With("sync_id", res.SyncID.String(), "table", table.String())

	res, err := w.syncFrame(ctx, res, frame, keyOrWildcard, policy)
	res.Duration = time.Since(start)

	w.metricsMu.Lock()
	if err != nil {
		w.metrics.Errors++
	} else {
		w.metrics.Writes++
		w.metrics.Rows += res.Rows
		w.metrics.Statements += int64(res.Statements)
		w.metrics.SchemaChanges += int64(len(res.Added) + len(res.Dropped))
	}
	w.metricsMu.Unlock()

	if err != nil {
		logger.Error("table write failed", "error", err, "duration", res.Duration)
		return res, err
	}

	logger.Info("table written",
		"mode", string(res.Mode),
		"key", res.Key,
		"rows", res.Rows,
		"affected", res.Affected,
		"statements", res.Statements,
		"added", res.Added,
		"dropped", res.Dropped,
		"duration", res.Duration,
	)
	return res, nil
}

func (w *Writer) syncFrame(ctx context.Context, res Result, frame *model.Frame, keyOrWildcard string, policy schema.Policy) (Result, error) {
	frame, key, err := w.prepare(frame, keyOrWildcard)
	if err != nil {
		return res, err
	}
	res.Key = key
	res.Mode = ModeUpsert
	if key == "" {
		res.Mode = ModeReplace
	}

	plan, err := w.schema.Reconcile(ctx, res.Table, frame.Columns, policy, w.schemaOptions(key, false))
	if err != nil {
		return res, fmt.Errorf("reconcile columns: %w", err)
	}
	res.Created = plan.Create
	if !plan.Create {
		res.Added = plan.Add
	}
	res.Dropped = plan.Drop

	return w.write(ctx, res, frame)
}

// prepare validates the frame and resolves the key. An empty key means replace-all.
func (w *Writer) prepare(frame *model.Frame, keyOrWildcard string) (*model.Frame, string, error) {
	if frame == nil || len(frame.Columns) == 0 {
		return nil, "", ErrEmptyFrame
	}
	if keyOrWildcard == "" {
		return nil, "", fmt.Errorf("%w: use %q to replace all rows", ErrMissingKey, Wildcard)
	}

	key := keyOrWildcard
	if key == Wildcard {
		key = ""
	}
	if w.cfg.FoldColumns {
		frame = frame.FoldColumns()
		key = model.FoldName(key)
	}

	if err := frame.Validate(); err != nil {
		return nil, "", err
	}
	for _, c := range frame.Columns {
		if err := database.ValidateIdent(c); err != nil {
			return nil, "", fmt.Errorf("frame column: %w", err)
		}
	}
	if key != "" && frame.Index(key) < 0 {
		return nil, "", fmt.Errorf("%w: %q is not a frame column", ErrMissingKey, key)
	}
	return frame, key, nil
}

func (w *Writer) schemaOptions(key string, dryRun bool) schema.Options {
	return schema.Options{
		CreateMissing: w.cfg.CreateMissing,
		Key:           key,
		DryRun:        dryRun,
	}
}

// write replaces or upserts the frame's rows in one transaction.
func (w *Writer) write(ctx context.Context, res Result, frame *model.Frame) (_ Result, err error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	rows := frame.Rows
	if res.Mode == ModeReplace {
		if _, err := tx.Exec(ctx, truncateSQL(res.Table)); err != nil {
			return res, fmt.Errorf("truncate %s: %w", res.Table, err)
		}
	} else {
		rows = dedupeByKey(rows, frame.Index(res.Key))
	}

	per := chunkRows(w.cfg.BatchSize, len(frame.Columns))
	for start := 0; start < len(rows); start += per {
		chunk := rows[start:min(start+per, len(rows))]
		tag, err := tx.Exec(ctx, insertSQL(res.Table, frame.Columns, len(chunk), res.Key), bindArgs(chunk)...)
		if err != nil {
			if database.IsNoConflictTarget(err) {
				err = fmt.Errorf("%w (does %s have a unique index on %q?)", err, res.Table, res.Key)
			}
			return res, fmt.Errorf("insert into %s (rows %d-%d): %w", res.Table, start, start+len(chunk)-1, err)
		}
		res.Affected += tag.RowsAffected()
		res.Statements++
	}
	res.Rows = int64(len(rows))

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}
