package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tablesync/internal/config"
	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/model"
	"github.com/rickgao/tablesync/internal/poller"
	"github.com/rickgao/tablesync/internal/schema"
	"github.com/rickgao/tablesync/internal/writer"
)

var syncCmd = &cli.Command{
	Name:      "sync",
	Usage:     "Load CSV files and write them into tables",
	ArgsUsage: "FILE.csv [FILE.csv...]",
	Description: `Each file's header row names the columns. Columns the table lacks are added
as TEXT. With --replace, table columns absent from the file are dropped (the key
column is kept) and --key '*' replaces every row instead of upserting.

Without --table each file is written to the table named after its file stem.
With --interval the files are re-read and synced on every tick until interrupted.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "table",
			Usage: "target table (schema.name); only valid with a single file",
		},
		&cli.StringFlag{
			Name:     "key",
			Usage:    "key column for upsert, or '*' to replace all rows (requires --replace)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "replace",
			Usage: "make table columns match the file exactly",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "print the schema changes without applying anything",
		},
		&cli.StringFlag{
			Name:  "delimiter",
			Usage: "field delimiter",
			Value: ",",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "re-sync the files on this interval until interrupted (0 syncs once)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "bound each sync pass (0 for none)",
		},
		&cli.StringFlag{
			Name:  "null",
			Usage: "cell text read as NULL (empty cells are always NULL)",
		},
	},
	Action: func(cctx *cli.Context) error {
		opts, err := syncOptionsFromFlags(cctx)
		if err != nil {
			return err
		}

		e, err := setup(cctx)
		if err != nil {
			return err
		}
		defer e.Close()

		targets, err := resolveTargets(cctx.String("table"), cctx.Args().Slice(), !e.cfg.Writer.PreserveCase)
		if err != nil {
			return err
		}

		w := writer.NewWriter(writerConfig(e.cfg.Writer), e.pool, e.logger)
		if opts.dryRun {
			plans, err := planAll(cctx, e, w, targets, opts)
			if err != nil {
				return err
			}
			return writePlans(cctx.App.Writer, plans)
		}

		pass := func(ctx context.Context) error {
			results, err := syncAll(ctx, e, w, targets, opts)
			if werr := writeResults(cctx.App.Writer, results); werr != nil {
				err = errors.Join(err, werr)
			}
			e.flushMetrics()
			return err
		}

		interval := cctx.Duration("interval")
		if interval <= 0 {
			ctx := cctx.Context
			if timeout := cctx.Duration("timeout"); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return pass(ctx)
		}

		p := poller.New(poller.Config{Interval: interval, Timeout: cctx.Duration("timeout")}, poller.TaskFunc(pass), e.logger)
		return p.Run(cctx.Context)
	},
}

type syncOptions struct {
	key     string
	replace bool
	dryRun  bool
	csv     model.CSVOptions
}

// target is one file and the table it is written to.
type target struct {
	path  string
	table database.TableName
}

func syncOptionsFromFlags(cctx *cli.Context) (syncOptions, error) {
	if cctx.NArg() == 0 {
		return syncOptions{}, fmt.Errorf("expected at least one FILE argument")
	}
	opts := syncOptions{
		key:     cctx.String("key"),
		replace: cctx.Bool("replace"),
		dryRun:  cctx.Bool("dry-run"),
		csv:     model.CSVOptions{NullString: cctx.String("null")},
	}
	if opts.key == writer.Wildcard && !opts.replace {
		return syncOptions{}, fmt.Errorf("--key %q requires --replace", writer.Wildcard)
	}

	delim := cctx.String("delimiter")
	if delim == `\t` {
		delim = "\t"
	}
	if utf8.RuneCountInString(delim) != 1 {
		return syncOptions{}, fmt.Errorf("--delimiter must be a single character, got %q", delim)
	}
	opts.csv.Comma, _ = utf8.DecodeRuneInString(delim)
	return opts, nil
}

// resolveTargets maps files to tables. An explicit table applies to exactly
// one file; otherwise each file's stem names its table.
func resolveTargets(table string, paths []string, fold bool) ([]target, error) {
	if table != "" {
		if len(paths) != 1 {
			return nil, fmt.Errorf("--table requires exactly one file, got %d", len(paths))
		}
		name, err := database.ParseTableName(table)
		if err != nil {
			return nil, err
		}
		return []target{{path: paths[0], table: name}}, nil
	}

	targets := make([]target, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if fold {
			stem = model.FoldName(stem)
		}
		if err := database.ValidateIdent(stem); err != nil {
			return nil, fmt.Errorf("table name from %s: %w", p, err)
		}
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("%s and %s both map to table %q", prev, p, stem)
		}
		seen[stem] = p
		targets = append(targets, target{path: p, table: database.TableName{Name: stem}})
	}
	return targets, nil
}

func writerConfig(cfg config.WriterConfig) writer.WriterConfig {
	return writer.WriterConfig{
		BatchSize:     cfg.BatchSize,
		FoldColumns:   !cfg.PreserveCase,
		CreateMissing: cfg.CreateTables,
	}
}

func policy(replace bool) schema.Policy {
	if replace {
		return schema.AddAndDrop
	}
	return schema.AddOnly
}

// syncAll writes every target concurrently, at most max_conns at a time.
// Results are returned in target order; failed targets are omitted.
func syncAll(ctx context.Context, e *env, w *writer.Writer, targets []target, opts syncOptions) ([]writer.Result, error) {
	results := make([]writer.Result, len(targets))
	ok := make([]bool, len(targets))

	var g errgroup.Group
	g.SetLimit(max(e.cfg.Database.MaxConns, 1))
	errs := make([]error, len(targets))
	for i, t := range targets {
		g.Go(func() error {
			frame, err := model.ReadCSVFile(t.path, opts.csv)
			if err != nil {
				errs[i] = fmt.Errorf("load %s: %w", t.path, err)
				return nil
			}
			var res writer.Result
			if opts.replace {
				res, err = w.WriteReplaceOrUpsert(ctx, frame, t.table, opts.key)
			} else {
				res, err = w.WriteUpsert(ctx, frame, t.table, opts.key)
			}
			res.Table = t.table
			e.syncs.Observe(res, err)
			if err != nil {
				errs[i] = fmt.Errorf("sync %s: %w", t.path, err)
				return nil
			}
			results[i], ok[i] = res, true
			return nil
		})
	}
	_ = g.Wait()

	done := make([]writer.Result, 0, len(targets))
	for i := range targets {
		if ok[i] {
			done = append(done, results[i])
		}
	}
	return done, errors.Join(errs...)
}

// planAll computes schema plans for every target without applying them.
func planAll(cctx *cli.Context, e *env, w *writer.Writer, targets []target, opts syncOptions) ([]schema.Plan, error) {
	plans := make([]schema.Plan, len(targets))
	g, ctx := errgroup.WithContext(cctx.Context)
	g.SetLimit(max(e.cfg.Database.MaxConns, 1))
	for i, t := range targets {
		g.Go(func() error {
			frame, err := model.ReadCSVFile(t.path, opts.csv)
			if err != nil {
				return fmt.Errorf("load %s: %w", t.path, err)
			}
			plan, err := w.Plan(ctx, frame, t.table, opts.key, policy(opts.replace))
			if err != nil {
				return fmt.Errorf("plan %s: %w", t.path, err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}
