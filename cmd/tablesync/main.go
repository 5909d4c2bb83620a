package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/rickgao/tablesync/internal/config"
	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/metrics"
	"github.com/rickgao/tablesync/internal/version"
)

func main() {
	version.Resolve()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	app := &cli.App{
		Name:    "tablesync",
		Usage:   "Query PostgreSQL and sync tabular files into tables",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file (environment variables are used when empty)",
				EnvVars: []string{"TABLESYNC_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error (overrides log.level)",
				EnvVars: []string{"TABLESYNC_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			queryCmd,
			columnsCmd,
			syncCmd,
		},
	}

	// Handle shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("exit in error", "error", err)
		cancel()
		os.Exit(1)
	}
}

// env holds what every command needs once configuration is loaded.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *database.Pool
	registry *prometheus.Registry
	syncs    *metrics.SyncMetrics
}

// setup loads configuration, configures logging and connects to the database.
// The returned env must be closed.
func setup(cctx *cli.Context) (*env, error) {
	cfg, err := config.LoadAndValidate(cctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl := cctx.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"version", version.Version,
		"commit", version.Commit,
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	registry := prometheus.NewRegistry()
	tracer := metrics.NewTracer(registry)

	pool, err := database.Connect(cctx.Context, cfg.Database, logger, database.WithTracer(tracer))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	registry.MustRegister(metrics.NewPoolCollector(func() metrics.PoolStats { return pool.Stat() }))

	return &env{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		registry: registry,
		syncs:    metrics.NewSyncMetrics(registry),
	}, nil
}

// flushMetrics writes the metrics textfile, if configured.
func (e *env) flushMetrics() {
	path := e.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path, e.registry); err != nil {
		e.logger.Warn("metrics export failed", "path", path, "error", err)
	}
}

// Close flushes metrics and closes the pool.
func (e *env) Close() {
	e.flushMetrics()
	e.pool.Close()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}
