package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one unit of periodic work.
type Task interface {
	RunCycle(ctx context.Context) error
}

// TaskFunc is a function adapter for Task.
type TaskFunc func(context.Context) error

func (f TaskFunc) RunCycle(ctx context.Context) error {
	return f(ctx)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Time between cycle starts (default: 1m)
	Timeout  time.Duration // Per-cycle timeout, zero for none
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
	}
}

// Stats counts completed cycles.
type Stats struct {
	Cycles   int64
	Failures int64
}

// Poller periodically runs a Task.
type Poller struct {
	cfg    Config
	task   Task
	logger *slog.Logger

	cycles   atomic.Int64
	failures atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, task Task, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		cfg:    cfg,
		task:   task,
		logger: logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop gracefully shuts down the poller, waiting for a running cycle to end.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped", "cycles", p.cycles.Load(), "failures", p.failures.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the poller and blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return p.Stop(context.WithoutCancel(ctx))
}

// Stats returns cycle counts so far.
func (p *Poller) Stats() Stats {
	return Stats{Cycles: p.cycles.Load(), Failures: p.failures.Load()}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Run immediately on start.
	p.runCycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle()
		}
	}
}

func (p *Poller) runCycle() {
	start := time.Now()

	ctx := p.ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}

	err := p.task.RunCycle(ctx)
	p.cycles.Add(1)
	if err != nil {
		p.failures.Add(1)
		if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
			p.logger.Debug("cycle interrupted by shutdown")
			return
		}
		p.logger.Warn("cycle failed", "error", err, "duration", time.Since(start))
		return
	}

	p.logger.Debug("cycle complete", "duration", time.Since(start))
}
