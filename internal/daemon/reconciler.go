package daemon

import (
	"context"
	"log/slog"
	"time"
)

// CheckFunc inspects and corrects overlay state. It runs on the UI goroutine.
type CheckFunc func() error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	post     func(func()) bool
	check    CheckFunc
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// post hands work to the UI goroutine; check is run there.
func NewReconciler(cfg ReconcilerConfig, post func(func()) bool, check CheckFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		post:     post,
		check:    check,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if !r.post(r.reconcile) {
				r.logger.Debug("reconciler: event loop gone")
				return
			}
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the overlay
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if err := r.check(); err != nil {
		r.logger.Warn("reconciler: check failed", "error", err)
	}
}

// ReconcileNow runs a pass on the calling goroutine, which must be the UI
// goroutine.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
