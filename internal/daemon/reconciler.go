package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Syncer lists the window system's windows and brings the managed set in
// line with them.
type Syncer interface {
	Reconcile() error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically picks up windows that were mapped or destroyed
// without the daemon seeing the event.
type Reconciler struct {
	interval time.Duration
	syncer   Syncer
	logger   *slog.Logger
}

// NewReconciler creates a reconciler driving syncer.
func NewReconciler(cfg ReconcilerConfig, syncer Syncer) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{interval: interval, syncer: syncer, logger: logger}
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
			r.reconcile()
		}
	}
}

func (r *Reconciler) reconcile() {
	// A panic in a pass must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if err := r.syncer.Reconcile(); err != nil {
		r.logger.Error("reconciler: sync failed", "error", err)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
