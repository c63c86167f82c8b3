package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/raido/internal/models"
)

// ReadyFunc gates a cycle on an external readiness signal, typically the
// host's own storage synchronization. nil means always ready; an unready
// cycle is skipped silently and retried on the next tick.
type ReadyFunc func() bool

// Recorder persists completed cycle summaries.
type Recorder interface {
	Record(sum models.CycleSummary) error
}

// Runner fires the orchestrator on a fixed tick. Cycles never overlap: a
// tick or trigger that arrives while a cycle is running is dropped, except
// that at most one manual trigger stays queued (depth-1 queue).
type Runner struct {
	orch    *Orchestrator
	journal Recorder // may be nil
	logger  *slog.Logger
	tick    time.Duration
	ready   ReadyFunc

	// OnCycle, when set, is called after every completed cycle.
	OnCycle func(sum models.CycleSummary)

	triggerCh chan struct{}
	running   atomic.Bool
	last      atomic.Pointer[models.CycleSummary]
}

// NewRunner creates a Runner.
func NewRunner(orch *Orchestrator, journal Recorder, logger *slog.Logger, tick time.Duration, ready ReadyFunc) *Runner {
	if tick <= 0 {
		tick = 5 * time.Minute
	}
	return &Runner{
		orch:      orch,
		journal:   journal,
		logger:    logger,
		tick:      tick,
		ready:     ready,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an out-of-band cycle. Returns false when a request is
// already queued.
func (r *Runner) Trigger() bool {
	select {
	case r.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Running reports whether a cycle is currently in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// LastSummary returns the most recently completed cycle, or nil before the
// first one finishes.
func (r *Runner) LastSummary() *models.CycleSummary {
	return r.last.Load()
}

// Run blocks, firing a cycle immediately and then on every tick or trigger
// until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.logger.Info("runner: started", slog.Duration("tick", r.tick))
	r.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner: stopped")
			return nil
		case <-ticker.C:
			r.cycle(ctx)
		case <-r.triggerCh:
			r.cycle(ctx)
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	defer r.running.Store(false)

	if r.ready != nil && !r.ready() {
		r.logger.Debug("runner: host storage not settled, skipping cycle")
		return
	}

	now := time.Now().UTC()
	sum, err := r.orch.RunCycle(ctx, now)
	sum.FinishedAt = time.Now().UTC()
	if err != nil {
		r.logger.Warn("runner: cycle aborted", slog.String("error", err.Error()))
	}
	r.last.Store(&sum)

	if r.journal != nil {
		if jerr := r.journal.Record(sum); jerr != nil {
			r.logger.Warn("runner: journal write failed", slog.String("error", jerr.Error()))
		}
	}
	if r.OnCycle != nil {
		r.OnCycle(sum)
	}

	r.logger.Info("runner: cycle finished",
		slog.Int("documents", sum.Documents),
		slog.Int("synced", sum.Synced),
		slog.Int("inserted", sum.Inserted),
		slog.Int("removed", sum.Removed),
		slog.Int("errors", len(sum.Errors)))
}
