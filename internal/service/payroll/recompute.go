package payroll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

type periodKey struct {
	employeeID string
	month      int
	year       int
}

// Recomputer re-derives pending snapshots after their source data changed.
// Events for the same employee and month are coalesced while queued.
type Recomputer struct {
	payrollSvc   payroll.PayrollService
	workers      int
	timeout      time.Duration
	sweepTimeout time.Duration

	queue   chan periodKey
	sweeps  chan struct{}
	mu      sync.Mutex
	pending map[periodKey]bool
}

func NewRecomputer(payrollSvc payroll.PayrollService, workers, queueSize int) *Recomputer {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 256
	}
	return &Recomputer{
		payrollSvc:   payrollSvc,
		workers:      workers,
		timeout:      30 * time.Second,
		sweepTimeout: 5 * time.Minute,
		queue:        make(chan periodKey, queueSize),
		sweeps:       make(chan struct{}, 1),
		pending:      make(map[periodKey]bool),
	}
}

// Notify implements payroll.ChangeNotifier. It never blocks; when the queue
// is full the event is dropped and the periodic sweep picks the change up.
func (r *Recomputer) Notify(ctx context.Context, event payroll.ChangeEvent) {
	if event.TriggersSweep() {
		// one queued sweep covers any number of rule edits
		select {
		case r.sweeps <- struct{}{}:
		default:
		}
		return
	}
	if !event.TriggersRecompute() {
		return
	}
	month, year := event.Period()
	key := periodKey{employeeID: event.EmployeeID, month: month, year: year}

	r.mu.Lock()
	if r.pending[key] {
		r.mu.Unlock()
		return
	}
	r.pending[key] = true
	r.mu.Unlock()

	select {
	case r.queue <- key:
	default:
		r.mu.Lock()
		delete(r.pending, key)
		r.mu.Unlock()
		slog.Warn("recompute queue full, event dropped",
			"kind", event.Kind,
			"employee_id", event.EmployeeID,
			"period_month", month,
			"period_year", year,
		)
	}
}

// Run drains the queue until ctx is cancelled.
func (r *Recomputer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case key := <-r.queue:
					r.mu.Lock()
					delete(r.pending, key)
					r.mu.Unlock()
					r.process(gctx, key)
				}
			}
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-r.sweeps:
				r.sweep(gctx)
			}
		}
	})
	return g.Wait()
}

func (r *Recomputer) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.sweepTimeout)
	defer cancel()

	if err := r.payrollSvc.SweepPending(ctx); err != nil {
		slog.Error("payroll sweep after rule change failed", "error", err)
		return
	}
	slog.Info("pending payrolls swept after rule change")
}

func (r *Recomputer) process(ctx context.Context, key periodKey) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	changed, err := r.payrollSvc.Recompute(ctx, key.employeeID, key.month, key.year)
	if err != nil {
		slog.Error("payroll recompute failed",
			"employee_id", key.employeeID,
			"period_month", key.month,
			"period_year", key.year,
			"error", err,
		)
		return
	}
	if changed {
		slog.Debug("payroll recomputed",
			"employee_id", key.employeeID,
			"period_month", key.month,
			"period_year", key.year,
		)
	}
}
