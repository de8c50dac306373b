package payroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPayrollService struct {
	payroll.PayrollService
	mu     sync.Mutex
	calls  map[periodKey]int
	sweeps int
}

func (c *countingPayrollService) SweepPending(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
	return nil
}

func (c *countingPayrollService) sweepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func (c *countingPayrollService) Recompute(ctx context.Context, employeeID string, month, year int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[periodKey{employeeID: employeeID, month: month, year: year}]++
	return true, nil
}

func (c *countingPayrollService) count(key periodKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func TestRecomputerCoalescesQueuedEvents(t *testing.T) {
	svc := &countingPayrollService{calls: map[periodKey]int{}}
	r := NewRecomputer(svc, 1, 8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventAttendanceChanged, EmployeeID: "emp-1", Date: day(6, i+1)})
	}
	r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventPaymentChanged, EmployeeID: "emp-1", Date: day(6, 1)})
	assert.Len(t, r.queue, 1)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(runCtx) }()

	key := periodKey{employeeID: "emp-1", month: 6, year: 2025}
	assert.Eventually(t, func() bool { return svc.count(key) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRecomputerSweepsOnceForRepeatedRuleChanges(t *testing.T) {
	svc := &countingPayrollService{calls: map[periodKey]int{}}
	r := NewRecomputer(svc, 1, 8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventRulesChanged, Date: day(6, 1)})
	}
	assert.Empty(t, r.queue)
	assert.Len(t, r.sweeps, 1)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(runCtx) }()

	assert.Eventually(t, func() bool { return svc.sweepCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return svc.sweepCount() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventRulesChanged, Date: day(6, 2)})
	assert.Eventually(t, func() bool { return svc.sweepCount() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRecomputerDropsWhenFull(t *testing.T) {
	svc := &countingPayrollService{calls: map[periodKey]int{}}
	r := NewRecomputer(svc, 1, 1)
	ctx := context.Background()

	r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventAdvanceChanged, EmployeeID: "emp-1", Date: day(6, 1)})
	r.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventAdvanceChanged, EmployeeID: "emp-2", Date: day(6, 1)})

	assert.Len(t, r.queue, 1)
	assert.Len(t, r.pending, 1)
}

func TestRecomputerAppliesSourceChanges(t *testing.T) {
	f := newPayrollFixture(t)
	e := f.hire(t, department.Workshop, "30000", day(1, 1))
	f.workshopJune(t, e.ID)
	p := f.generateJune(t).Generated[0]

	r := NewRecomputer(f.svc, 2, 16)
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(runCtx) }()

	f.advance(t, e.ID, day(6, 12), "4000")
	r.Notify(context.Background(), payroll.ChangeEvent{Kind: payroll.EventAdvanceChanged, EmployeeID: e.ID, Date: day(6, 12)})

	assert.Eventually(t, func() bool {
		got, err := f.svc.Get(context.Background(), p.ID)
		return err == nil && got.FinalSalary.Equal(dec("22000"))
	}, time.Second, 5*time.Millisecond)
}
