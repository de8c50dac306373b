package cron

import (
	"context"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
)

type PayrollJobs struct {
	payrollSvc payroll.PayrollService
}

func NewPayrollJobs(payrollSvc payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{payrollSvc: payrollSvc}
}

// RegisterJobs schedules the sweep that catches recomputes the event path missed.
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, sweepSpec string) error {
	return scheduler.AddJob("sweep_pending_payrolls", sweepSpec, j.SweepPendingPayrolls)
}

func (j *PayrollJobs) SweepPendingPayrolls(ctx context.Context) error {
	return j.payrollSvc.SweepPending(ctx)
}
