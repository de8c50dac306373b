package payroll

import (
	"context"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
)

type PayrollService interface {
	// Generate derives and upserts pending snapshots for a past or current month.
	Generate(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)

	// Recompute re-derives an existing pending snapshot. It reports false when
	// there is nothing to recompute or the snapshot is frozen.
	Recompute(ctx context.Context, employeeID string, month, year int) (bool, error)
	RecomputeByID(ctx context.Context, id string) (PayrollResponse, error)

	// SweepPending recomputes every pending snapshot of the current and previous month.
	SweepPending(ctx context.Context) error

	Get(ctx context.Context, id string) (PayrollResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	Summary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)

	MarkPaid(ctx context.Context, req MarkPaidRequest) (StatusChangeResponse, error)
	MarkAllPaid(ctx context.Context, req MarkAllPaidRequest) (StatusChangeResponse, error)
	Lock(ctx context.Context, req LockRequest) (StatusChangeResponse, error)
	Delete(ctx context.Context, id string) error
}

type LedgerService interface {
	RecordPayment(ctx context.Context, req payment.CreatePaymentRequest) (payment.PaymentResponse, error)
	UpdatePayment(ctx context.Context, req payment.UpdatePaymentRequest) (payment.PaymentResponse, error)
	DeletePayment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, payrollID string) ([]payment.PaymentResponse, error)

	GetLedger(ctx context.Context, payrollID string) (LedgerResponse, error)
	GetEmployeeLedger(ctx context.Context, employeeID string, year int) (EmployeeLedgerResponse, error)

	// ScheduleRecovery books the overpaid amount as an advance on the 1st of
	// the following month. Repeated calls replace the same advance.
	ScheduleRecovery(ctx context.Context, payrollID string) (RecoveryResponse, error)
	CancelRecovery(ctx context.Context, payrollID string) error
}
