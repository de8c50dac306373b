package payroll

import "context"

type PayrollRepository interface {
	// Upsert writes the snapshot keyed by (employee, month, year). Frozen rows
	// are never overwritten; ErrPayrollLocked is returned instead.
	Upsert(ctx context.Context, p Payroll) (Payroll, error)
	GetByID(ctx context.Context, id string) (Payroll, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Payroll, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payroll, error)
	List(ctx context.Context, filter PayrollFilter) ([]Payroll, int64, error)
	ListByPeriod(ctx context.Context, month, year int, status *Status) ([]Payroll, error)
	ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Payroll, error)
	// UpdateStatus moves the given rows from one status to another and returns the ids changed.
	UpdateStatus(ctx context.Context, ids []string, from, to Status, paidBy *string) ([]string, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
}
