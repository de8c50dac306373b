package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	Update(ctx context.Context, p Payment) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	Delete(ctx context.Context, id string) error
	ListByPayroll(ctx context.Context, payrollID string) ([]Payment, error)
	ListByPayrolls(ctx context.Context, payrollIDs []string) (map[string][]Payment, error)
	// SumByPayroll totals persisted payments, leaving out excludeID when set.
	SumByPayroll(ctx context.Context, payrollID string, excludeID *string) (decimal.Decimal, error)
}
