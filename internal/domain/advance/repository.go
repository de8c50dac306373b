package advance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AdvanceRepository interface {
	Create(ctx context.Context, a Advance) (Advance, error)
	GetByID(ctx context.Context, id string) (Advance, error)
	// GetByNote finds the advance of an employee carrying an exact note.
	GetByNote(ctx context.Context, employeeID, note string) (Advance, error)
	UpdateAmount(ctx context.Context, id string, amount decimal.Decimal, date time.Time) (Advance, error)
	Delete(ctx context.Context, id string) error
	ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Advance, error)
	List(ctx context.Context, filter AdvanceFilter) ([]Advance, error)
}
