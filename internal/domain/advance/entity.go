package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advance is salary paid out ahead of payroll. It is deducted from the
// payroll of the month its date falls in.
type Advance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Amount     decimal.Decimal
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Sum adds up advance amounts.
func Sum(advances []Advance) decimal.Decimal {
	total := decimal.Zero
	for _, a := range advances {
		total = total.Add(a.Amount)
	}
	return total
}
