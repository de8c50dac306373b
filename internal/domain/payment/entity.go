package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money handed to an employee against one payroll.
type Payment struct {
	ID         string
	EmployeeID string
	PayrollID  string
	Date       time.Time
	Amount     decimal.Decimal
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
