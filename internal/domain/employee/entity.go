package employee

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	Name             string
	CNIC             string
	Department       department.Department
	BaseSalary       decimal.Decimal
	OvertimeRate     *decimal.Decimal
	JoiningDate      time.Time
	IsActive         bool
	InactivationDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveOn reports whether the employee could work on date.
func (e Employee) ActiveOn(date time.Time) bool {
	if date.Before(e.JoiningDate) {
		return false
	}
	if e.IsActive {
		return true
	}
	return e.InactivationDate != nil && date.Before(*e.InactivationDate)
}
