package payroll

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusLocked  Status = "locked"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusLocked
}

// IsFrozen reports whether derived figures may no longer change.
func (s Status) IsFrozen() bool {
	return s == StatusPaid || s == StatusLocked
}

// Payroll is the stored monthly snapshot for one employee.
// FinalSalary = EarnedSalary + OvertimePay - UndertimeDeduction - AdvanceAmount.
type Payroll struct {
	ID                 string
	EmployeeID         string
	PeriodMonth        int
	PeriodYear         int
	BaseSalary         decimal.Decimal
	PresentDays        int
	AbsentDays         int
	LeaveDays          int
	HolidayDays        int
	PerDaySalary       decimal.Decimal
	HourlyRate         decimal.Decimal
	EarnedSalary       decimal.Decimal
	OvertimeHours      decimal.Decimal
	OvertimePay        decimal.Decimal
	UndertimeHours     decimal.Decimal
	UndertimeDeduction decimal.Decimal
	AdvanceAmount      decimal.Decimal
	FinalSalary        decimal.Decimal
	Status             Status
	PaidAt             *time.Time
	PaidBy             *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	EmployeeName *string
	Department   *department.Department
}

// BalanceStatus describes how payments compare to the final salary.
type BalanceStatus string

const (
	BalanceSettled   BalanceStatus = "Settled"
	BalanceOverpaid  BalanceStatus = "Overpaid"
	BalancePending   BalanceStatus = "Pending"
	BalanceUnderpaid BalanceStatus = "Underpaid"
)

// Reconciliation is the derived ledger view of one payroll.
type Reconciliation struct {
	FinalSalary    decimal.Decimal
	TotalPaid      decimal.Decimal
	Balance        decimal.Decimal
	DisplayBalance decimal.Decimal
	Status         BalanceStatus
}
