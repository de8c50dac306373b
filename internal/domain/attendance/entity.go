package attendance

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday:
		return true
	}
	return false
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	Status            Status
	CheckInTime       *string // HH:MM
	CheckOutTime      *string // HH:MM
	HoursWorked       *decimal.Decimal
	OvertimeHours     decimal.Decimal
	UndertimeHours    decimal.Decimal
	ShiftType         department.ShiftType
	BiometricVerified bool
	CredentialID      *string
	VerifiedAt        *time.Time
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InPeriod reports whether the record falls in the given month and year.
func (r Record) InPeriod(month, year int) bool {
	return int(r.Date.Month()) == month && r.Date.Year() == year
}

// BiometricScan is what the external authenticator hands over after a
// successful platform verification.
type BiometricScan struct {
	CredentialID string
	Verified     bool
}
