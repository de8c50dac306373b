package payroll

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION ==========

type GeneratePayrollRequest struct {
	PeriodMonth int      `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int      `json:"period_year" validate:"min=2000,max=2100"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,dive,uuid"` // Empty = all active employees
}

func (r *GeneratePayrollRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SkippedPayroll struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type GeneratePayrollResponse struct {
	PeriodMonth int               `json:"period_month"`
	PeriodYear  int               `json:"period_year"`
	Generated   []PayrollResponse `json:"generated"`
	Skipped     []SkippedPayroll  `json:"skipped"`
}

// ========== STATUS CHANGES ==========

type MarkPaidRequest struct {
	PayrollIDs []string `json:"payroll_ids" validate:"required,min=1,dive,uuid"`
}

func (r *MarkPaidRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkAllPaidRequest struct {
	PeriodMonth int  `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int  `json:"period_year" validate:"min=2000,max=2100"`
	SettledOnly bool `json:"settled_only"`
}

func (r *MarkAllPaidRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LockRequest struct {
	PayrollIDs []string `json:"payroll_ids" validate:"required,min=1,dive,uuid"`
}

func (r *LockRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StatusChangeResponse struct {
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

// ========== QUERIES ==========

type PayrollFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Department  *string `json:"department,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 200"})
	}
	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of: pending, paid, locked"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReconciliationResponse struct {
	FinalSalary    decimal.Decimal `json:"final_salary"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Balance        decimal.Decimal `json:"balance"`
	DisplayBalance decimal.Decimal `json:"display_balance"`
	Status         BalanceStatus   `json:"status"`
}

func NewReconciliationResponse(r Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		FinalSalary:    r.FinalSalary,
		TotalPaid:      r.TotalPaid,
		Balance:        r.Balance,
		DisplayBalance: r.DisplayBalance,
		Status:         r.Status,
	}
}

type PayrollResponse struct {
	ID                 string                  `json:"id"`
	EmployeeID         string                  `json:"employee_id"`
	EmployeeName       string                  `json:"employee_name,omitempty"`
	Department         string                  `json:"department,omitempty"`
	PeriodMonth        int                     `json:"period_month"`
	PeriodYear         int                     `json:"period_year"`
	BaseSalary         decimal.Decimal         `json:"base_salary"`
	PresentDays        int                     `json:"present_days"`
	AbsentDays         int                     `json:"absent_days"`
	LeaveDays          int                     `json:"leave_days"`
	HolidayDays        int                     `json:"holiday_days"`
	PerDaySalary       decimal.Decimal         `json:"per_day_salary"`
	HourlyRate         decimal.Decimal         `json:"hourly_rate"`
	EarnedSalary       decimal.Decimal         `json:"earned_salary"`
	OvertimeHours      decimal.Decimal         `json:"overtime_hours"`
	OvertimePay        decimal.Decimal         `json:"overtime_pay"`
	UndertimeHours     decimal.Decimal         `json:"undertime_hours"`
	UndertimeDeduction decimal.Decimal         `json:"undertime_deduction"`
	AdvanceAmount      decimal.Decimal         `json:"advance_amount"`
	FinalSalary        decimal.Decimal         `json:"final_salary"`
	Status             string                  `json:"status"`
	PaidAt             *string                 `json:"paid_at,omitempty"`
	PaidBy             *string                 `json:"paid_by,omitempty"`
	Balance            *ReconciliationResponse `json:"balance,omitempty"`
	UpdatedAt          string                  `json:"updated_at"`
}

func NewPayrollResponse(p Payroll, rec *Reconciliation) PayrollResponse {
	var paidAt *string
	if p.PaidAt != nil {
		s := p.PaidAt.Format(time.RFC3339)
		paidAt = &s
	}
	resp := PayrollResponse{
		ID:                 p.ID,
		EmployeeID:         p.EmployeeID,
		PeriodMonth:        p.PeriodMonth,
		PeriodYear:         p.PeriodYear,
		BaseSalary:         p.BaseSalary,
		PresentDays:        p.PresentDays,
		AbsentDays:         p.AbsentDays,
		LeaveDays:          p.LeaveDays,
		HolidayDays:        p.HolidayDays,
		PerDaySalary:       p.PerDaySalary,
		HourlyRate:         p.HourlyRate,
		EarnedSalary:       p.EarnedSalary,
		OvertimeHours:      p.OvertimeHours,
		OvertimePay:        p.OvertimePay,
		UndertimeHours:     p.UndertimeHours,
		UndertimeDeduction: p.UndertimeDeduction,
		AdvanceAmount:      p.AdvanceAmount,
		FinalSalary:        p.FinalSalary,
		Status:             string(p.Status),
		PaidAt:             paidAt,
		PaidBy:             p.PaidBy,
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
	if p.EmployeeName != nil {
		resp.EmployeeName = *p.EmployeeName
	}
	if p.Department != nil {
		resp.Department = string(*p.Department)
	}
	if rec != nil {
		r := NewReconciliationResponse(*rec)
		resp.Balance = &r
	}
	return resp
}

type ListPayrollResponse struct {
	Payrolls   []PayrollResponse `json:"payrolls"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PayrollSummaryResponse struct {
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	TotalEmployees   int             `json:"total_employees"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalOvertimePay decimal.Decimal `json:"total_overtime_pay"`
	TotalUndertime   decimal.Decimal `json:"total_undertime_deduction"`
	TotalAdvances    decimal.Decimal `json:"total_advances"`
	TotalFinalSalary decimal.Decimal `json:"total_final_salary"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	PendingCount     int             `json:"pending_count"`
	PaidCount        int             `json:"paid_count"`
	LockedCount      int             `json:"locked_count"`
}

// ========== LEDGER ==========

type LedgerResponse struct {
	Payroll        PayrollResponse           `json:"payroll"`
	Payments       []payment.PaymentResponse `json:"payments"`
	Reconciliation ReconciliationResponse    `json:"reconciliation"`
	MaxPayable     decimal.Decimal           `json:"max_payable"`
	Recovery       *advance.AdvanceResponse  `json:"recovery,omitempty"`
}

type EmployeeLedgerMonth struct {
	PayrollID      string                 `json:"payroll_id"`
	PeriodMonth    int                    `json:"period_month"`
	PeriodYear     int                    `json:"period_year"`
	Status         string                 `json:"status"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
}

type EmployeeLedgerResponse struct {
	EmployeeID   string                `json:"employee_id"`
	Year         int                   `json:"year"`
	Months       []EmployeeLedgerMonth `json:"months"`
	TotalFinal   decimal.Decimal       `json:"total_final_salary"`
	TotalPaid    decimal.Decimal       `json:"total_paid"`
	TotalBalance decimal.Decimal       `json:"total_balance"`
}

type RecoveryResponse struct {
	PayrollID string                  `json:"payroll_id"`
	Advance   advance.AdvanceResponse `json:"advance"`
	Created   bool                    `json:"created"`
}
