package advance

import (
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required,uuid"`
	Date       string          `json:"date" validate:"required,date"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CreateAdvanceRequest) Validate() error {
	errs := validator.Struct(r)

	if !r.Amount.Round(0).IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

func (f *AdvanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if (f.Month == nil) != (f.Year == nil) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month and year must be given together"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      *string         `json:"notes,omitempty"`
}

func NewAdvanceResponse(a Advance) AdvanceResponse {
	return AdvanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Format("2006-01-02"),
		Amount:     a.Amount,
		Notes:      a.Notes,
	}
}
