package payment

import (
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	PayrollID string          `json:"-"`
	Date      string          `json:"date" validate:"required,date"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CreatePaymentRequest) Validate() error {
	errs := validator.Struct(r)

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePaymentRequest struct {
	ID     string           `json:"-"`
	Date   *string          `json:"date,omitempty" validate:"omitempty,date"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Notes  *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *UpdatePaymentRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Amount != nil && !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	PayrollID  string          `json:"payroll_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      *string         `json:"notes,omitempty"`
}

func NewPaymentResponse(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		PayrollID:  p.PayrollID,
		Date:       p.Date.Format("2006-01-02"),
		Amount:     p.Amount,
		Notes:      p.Notes,
	}
}
