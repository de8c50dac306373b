package employee

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Name         string           `json:"name" validate:"required,max=150"`
	CNIC         string           `json:"cnic" validate:"required,cnic"`
	Department   string           `json:"department" validate:"required"`
	BaseSalary   decimal.Decimal  `json:"base_salary"`
	OvertimeRate *decimal.Decimal `json:"overtime_rate,omitempty"`
	JoiningDate  string           `json:"joining_date" validate:"required,date"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Department != "" && !department.Department(r.Department).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is not a known department"})
	}
	if r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.OvertimeRate != nil && r.OvertimeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_rate", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID           string           `json:"-"`
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	CNIC         *string          `json:"cnic,omitempty" validate:"omitempty,cnic"`
	Department   *string          `json:"department,omitempty"`
	BaseSalary   *decimal.Decimal `json:"base_salary,omitempty"`
	OvertimeRate *decimal.Decimal `json:"overtime_rate,omitempty"`
	JoiningDate  *string          `json:"joining_date,omitempty" validate:"omitempty,date"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Department != nil && !department.Department(*r.Department).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is not a known department"})
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	if r.OvertimeRate != nil && r.OvertimeRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_rate", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Department *string `json:"department,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
	Search     *string `json:"search,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
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
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	if f.Department != nil && !department.Department(*f.Department).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is not a known department"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	CNIC             string           `json:"cnic"`
	Department       string           `json:"department"`
	BaseSalary       decimal.Decimal  `json:"base_salary"`
	OvertimeRate     *decimal.Decimal `json:"overtime_rate,omitempty"`
	JoiningDate      string           `json:"joining_date"`
	IsActive         bool             `json:"is_active"`
	InactivationDate *string          `json:"inactivation_date,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	var inactivation *string
	if e.InactivationDate != nil {
		s := e.InactivationDate.Format("2006-01-02")
		inactivation = &s
	}
	return EmployeeResponse{
		ID:               e.ID,
		Name:             e.Name,
		CNIC:             e.CNIC,
		Department:       string(e.Department),
		BaseSalary:       e.BaseSalary,
		OvertimeRate:     e.OvertimeRate,
		JoiningDate:      e.JoiningDate.Format("2006-01-02"),
		IsActive:         e.IsActive,
		InactivationDate: inactivation,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}
