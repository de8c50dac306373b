package attendance

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type MarkAttendanceRequest struct {
	EmployeeID     string           `json:"employee_id" validate:"required,uuid"`
	Date           string           `json:"date" validate:"required,date"`
	Status         string           `json:"status" validate:"required,oneof=present absent leave holiday"`
	CheckInTime    *string          `json:"check_in_time,omitempty" validate:"omitempty,clock"`
	CheckOutTime   *string          `json:"check_out_time,omitempty" validate:"omitempty,clock"`
	ShiftType      string           `json:"shift_type" validate:"omitempty,oneof=day night regular"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	UndertimeHours *decimal.Decimal `json:"undertime_hours,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validateHours(r.Status, r.CheckInTime, r.CheckOutTime, r.OvertimeHours, r.UndertimeHours)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHours(status string, checkIn, checkOut *string, overtime, undertime *decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if (checkIn != nil || checkOut != nil) && status != "" && status != string(StatusPresent) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be present when check times are given"})
	}
	if checkIn == nil && checkOut != nil {
		errs = append(errs, validator.ValidationError{Field: "check_in_time", Message: "is required when check_out_time is given"})
	}
	if overtime != nil && overtime.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if undertime != nil && undertime.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "undertime_hours", Message: "must be non-negative"})
	}
	if overtime != nil && undertime != nil && overtime.IsPositive() && undertime.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "undertime_hours", Message: "cannot be set together with overtime_hours"})
	}
	return errs
}

type BulkMarkRequest struct {
	Date        string   `json:"date" validate:"required,date"`
	Status      string   `json:"status" validate:"required,oneof=present absent leave holiday"`
	ShiftType   string   `json:"shift_type" validate:"omitempty,oneof=day night regular"`
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,uuid"`
}

func (r *BulkMarkRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type BulkMarkResponse struct {
	Marked []AttendanceResponse `json:"marked"`
	Failed []BulkFailure        `json:"failed"`
}

type UpdateAttendanceRequest struct {
	ID             string           `json:"-"`
	Status         *string          `json:"status,omitempty" validate:"omitempty,oneof=present absent leave holiday"`
	CheckInTime    *string          `json:"check_in_time,omitempty" validate:"omitempty,clock"`
	CheckOutTime   *string          `json:"check_out_time,omitempty" validate:"omitempty,clock"`
	ShiftType      *string          `json:"shift_type,omitempty" validate:"omitempty,oneof=day night regular"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	UndertimeHours *decimal.Decimal `json:"undertime_hours,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	errs := validator.Struct(r)

	status := ""
	if r.Status != nil {
		status = *r.Status
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if r.UndertimeHours != nil && r.UndertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "undertime_hours", Message: "must be non-negative"})
	}
	if status != "" && status != string(StatusPresent) && (r.CheckInTime != nil || r.CheckOutTime != nil) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be present when check times are given"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BiometricCheckRequest struct {
	CredentialID string `json:"credential_id" validate:"required"`
	Verified     bool   `json:"verified"`
	ShiftType    string `json:"shift_type" validate:"omitempty,oneof=day night regular"`
}

func (r *BiometricCheckRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegisterCredentialRequest struct {
	EmployeeID   string `json:"employee_id" validate:"required,uuid"`
	CredentialID string `json:"credential_id" validate:"required,max=512"`
}

func (r *RegisterCredentialRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type HoursPreviewRequest struct {
	CheckInTime  string `json:"check_in_time" validate:"required,clock"`
	CheckOutTime string `json:"check_out_time" validate:"required,clock"`
	ShiftType    string `json:"shift_type" validate:"omitempty,oneof=day night regular"`
	Department   string `json:"department"`
}

func (r *HoursPreviewRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Department != "" && !department.Department(r.Department).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is not a known department"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type HoursPreviewResponse struct {
	HoursWorked    decimal.Decimal  `json:"hours_worked"`
	StandardHours  *decimal.Decimal `json:"standard_hours,omitempty"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	UndertimeHours *decimal.Decimal `json:"undertime_hours,omitempty"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
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
		f.Limit = 31
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 500"})
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: present, absent, leave, holiday"})
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if (f.Month == nil) != (f.Year == nil) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month and year must be given together"})
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employee_id"`
	Date              string           `json:"date"`
	Status            string           `json:"status"`
	CheckInTime       *string          `json:"check_in_time,omitempty"`
	CheckOutTime      *string          `json:"check_out_time,omitempty"`
	HoursWorked       *decimal.Decimal `json:"hours_worked,omitempty"`
	OvertimeHours     decimal.Decimal  `json:"overtime_hours"`
	UndertimeHours    decimal.Decimal  `json:"undertime_hours"`
	ShiftType         string           `json:"shift_type"`
	BiometricVerified bool             `json:"biometric_verified"`
	VerifiedAt        *string          `json:"verified_at,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

type ListAttendanceResponse struct {
	Records    []AttendanceResponse `json:"records"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

func NewAttendanceResponse(r Record) AttendanceResponse {
	var verifiedAt *string
	if r.VerifiedAt != nil {
		s := r.VerifiedAt.Format(time.RFC3339)
		verifiedAt = &s
	}
	return AttendanceResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		Date:              r.Date.Format(dateLayout),
		Status:            string(r.Status),
		CheckInTime:       r.CheckInTime,
		CheckOutTime:      r.CheckOutTime,
		HoursWorked:       r.HoursWorked,
		OvertimeHours:     r.OvertimeHours,
		UndertimeHours:    r.UndertimeHours,
		ShiftType:         string(r.ShiftType),
		BiometricVerified: r.BiometricVerified,
		VerifiedAt:        verifiedAt,
		Notes:             r.Notes,
	}
}
