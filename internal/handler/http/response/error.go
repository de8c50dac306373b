package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Ceilings carry the amount that would still be accepted
	var limitErr *apperror.LimitError
	if errors.As(err, &limitErr) {
		LimitExceeded(w, limitErr.Error(), limitErr.Limit.StringFixed(2))
		return
	}

	switch {
	// Input errors
	case errors.Is(err, apperror.ErrInvalidInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, apperror.ErrFutureDate):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrCheckTimesNotPresent):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, department.ErrUnknownDepartment):
		BadRequest(w, "Unknown department", nil)
	case errors.Is(err, attendance.ErrBiometricAuthFailed):
		Unauthorized(w, "Biometric authentication failed")

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, department.ErrRuleNotFound):
		NotFound(w, "Department rule not found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrCredentialNotFound):
		NotFound(w, "Biometric credential not registered")
	case errors.Is(err, advance.ErrAdvanceNotFound):
		NotFound(w, "Advance not found")
	case errors.Is(err, payment.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, payroll.ErrRecoveryNotFound):
		NotFound(w, "No recovery scheduled for this payroll")

	// Conflicts
	case errors.Is(err, employee.ErrCNICExists):
		Conflict(w, "CNIC already registered")
	case errors.Is(err, employee.ErrEmployeeAlreadyActive),
		errors.Is(err, employee.ErrEmployeeAlreadyInactive),
		errors.Is(err, employee.ErrEmployeeInactive):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNoOpenCheckIn):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayrollLocked),
		errors.Is(err, payroll.ErrPayrollNotPending),
		errors.Is(err, payroll.ErrPayrollNotPaid),
		errors.Is(err, payroll.ErrCannotDeletePaidRecord),
		errors.Is(err, payroll.ErrNotOverpaid):
		Conflict(w, err.Error())

	case errors.Is(err, apperror.ErrDataIntegrity):
		slog.Error("data integrity violation", "error", err)
		InternalServerError(w, "Stored data is inconsistent")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
