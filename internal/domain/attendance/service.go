package attendance

import (
	"context"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
)

type AttendanceService interface {
	// Mark creates or replaces the record for an employee and day.
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)
	BulkMark(ctx context.Context, req BulkMarkRequest) (BulkMarkResponse, error)
	Update(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (AttendanceResponse, error)
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	CheckIn(ctx context.Context, req BiometricCheckRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req BiometricCheckRequest) (AttendanceResponse, error)
	RegisterCredential(ctx context.Context, req RegisterCredentialRequest) error

	// PreviewHours computes hours worked for a check-in/check-out pair.
	PreviewHours(ctx context.Context, req HoursPreviewRequest) (HoursPreviewResponse, error)
}

// BiometricIdentifier resolves a verified platform scan to an employee.
type BiometricIdentifier interface {
	ScanAndIdentify(ctx context.Context, scan BiometricScan) (employee.Employee, error)
}
