package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Upsert writes the record keyed by (employee_id, date).
	Upsert(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	// GetOpenSession returns the latest record with a check-in but no check-out on or after since.
	GetOpenSession(ctx context.Context, employeeID string, since time.Time) (Record, error)
	ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)
	Delete(ctx context.Context, id string) error
}

type CredentialRepository interface {
	GetEmployeeID(ctx context.Context, credentialID string) (string, error)
	Register(ctx context.Context, credentialID, employeeID string) error
}
