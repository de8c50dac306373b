package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	ExistsByCNIC(ctx context.Context, cnic string, excludeID *string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// GetEmployedDuring returns employees who joined by to and were not inactivated before from.
	GetEmployedDuring(ctx context.Context, from, to time.Time) ([]Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
}
