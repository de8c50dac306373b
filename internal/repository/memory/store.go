// Package memory keeps every repository in process memory. It backs the
// service tests and APP_STORAGE=memory; nothing is persisted.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
)

// Store holds the tables. Repositories built from the same Store share them.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	employees   map[string]employee.Employee
	rules       map[department.Department]department.Rule
	records     map[string]attendance.Record
	credentials map[string]string
	advances    map[string]advance.Advance
	payrolls    map[string]payroll.Payroll
	payments    map[string]payment.Payment

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees:   make(map[string]employee.Employee),
		rules:       make(map[department.Department]department.Rule),
		records:     make(map[string]attendance.Record),
		credentials: make(map[string]string),
		advances:    make(map[string]advance.Advance),
		payrolls:    make(map[string]payroll.Payroll),
		payments:    make(map[string]payment.Payment),
		now:         time.Now,
	}
}

// WithinTransaction serializes fn against other transactions. Writes made
// before an error are not rolled back.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func newID() string {
	return uuid.NewString()
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortByDate[T any](items []T, date func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return date(items[i]).Before(date(items[j]))
	})
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
