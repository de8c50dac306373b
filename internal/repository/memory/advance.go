package memory

import (
	"context"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/shopspring/decimal"
)

type advanceRepository struct {
	s *Store
}

func NewAdvanceRepository(s *Store) advance.AdvanceRepository {
	return &advanceRepository{s: s}
}

func (r *advanceRepository) Create(ctx context.Context, a advance.Advance) (advance.Advance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	a.ID = newID()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.advances[a.ID] = a
	return a, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string) (advance.Advance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.advances[id]
	if !ok {
		return advance.Advance{}, advance.ErrAdvanceNotFound
	}
	return a, nil
}

func (r *advanceRepository) GetByNote(ctx context.Context, employeeID, note string) (advance.Advance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.advances {
		if a.EmployeeID == employeeID && a.Notes != nil && *a.Notes == note {
			return a, nil
		}
	}
	return advance.Advance{}, advance.ErrAdvanceNotFound
}

func (r *advanceRepository) UpdateAmount(ctx context.Context, id string, amount decimal.Decimal, date time.Time) (advance.Advance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advances[id]
	if !ok {
		return advance.Advance{}, advance.ErrAdvanceNotFound
	}
	a.Amount = amount
	a.Date = date
	a.UpdatedAt = r.s.now()
	r.s.advances[id] = a
	return a, nil
}

func (r *advanceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.advances[id]; !ok {
		return advance.ErrAdvanceNotFound
	}
	delete(r.s.advances, id)
	return nil
}

func (r *advanceRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]advance.Advance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []advance.Advance
	for _, a := range r.s.advances {
		if a.EmployeeID == employeeID && inRange(a.Date, from, to) {
			out = append(out, a)
		}
	}
	sortByDate(out, func(a advance.Advance) time.Time { return a.Date })
	return out, nil
}

func (r *advanceRepository) List(ctx context.Context, filter advance.AdvanceFilter) ([]advance.Advance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []advance.Advance
	for _, a := range r.s.advances {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Month != nil && filter.Year != nil &&
			(int(a.Date.Month()) != *filter.Month || a.Date.Year() != *filter.Year) {
			continue
		}
		out = append(out, a)
	}
	sortByDate(out, func(a advance.Advance) time.Time { return a.Date })
	return out, nil
}
