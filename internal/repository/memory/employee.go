package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if existing.CNIC == e.CNIC {
			return employee.Employee{}, employee.ErrCNICExists
		}
	}
	if e.ID == "" {
		e.ID = newID()
	}
	now := r.s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.s.employees[e.ID] = e
	return e, nil
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.employees[e.ID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = r.s.now()
	r.s.employees[e.ID] = e
	return e, nil
}

func (r *employeeRepository) ExistsByCNIC(ctx context.Context, cnic string, excludeID *string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.employees {
		if e.CNIC == cnic && (excludeID == nil || e.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *employeeRepository) SetActive(ctx context.Context, id string, active bool) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	now := r.s.now()
	e.IsActive = active
	if active {
		e.InactivationDate = nil
	} else {
		e.InactivationDate = &now
	}
	e.UpdatedAt = now
	r.s.employees[id] = e
	return e, nil
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.s.employees {
		if filter.Department != nil && string(e.Department) != *filter.Department {
			continue
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != nil {
			q := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(e.CNIC, q) {
				continue
			}
		}
		out = append(out, e)
	}
	sortEmployees(out)
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *employeeRepository) GetEmployedDuring(ctx context.Context, from, to time.Time) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.JoiningDate.After(to) {
			continue
		}
		if e.IsActive || (e.InactivationDate != nil && !e.InactivationDate.Before(from)) {
			out = append(out, e)
		}
	}
	sortEmployees(out)
	return out, nil
}

func (r *employeeRepository) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []employee.Employee
	for _, id := range ids {
		if e, ok := r.s.employees[id]; ok {
			out = append(out, e)
		}
	}
	sortEmployees(out)
	return out, nil
}

func sortEmployees(es []employee.Employee) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Name != es[j].Name {
			return es[i].Name < es[j].Name
		}
		return es[i].ID < es[j].ID
	})
}
