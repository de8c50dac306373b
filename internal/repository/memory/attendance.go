package memory

import (
	"context"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func (r *attendanceRepository) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, existing := range r.s.records {
		if existing.EmployeeID == record.EmployeeID && existing.Date.Equal(record.Date) {
			record.ID = id
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = now
			r.s.records[id] = record
			return record, nil
		}
	}

	record.ID = newID()
	record.CreatedAt, record.UpdatedAt = now, now
	r.s.records[record.ID] = record
	return record, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	record, ok := r.s.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return record, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, record := range r.s.records {
		if record.EmployeeID == employeeID && record.Date.Equal(date) {
			return record, nil
		}
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, since time.Time) (attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var open *attendance.Record
	for _, record := range r.s.records {
		if record.EmployeeID != employeeID || record.Date.Before(since) {
			continue
		}
		if record.CheckInTime == nil || record.CheckOutTime != nil {
			continue
		}
		if open == nil || record.Date.After(open.Date) {
			rec := record
			open = &rec
		}
	}
	if open == nil {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return *open, nil
}

func (r *attendanceRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []attendance.Record
	for _, record := range r.s.records {
		if record.EmployeeID == employeeID && inRange(record.Date, from, to) {
			out = append(out, record)
		}
	}
	sortByDate(out, func(r attendance.Record) time.Time { return r.Date })
	return out, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []attendance.Record
	for _, record := range r.s.records {
		if filter.EmployeeID != nil && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Month != nil && filter.Year != nil && !record.InPeriod(*filter.Month, *filter.Year) {
			continue
		}
		if filter.Status != nil && string(record.Status) != *filter.Status {
			continue
		}
		if filter.StartDate != nil {
			if from, err := utils.ParseDate(*filter.StartDate); err == nil && record.Date.Before(from) {
				continue
			}
		}
		if filter.EndDate != nil {
			if to, err := utils.ParseDate(*filter.EndDate); err == nil && record.Date.After(to) {
				continue
			}
		}
		out = append(out, record)
	}
	sortByDate(out, func(r attendance.Record) time.Time { return r.Date })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.s.records, id)
	return nil
}

type credentialRepository struct {
	s *Store
}

func NewCredentialRepository(s *Store) attendance.CredentialRepository {
	return &credentialRepository{s: s}
}

func (r *credentialRepository) GetEmployeeID(ctx context.Context, credentialID string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.credentials[credentialID]
	if !ok {
		return "", attendance.ErrCredentialNotFound
	}
	return id, nil
}

func (r *credentialRepository) Register(ctx context.Context, credentialID, employeeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.credentials[credentialID] = employeeID
	return nil
}
