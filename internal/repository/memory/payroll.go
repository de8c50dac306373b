package memory

import (
	"context"
	"sort"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	s *Store
}

func NewPayrollRepository(s *Store) payroll.PayrollRepository {
	return &payrollRepository{s: s}
}

func (r *payrollRepository) Upsert(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, existing := range r.s.payrolls {
		if existing.EmployeeID != p.EmployeeID || existing.PeriodMonth != p.PeriodMonth || existing.PeriodYear != p.PeriodYear {
			continue
		}
		if existing.Status != payroll.StatusPending {
			return payroll.Payroll{}, payroll.ErrPayrollLocked
		}
		p.ID = id
		p.Status = existing.Status
		p.PaidAt, p.PaidBy = existing.PaidAt, existing.PaidBy
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
		r.s.payrolls[id] = p
		return r.s.joined(p), nil
	}

	p.ID = newID()
	p.Status = payroll.StatusPending
	p.PaidAt, p.PaidBy = nil, nil
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.payrolls[p.ID] = p
	return r.s.joined(p), nil
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return r.s.joined(p), nil
}

func (r *payrollRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.GetByID(ctx, id)
}

func (r *payrollRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.payrolls {
		if p.EmployeeID == employeeID && p.PeriodMonth == month && p.PeriodYear == year {
			return r.s.joined(p), nil
		}
	}
	return payroll.Payroll{}, payroll.ErrPayrollNotFound
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []payroll.Payroll
	for _, p := range r.s.payrolls {
		p = r.s.joined(p)
		if filter.PeriodMonth != nil && p.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && p.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Department != nil && (p.Department == nil || string(*p.Department) != *filter.Department) {
			continue
		}
		out = append(out, p)
	}
	sortPayrolls(out)
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, month, year int, status *payroll.Status) ([]payroll.Payroll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []payroll.Payroll
	for _, p := range r.s.payrolls {
		if p.PeriodMonth != month || p.PeriodYear != year {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, r.s.joined(p))
	}
	sortPayrolls(out)
	return out, nil
}

func (r *payrollRepository) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]payroll.Payroll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []payroll.Payroll
	for _, p := range r.s.payrolls {
		if p.EmployeeID == employeeID && p.PeriodYear == year {
			out = append(out, r.s.joined(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodMonth < out[j].PeriodMonth })
	return out, nil
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, ids []string, from, to payroll.Status, paidBy *string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var updated []string
	for _, id := range ids {
		p, ok := r.s.payrolls[id]
		if !ok || p.Status != from {
			continue
		}
		p.Status = to
		if to == payroll.StatusPaid {
			p.PaidAt = &now
			p.PaidBy = paidBy
		}
		p.UpdatedAt = now
		r.s.payrolls[id] = p
		updated = append(updated, id)
	}
	return updated, nil
}

func (r *payrollRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payrolls[id]; !ok {
		return payroll.ErrPayrollNotFound
	}
	delete(r.s.payrolls, id)
	for pid, p := range r.s.payments {
		if p.PayrollID == id {
			delete(r.s.payments, pid)
		}
	}
	return nil
}

func (r *payrollRepository) Summary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	summary := payroll.PayrollSummaryResponse{
		PeriodMonth:      month,
		PeriodYear:       year,
		TotalEarned:      decimal.Zero,
		TotalOvertimePay: decimal.Zero,
		TotalUndertime:   decimal.Zero,
		TotalAdvances:    decimal.Zero,
		TotalFinalSalary: decimal.Zero,
		TotalPaid:        decimal.Zero,
	}
	for _, p := range r.s.payrolls {
		if p.PeriodMonth != month || p.PeriodYear != year {
			continue
		}
		summary.TotalEmployees++
		summary.TotalEarned = summary.TotalEarned.Add(p.EarnedSalary)
		summary.TotalOvertimePay = summary.TotalOvertimePay.Add(p.OvertimePay)
		summary.TotalUndertime = summary.TotalUndertime.Add(p.UndertimeDeduction)
		summary.TotalAdvances = summary.TotalAdvances.Add(p.AdvanceAmount)
		summary.TotalFinalSalary = summary.TotalFinalSalary.Add(p.FinalSalary)
		for _, pay := range r.s.paymentsFor(p.ID) {
			summary.TotalPaid = summary.TotalPaid.Add(pay.Amount)
		}
		switch p.Status {
		case payroll.StatusPending:
			summary.PendingCount++
		case payroll.StatusPaid:
			summary.PaidCount++
		case payroll.StatusLocked:
			summary.LockedCount++
		}
	}
	return summary, nil
}

// joined fills the employee columns a SQL join would. Caller holds mu.
func (s *Store) joined(p payroll.Payroll) payroll.Payroll {
	if e, ok := s.employees[p.EmployeeID]; ok {
		name, dept := e.Name, e.Department
		p.EmployeeName = &name
		p.Department = &dept
	}
	return p
}

func sortPayrolls(ps []payroll.Payroll) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].PeriodYear != ps[j].PeriodYear {
			return ps[i].PeriodYear > ps[j].PeriodYear
		}
		if ps[i].PeriodMonth != ps[j].PeriodMonth {
			return ps[i].PeriodMonth > ps[j].PeriodMonth
		}
		var ni, nj string
		if ps[i].EmployeeName != nil {
			ni = *ps[i].EmployeeName
		}
		if ps[j].EmployeeName != nil {
			nj = *ps[j].EmployeeName
		}
		if ni != nj {
			return ni < nj
		}
		return ps[i].ID < ps[j].ID
	})
}
