package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/jwt"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
	"github.com/nmw-hr/payroll-backend-go/internal/service/ledger"
	"github.com/nmw-hr/payroll-backend-go/internal/service/salary"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	paymentRepo    payment.PaymentRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	advanceRepo    advance.AdvanceRepository
	rules          department.RuleProvider
	parallel       int
	loc            *time.Location
	now            func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	paymentRepo payment.PaymentRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	advanceRepo advance.AdvanceRepository,
	rules department.RuleProvider,
	parallel int,
	loc *time.Location,
) payroll.PayrollService {
	if parallel < 1 {
		parallel = 1
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		paymentRepo:    paymentRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		advanceRepo:    advanceRepo,
		rules:          rules,
		parallel:       parallel,
		loc:            loc,
		now:            time.Now,
	}
}

// ========== GENERATION ==========

// snapshot derives the payroll figures for one employee and month from current data.
func (s *PayrollServiceImpl) snapshot(ctx context.Context, emp employee.Employee, month, year int) (payroll.Payroll, error) {
	rule, err := s.rules.GetRules(ctx, emp.Department)
	if err != nil {
		return payroll.Payroll{}, err
	}

	from, to := utils.MonthRange(month, year)
	records, err := s.attendanceRepo.ListByEmployeePeriod(ctx, emp.ID, from, to)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	advances, err := s.advanceRepo.ListByEmployeePeriod(ctx, emp.ID, from, to)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to load advances: %w", err)
	}

	b, err := salary.Calculate(salary.Input{
		BaseSalary:    emp.BaseSalary,
		OvertimeRate:  emp.OvertimeRate,
		Department:    emp.Department,
		Month:         month,
		Year:          year,
		Records:       records,
		AdvanceAmount: advance.Sum(advances),
		Rule:          rule,
	})
	if err != nil {
		return payroll.Payroll{}, err
	}

	return payroll.Payroll{
		EmployeeID:         emp.ID,
		PeriodMonth:        month,
		PeriodYear:         year,
		BaseSalary:         emp.BaseSalary,
		PresentDays:        b.PresentDays,
		AbsentDays:         b.AbsentDays,
		LeaveDays:          b.LeaveDays,
		HolidayDays:        b.HolidayDays,
		PerDaySalary:       b.PerDaySalary.Round(6),
		HourlyRate:         b.HourlyRate.Round(6),
		EarnedSalary:       b.EarnedSalary,
		OvertimeHours:      b.OvertimeHours,
		OvertimePay:        b.OvertimePay,
		UndertimeHours:     b.UndertimeHours,
		UndertimeDeduction: b.UndertimeDeduction,
		AdvanceAmount:      b.AdvanceAmount,
		FinalSalary:        b.FinalSalary,
	}, nil
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	if utils.IsFutureMonth(req.PeriodMonth, req.PeriodYear, s.now(), s.loc) {
		return payroll.GeneratePayrollResponse{}, apperror.FutureDate("period")
	}

	from, to := utils.MonthRange(req.PeriodMonth, req.PeriodYear)
	var (
		employees []employee.Employee
		err       error
	)
	if len(req.EmployeeIDs) > 0 {
		employees, err = s.employeeRepo.GetByIDs(ctx, req.EmployeeIDs)
	} else {
		employees, err = s.employeeRepo.GetEmployedDuring(ctx, from, to)
	}
	if err != nil {
		return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}

	resp := payroll.GeneratePayrollResponse{
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Generated:   []payroll.PayrollResponse{},
		Skipped:     []payroll.SkippedPayroll{},
	}

	found := make(map[string]bool, len(employees))
	for _, e := range employees {
		found[e.ID] = true
	}
	for _, id := range req.EmployeeIDs {
		if !found[id] {
			resp.Skipped = append(resp.Skipped, payroll.SkippedPayroll{EmployeeID: id, Reason: employee.ErrEmployeeNotFound.Error()})
		}
	}

	var eligible []employee.Employee
	for _, e := range employees {
		switch {
		case e.JoiningDate.After(to):
			resp.Skipped = append(resp.Skipped, payroll.SkippedPayroll{EmployeeID: e.ID, Reason: "joined after the period"})
		case !e.IsActive && e.InactivationDate != nil && e.InactivationDate.Before(from):
			resp.Skipped = append(resp.Skipped, payroll.SkippedPayroll{EmployeeID: e.ID, Reason: employee.ErrEmployeeInactive.Error()})
		default:
			eligible = append(eligible, e)
		}
	}

	results := make([]*payroll.Payroll, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, e := range eligible {
		g.Go(func() error {
			snap, err := s.snapshot(gctx, e, req.PeriodMonth, req.PeriodYear)
			if err != nil {
				return fmt.Errorf("employee %s: %w", e.ID, err)
			}
			saved, err := s.payrollRepo.Upsert(gctx, snap)
			if errors.Is(err, payroll.ErrPayrollLocked) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("employee %s: %w", e.ID, err)
			}
			results[i] = &saved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	for i, saved := range results {
		if saved == nil {
			resp.Skipped = append(resp.Skipped, payroll.SkippedPayroll{EmployeeID: eligible[i].ID, Reason: payroll.ErrPayrollLocked.Error()})
			continue
		}
		resp.Generated = append(resp.Generated, payroll.NewPayrollResponse(*saved, nil))
	}

	slog.Info("payroll generated",
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"generated", len(resp.Generated),
		"skipped", len(resp.Skipped),
	)
	return resp, nil
}

// ========== RECOMPUTE ==========

// Recompute implements payroll.PayrollService.
func (s *PayrollServiceImpl) Recompute(ctx context.Context, employeeID string, month, year int) (bool, error) {
	existing, err := s.payrollRepo.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollNotFound) {
			return false, nil
		}
		return false, err
	}
	if existing.Status.IsFrozen() {
		return false, nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return false, err
	}

	snap, err := s.snapshot(ctx, emp, month, year)
	if err != nil {
		return false, err
	}

	if _, err := s.payrollRepo.Upsert(ctx, snap); err != nil {
		// marked paid after the read above
		if errors.Is(err, payroll.ErrPayrollLocked) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RecomputeByID implements payroll.PayrollService.
func (s *PayrollServiceImpl) RecomputeByID(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	if p.Status.IsFrozen() {
		return payroll.PayrollResponse{}, payroll.ErrPayrollLocked
	}

	if _, err := s.Recompute(ctx, p.EmployeeID, p.PeriodMonth, p.PeriodYear); err != nil {
		return payroll.PayrollResponse{}, err
	}
	return s.Get(ctx, id)
}

// SweepPending implements payroll.PayrollService.
func (s *PayrollServiceImpl) SweepPending(ctx context.Context) error {
	today := utils.Today(s.now(), s.loc)
	month, year := int(today.Month()), today.Year()
	prevMonth, prevYear := utils.PreviousMonth(month, year)

	pending := payroll.StatusPending
	var errs []error
	swept := 0
	for _, period := range [][2]int{{prevMonth, prevYear}, {month, year}} {
		payrolls, err := s.payrollRepo.ListByPeriod(ctx, period[0], period[1], &pending)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to list pending payrolls for %d/%d: %w", period[0], period[1], err))
			continue
		}
		for _, p := range payrolls {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.Recompute(ctx, p.EmployeeID, p.PeriodMonth, p.PeriodYear); err != nil {
				slog.Error("sweep recompute failed", "payroll_id", p.ID, "employee_id", p.EmployeeID, "error", err)
				errs = append(errs, err)
				continue
			}
			swept++
		}
	}

	slog.Info("pending payrolls swept", "count", swept, "failed", len(errs))
	return errors.Join(errs...)
}

// ========== QUERIES ==========

// Get implements payroll.PayrollService.
func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	payments, err := s.paymentRepo.ListByPayroll(ctx, id)
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to list payments: %w", err)
	}

	rec := ledger.Reconcile(p.FinalSalary, payments)
	return payroll.NewPayrollResponse(p, &rec), nil
}

// List implements payroll.PayrollService.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	payrolls, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	reconciled, err := s.reconcileAll(ctx, payrolls)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	responses := make([]payroll.PayrollResponse, 0, len(payrolls))
	for i, p := range payrolls {
		responses = append(responses, payroll.NewPayrollResponse(p, &reconciled[i]))
	}

	return payroll.ListPayrollResponse{
		Payrolls:   responses,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *PayrollServiceImpl) reconcileAll(ctx context.Context, payrolls []payroll.Payroll) ([]payroll.Reconciliation, error) {
	ids := make([]string, 0, len(payrolls))
	for _, p := range payrolls {
		ids = append(ids, p.ID)
	}
	payments, err := s.paymentRepo.ListByPayrolls(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]payroll.Reconciliation, len(payrolls))
	for i, p := range payrolls {
		out[i] = ledger.Reconcile(p.FinalSalary, payments[p.ID])
	}
	return out, nil
}

// Summary implements payroll.PayrollService.
func (s *PayrollServiceImpl) Summary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	if month < 1 || month > 12 {
		return payroll.PayrollSummaryResponse{}, apperror.InvalidInput("month %d must be between 1 and 12", month)
	}
	if year < 2000 || year > 2100 {
		return payroll.PayrollSummaryResponse{}, apperror.InvalidInput("year %d is out of range", year)
	}

	summary, err := s.payrollRepo.Summary(ctx, month, year)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to summarize payrolls: %w", err)
	}
	return summary, nil
}

// ========== STATUS ==========

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.StatusChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.StatusChangeResponse{}, err
	}
	return s.transition(ctx, req.PayrollIDs, payroll.StatusPending, payroll.StatusPaid, jwt.UserIDFromContext(ctx))
}

// MarkAllPaid marks a month's pending payrolls paid. With SettledOnly, rows
// whose balance is not settled stay pending.
func (s *PayrollServiceImpl) MarkAllPaid(ctx context.Context, req payroll.MarkAllPaidRequest) (payroll.StatusChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.StatusChangeResponse{}, err
	}

	pending := payroll.StatusPending
	payrolls, err := s.payrollRepo.ListByPeriod(ctx, req.PeriodMonth, req.PeriodYear, &pending)
	if err != nil {
		return payroll.StatusChangeResponse{}, fmt.Errorf("failed to list pending payrolls: %w", err)
	}

	ids := make([]string, 0, len(payrolls))
	var unsettled []string
	if req.SettledOnly {
		reconciled, err := s.reconcileAll(ctx, payrolls)
		if err != nil {
			return payroll.StatusChangeResponse{}, err
		}
		for i, p := range payrolls {
			if reconciled[i].Status == payroll.BalanceSettled {
				ids = append(ids, p.ID)
			} else {
				unsettled = append(unsettled, p.ID)
			}
		}
	} else {
		for _, p := range payrolls {
			ids = append(ids, p.ID)
		}
	}

	resp, err := s.transition(ctx, ids, payroll.StatusPending, payroll.StatusPaid, jwt.UserIDFromContext(ctx))
	if err != nil {
		return payroll.StatusChangeResponse{}, err
	}
	resp.Skipped = append(resp.Skipped, unsettled...)
	return resp, nil
}

// Lock implements payroll.PayrollService.
func (s *PayrollServiceImpl) Lock(ctx context.Context, req payroll.LockRequest) (payroll.StatusChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.StatusChangeResponse{}, err
	}
	return s.transition(ctx, req.PayrollIDs, payroll.StatusPaid, payroll.StatusLocked, nil)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, ids []string, from, to payroll.Status, paidBy *string) (payroll.StatusChangeResponse, error) {
	resp := payroll.StatusChangeResponse{Updated: []string{}, Skipped: []string{}}
	if len(ids) == 0 {
		return resp, nil
	}

	updated, err := s.payrollRepo.UpdateStatus(ctx, ids, from, to, paidBy)
	if err != nil {
		return payroll.StatusChangeResponse{}, fmt.Errorf("failed to update payroll status: %w", err)
	}

	done := make(map[string]bool, len(updated))
	for _, id := range updated {
		done[id] = true
	}
	for _, id := range ids {
		if done[id] {
			resp.Updated = append(resp.Updated, id)
		} else {
			resp.Skipped = append(resp.Skipped, id)
		}
	}

	slog.Info("payroll status changed", "from", from, "to", to, "updated", len(resp.Updated), "skipped", len(resp.Skipped))
	return resp, nil
}

// Delete implements payroll.PayrollService.
func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != payroll.StatusPending {
		return payroll.ErrCannotDeletePaidRecord
	}
	return s.payrollRepo.Delete(ctx, id)
}
