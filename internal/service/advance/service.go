package advance

import (
	"context"
	"fmt"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
	"github.com/nmw-hr/payroll-backend-go/internal/service/salary"
	"github.com/shopspring/decimal"
)

type AdvanceServiceImpl struct {
	tx             database.Transactor
	advanceRepo    advance.AdvanceRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	rules          department.RuleProvider
	notifier       payroll.ChangeNotifier
	loc            *time.Location
	now            func() time.Time
}

func NewAdvanceService(
	tx database.Transactor,
	advanceRepo advance.AdvanceRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	rules department.RuleProvider,
	notifier payroll.ChangeNotifier,
	loc *time.Location,
) advance.AdvanceService {
	return &AdvanceServiceImpl{
		tx:             tx,
		advanceRepo:    advanceRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		rules:          rules,
		notifier:       notifier,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *AdvanceServiceImpl) Create(ctx context.Context, req advance.CreateAdvanceRequest) (advance.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return advance.AdvanceResponse{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}
	if utils.IsFutureDate(date, s.now(), s.loc) {
		return advance.AdvanceResponse{}, apperror.FutureDate("date")
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}
	if !emp.ActiveOn(date) {
		return advance.AdvanceResponse{}, employee.ErrEmployeeInactive
	}

	rule, err := s.rules.GetRules(ctx, emp.Department)
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	amount := req.Amount.Round(0)
	month, year := int(date.Month()), date.Year()

	var created advance.Advance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		gross, existing, err := s.monthToDate(ctx, emp, rule, month, year)
		if err != nil {
			return err
		}
		if err := salary.ValidateAdvance(gross, existing, amount, rule); err != nil {
			return err
		}

		created, err = s.advanceRepo.Create(ctx, advance.Advance{
			EmployeeID: emp.ID,
			Date:       date,
			Amount:     amount,
			Notes:      req.Notes,
		})
		return err
	})
	if err != nil {
		return advance.AdvanceResponse{}, err
	}

	s.notify(ctx, created)
	return advance.NewAdvanceResponse(created), nil
}

// monthToDate returns the gross earned so far in the month and the advances already drawn.
func (s *AdvanceServiceImpl) monthToDate(ctx context.Context, emp employee.Employee, rule department.Rule, month, year int) (gross, existing decimal.Decimal, err error) {
	from, to := utils.MonthRange(month, year)

	records, err := s.attendanceRepo.ListByEmployeePeriod(ctx, emp.ID, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load attendance: %w", err)
	}
	advances, err := s.advanceRepo.ListByEmployeePeriod(ctx, emp.ID, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to load advances: %w", err)
	}

	breakdown, err := salary.Calculate(salary.Input{
		BaseSalary:   emp.BaseSalary,
		OvertimeRate: emp.OvertimeRate,
		Department:   emp.Department,
		Month:        month,
		Year:         year,
		Records:      records,
		Rule:         rule,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return breakdown.Gross(), advance.Sum(advances), nil
}

func (s *AdvanceServiceImpl) Delete(ctx context.Context, id string) error {
	existing, err := s.advanceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.advanceRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, existing)
	return nil
}

func (s *AdvanceServiceImpl) List(ctx context.Context, filter advance.AdvanceFilter) ([]advance.AdvanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	advances, err := s.advanceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}

	responses := make([]advance.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		responses = append(responses, advance.NewAdvanceResponse(a))
	}
	return responses, nil
}

func (s *AdvanceServiceImpl) notify(ctx context.Context, a advance.Advance) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, payroll.ChangeEvent{
		Kind:       payroll.EventAdvanceChanged,
		EmployeeID: a.EmployeeID,
		Date:       a.Date,
	})
}
