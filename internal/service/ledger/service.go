package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

type LedgerServiceImpl struct {
	tx          database.Transactor
	payrollRepo payroll.PayrollRepository
	paymentRepo payment.PaymentRepository
	advanceRepo advance.AdvanceRepository
	notifier    payroll.ChangeNotifier
	loc         *time.Location
	now         func() time.Time
}

func NewLedgerService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	paymentRepo payment.PaymentRepository,
	advanceRepo advance.AdvanceRepository,
	notifier payroll.ChangeNotifier,
	loc *time.Location,
) payroll.LedgerService {
	return &LedgerServiceImpl{
		tx:          tx,
		payrollRepo: payrollRepo,
		paymentRepo: paymentRepo,
		advanceRepo: advanceRepo,
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *LedgerServiceImpl) notify(ctx context.Context, kind payroll.EventKind, employeeID string, date time.Time) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, payroll.ChangeEvent{Kind: kind, EmployeeID: employeeID, Date: date})
}

// ========== PAYMENTS ==========

func (s *LedgerServiceImpl) RecordPayment(ctx context.Context, req payment.CreatePaymentRequest) (payment.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.PaymentResponse{}, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	if utils.IsFutureDate(date, s.now(), s.loc) {
		return payment.PaymentResponse{}, apperror.FutureDate("date")
	}

	var created payment.Payment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payrollRepo.GetByIDForUpdate(ctx, req.PayrollID)
		if err != nil {
			return err
		}
		if p.Status == payroll.StatusLocked {
			return payroll.ErrPayrollLocked
		}

		paid, err := s.paymentRepo.SumByPayroll(ctx, p.ID, nil)
		if err != nil {
			return err
		}
		amount, err := ValidatePayment(p.FinalSalary, paid, req.Amount)
		if err != nil {
			return err
		}

		created, err = s.paymentRepo.Create(ctx, payment.Payment{
			EmployeeID: p.EmployeeID,
			PayrollID:  p.ID,
			Date:       date,
			Amount:     amount,
			Notes:      req.Notes,
		})
		return err
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	s.notify(ctx, payroll.EventPaymentChanged, created.EmployeeID, created.Date)
	return payment.NewPaymentResponse(created), nil
}

// UpdatePayment re-validates only when the amount grows, so an existing
// historical overpayment can still be corrected downward.
func (s *LedgerServiceImpl) UpdatePayment(ctx context.Context, req payment.UpdatePaymentRequest) (payment.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.PaymentResponse{}, err
	}

	var updated payment.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.paymentRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		p, err := s.payrollRepo.GetByIDForUpdate(ctx, existing.PayrollID)
		if err != nil {
			return err
		}
		if p.Status == payroll.StatusLocked {
			return payroll.ErrPayrollLocked
		}

		next := existing
		if req.Date != nil {
			date, err := utils.ParseDate(*req.Date)
			if err != nil {
				return err
			}
			if utils.IsFutureDate(date, s.now(), s.loc) {
				return apperror.FutureDate("date")
			}
			next.Date = date
		}
		if req.Notes != nil {
			next.Notes = req.Notes
		}
		if req.Amount != nil {
			amount := req.Amount.Round(2)
			if amount.GreaterThan(existing.Amount) {
				paidExcluding, err := s.paymentRepo.SumByPayroll(ctx, p.ID, &existing.ID)
				if err != nil {
					return err
				}
				if amount, err = ValidatePayment(p.FinalSalary, paidExcluding, amount); err != nil {
					return err
				}
			}
			if !amount.IsPositive() {
				return apperror.InvalidInput("payment amount must be positive")
			}
			next.Amount = amount
		}

		updated, err = s.paymentRepo.Update(ctx, next)
		return err
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}

	s.notify(ctx, payroll.EventPaymentChanged, updated.EmployeeID, updated.Date)
	return payment.NewPaymentResponse(updated), nil
}

func (s *LedgerServiceImpl) DeletePayment(ctx context.Context, id string) error {
	var deleted payment.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.paymentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p, err := s.payrollRepo.GetByIDForUpdate(ctx, existing.PayrollID)
		if err != nil {
			return err
		}
		if p.Status == payroll.StatusLocked {
			return payroll.ErrPayrollLocked
		}
		deleted = existing
		return s.paymentRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, payroll.EventPaymentChanged, deleted.EmployeeID, deleted.Date)
	return nil
}

func (s *LedgerServiceImpl) ListPayments(ctx context.Context, payrollID string) ([]payment.PaymentResponse, error) {
	if _, err := s.payrollRepo.GetByID(ctx, payrollID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByPayroll(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	responses := make([]payment.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, payment.NewPaymentResponse(p))
	}
	return responses, nil
}

// ========== LEDGER ==========

func (s *LedgerServiceImpl) GetLedger(ctx context.Context, payrollID string) (payroll.LedgerResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return payroll.LedgerResponse{}, err
	}

	payments, err := s.paymentRepo.ListByPayroll(ctx, payrollID)
	if err != nil {
		return payroll.LedgerResponse{}, fmt.Errorf("failed to list payments: %w", err)
	}

	rec := Reconcile(p.FinalSalary, payments)
	resp := payroll.LedgerResponse{
		Payroll:        payroll.NewPayrollResponse(p, &rec),
		Payments:       make([]payment.PaymentResponse, 0, len(payments)),
		Reconciliation: payroll.NewReconciliationResponse(rec),
		MaxPayable:     Headroom(p.FinalSalary, rec.TotalPaid),
	}
	for _, pay := range payments {
		resp.Payments = append(resp.Payments, payment.NewPaymentResponse(pay))
	}

	recovery, err := s.advanceRepo.GetByNote(ctx, p.EmployeeID, RecoveryNote(p.PeriodMonth, p.PeriodYear))
	switch {
	case err == nil:
		r := advance.NewAdvanceResponse(recovery)
		resp.Recovery = &r
	case !errors.Is(err, advance.ErrAdvanceNotFound):
		return payroll.LedgerResponse{}, fmt.Errorf("failed to look up recovery advance: %w", err)
	}

	return resp, nil
}

func (s *LedgerServiceImpl) GetEmployeeLedger(ctx context.Context, employeeID string, year int) (payroll.EmployeeLedgerResponse, error) {
	if year < 2000 || year > 2100 {
		return payroll.EmployeeLedgerResponse{}, apperror.InvalidInput("year %d is out of range", year)
	}

	payrolls, err := s.payrollRepo.ListByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return payroll.EmployeeLedgerResponse{}, fmt.Errorf("failed to list payrolls: %w", err)
	}

	ids := make([]string, 0, len(payrolls))
	for _, p := range payrolls {
		ids = append(ids, p.ID)
	}
	payments, err := s.paymentRepo.ListByPayrolls(ctx, ids)
	if err != nil {
		return payroll.EmployeeLedgerResponse{}, fmt.Errorf("failed to list payments: %w", err)
	}

	resp := payroll.EmployeeLedgerResponse{
		EmployeeID:   employeeID,
		Year:         year,
		Months:       make([]payroll.EmployeeLedgerMonth, 0, len(payrolls)),
		TotalFinal:   decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalBalance: decimal.Zero,
	}
	for _, p := range payrolls {
		rec := Reconcile(p.FinalSalary, payments[p.ID])
		resp.Months = append(resp.Months, payroll.EmployeeLedgerMonth{
			PayrollID:      p.ID,
			PeriodMonth:    p.PeriodMonth,
			PeriodYear:     p.PeriodYear,
			Status:         string(p.Status),
			Reconciliation: payroll.NewReconciliationResponse(rec),
		})
		resp.TotalFinal = resp.TotalFinal.Add(rec.FinalSalary)
		resp.TotalPaid = resp.TotalPaid.Add(rec.TotalPaid)
		resp.TotalBalance = resp.TotalBalance.Add(rec.Balance)
	}

	return resp, nil
}

// ========== RECOVERY ==========

func (s *LedgerServiceImpl) ScheduleRecovery(ctx context.Context, payrollID string) (payroll.RecoveryResponse, error) {
	var (
		result  advance.Advance
		created bool
		changed bool
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payrollRepo.GetByIDForUpdate(ctx, payrollID)
		if err != nil {
			return err
		}
		paid, err := s.paymentRepo.SumByPayroll(ctx, p.ID, nil)
		if err != nil {
			return err
		}

		plan, err := PlanRecovery(p.PeriodMonth, p.PeriodYear, reconcileTotal(p.FinalSalary, paid))
		if err != nil {
			return err
		}

		existing, err := s.advanceRepo.GetByNote(ctx, p.EmployeeID, plan.Note)
		switch {
		case errors.Is(err, advance.ErrAdvanceNotFound):
			note := plan.Note
			result, err = s.advanceRepo.Create(ctx, advance.Advance{
				EmployeeID: p.EmployeeID,
				Date:       plan.Date,
				Amount:     plan.Amount,
				Notes:      &note,
			})
			created, changed = err == nil, err == nil
			return err
		case err != nil:
			return err
		case existing.Amount.Equal(plan.Amount) && existing.Date.Equal(plan.Date):
			result = existing
			return nil
		default:
			result, err = s.advanceRepo.UpdateAmount(ctx, existing.ID, plan.Amount, plan.Date)
			changed = err == nil
			return err
		}
	})
	if err != nil {
		return payroll.RecoveryResponse{}, err
	}

	if changed {
		slog.Info("recovery advance scheduled", "payroll_id", payrollID, "advance_id", result.ID, "amount", result.Amount.String())
		s.notify(ctx, payroll.EventAdvanceChanged, result.EmployeeID, result.Date)
	}

	return payroll.RecoveryResponse{
		PayrollID: payrollID,
		Advance:   advance.NewAdvanceResponse(result),
		Created:   created,
	}, nil
}

func (s *LedgerServiceImpl) CancelRecovery(ctx context.Context, payrollID string) error {
	p, err := s.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return err
	}

	existing, err := s.advanceRepo.GetByNote(ctx, p.EmployeeID, RecoveryNote(p.PeriodMonth, p.PeriodYear))
	if err != nil {
		if errors.Is(err, advance.ErrAdvanceNotFound) {
			return payroll.ErrRecoveryNotFound
		}
		return err
	}

	if err := s.advanceRepo.Delete(ctx, existing.ID); err != nil {
		return err
	}

	s.notify(ctx, payroll.EventAdvanceChanged, existing.EmployeeID, existing.Date)
	return nil
}
