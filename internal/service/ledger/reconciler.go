package ledger

import (
	"fmt"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Reconcile compares a final salary against the payments made for it.
// Sums keep full precision; only the display balance is floored, toward zero.
func Reconcile(finalSalary decimal.Decimal, payments []payment.Payment) payroll.Reconciliation {
	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
	}
	return reconcileTotal(finalSalary, totalPaid)
}

func reconcileTotal(finalSalary, totalPaid decimal.Decimal) payroll.Reconciliation {
	balance := finalSalary.Sub(totalPaid)
	display := floorMagnitude(balance)

	var status payroll.BalanceStatus
	switch {
	case display.IsZero():
		status = payroll.BalanceSettled
	case balance.IsNegative():
		status = payroll.BalanceOverpaid
	case totalPaid.IsZero():
		status = payroll.BalancePending
	default:
		status = payroll.BalanceUnderpaid
	}

	return payroll.Reconciliation{
		FinalSalary:    finalSalary,
		TotalPaid:      totalPaid,
		Balance:        balance,
		DisplayBalance: display,
		Status:         status,
	}
}

// floorMagnitude drops the fractional part while keeping the sign.
func floorMagnitude(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return d.Neg().Floor().Neg()
	}
	return d.Floor()
}

// Headroom is the largest whole amount that may still be paid.
func Headroom(finalSalary, paidExcluding decimal.Decimal) decimal.Decimal {
	remaining := finalSalary.Sub(paidExcluding)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining.Floor()
}

// ValidatePayment checks a proposed amount against the headroom left by the
// other payments. Historical overpayments are tolerated but never extended.
func ValidatePayment(finalSalary, paidExcluding, amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, apperror.InvalidInput("payment amount must be positive")
	}

	headroom := Headroom(finalSalary, paidExcluding)
	if rounded.GreaterThan(headroom) {
		return decimal.Zero, apperror.Overpayment(headroom)
	}
	return rounded, nil
}

// RecoveryNote is the idempotency key of the recovery advance for a month.
func RecoveryNote(month, year int) string {
	return fmt.Sprintf("Recovery of overpayment for %d/%d", month, year)
}

// RecoveryPlan describes the advance that claws back an overpayment.
type RecoveryPlan struct {
	Date   time.Time
	Amount decimal.Decimal
	Note   string
}

// PlanRecovery returns the recovery advance for an overpaid month: dated the
// 1st of the following month for the floored overpaid amount.
func PlanRecovery(month, year int, rec payroll.Reconciliation) (RecoveryPlan, error) {
	if rec.Status != payroll.BalanceOverpaid {
		return RecoveryPlan{}, payroll.ErrNotOverpaid
	}

	amount := rec.Balance.Neg().Floor()
	if !amount.IsPositive() {
		return RecoveryPlan{}, payroll.ErrNotOverpaid
	}

	return RecoveryPlan{
		Date:   time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC),
		Amount: amount,
		Note:   RecoveryNote(month, year),
	}, nil
}
