package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []payroll.ChangeEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event payroll.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type ledgerFixture struct {
	svc      *LedgerServiceImpl
	payrolls payroll.PayrollRepository
	payments payment.PaymentRepository
	advances advance.AdvanceRepository
	notifier *recordingNotifier
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	f := ledgerFixture{
		payrolls: memory.NewPayrollRepository(store),
		payments: memory.NewPaymentRepository(store),
		advances: memory.NewAdvanceRepository(store),
		notifier: &recordingNotifier{},
	}
	svc, ok := NewLedgerService(store, f.payrolls, f.payments, f.advances, f.notifier, time.UTC).(*LedgerServiceImpl)
	require.True(t, ok)
	svc.now = func() time.Time { return time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func (f ledgerFixture) payroll(t *testing.T, final string) payroll.Payroll {
	t.Helper()
	p, err := f.payrolls.Upsert(context.Background(), payroll.Payroll{
		EmployeeID:  "emp-1",
		PeriodMonth: 6,
		PeriodYear:  2025,
		FinalSalary: dec(final),
	})
	require.NoError(t, err)
	return p
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "50000")

	_, err := f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-01", Amount: dec("30000")})
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-05", Amount: dec("20000")})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-06", Amount: dec("0.01")})
	assert.True(t, errors.Is(err, apperror.ErrOverpayment))

	ledger, err := f.svc.GetLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, ledger.Payments, 2)
	assert.Equal(t, payroll.BalanceSettled, ledger.Reconciliation.Status)
	assert.True(t, ledger.MaxPayable.IsZero())

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, payroll.EventPaymentChanged, f.notifier.events[0].Kind)
	assert.False(t, f.notifier.events[0].TriggersRecompute())
}

func TestRecordPaymentChecks(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	_, err := f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-11", Amount: dec("10")})
	assert.True(t, errors.Is(err, apperror.ErrFutureDate))

	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: "missing", Date: "2025-07-01", Amount: dec("10")})
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)

	_, err = f.payrolls.UpdateStatus(ctx, []string{p.ID}, payroll.StatusPending, payroll.StatusPaid, nil)
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-01", Amount: dec("10")})
	require.NoError(t, err, "paid payrolls still take payments")

	_, err = f.payrolls.UpdateStatus(ctx, []string{p.ID}, payroll.StatusPaid, payroll.StatusLocked, nil)
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-01", Amount: dec("10")})
	assert.ErrorIs(t, err, payroll.ErrPayrollLocked)
}

func TestUpdatePaymentExcludesItselfFromHeadroom(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	first, err := f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-01", Amount: dec("600")})
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-02", Amount: dec("300")})
	require.NoError(t, err)

	amount := dec("700")
	updated, err := f.svc.UpdatePayment(ctx, payment.UpdatePaymentRequest{ID: first.ID, Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount))

	tooMuch := dec("700.01")
	_, err = f.svc.UpdatePayment(ctx, payment.UpdatePaymentRequest{ID: first.ID, Amount: &tooMuch})
	var limitErr *apperror.LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.True(t, limitErr.Limit.Equal(dec("700")))
}

func TestUpdatePaymentCanReduceHistoricalOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	// written before the cap existed
	legacy, err := f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: p.ID, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Amount: dec("1500")})
	require.NoError(t, err)

	ledger, err := f.svc.GetLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.BalanceOverpaid, ledger.Reconciliation.Status)

	lower := dec("1200")
	_, err = f.svc.UpdatePayment(ctx, payment.UpdatePaymentRequest{ID: legacy.ID, Amount: &lower})
	require.NoError(t, err)

	higher := dec("1300")
	_, err = f.svc.UpdatePayment(ctx, payment.UpdatePaymentRequest{ID: legacy.ID, Amount: &higher})
	assert.True(t, errors.Is(err, apperror.ErrOverpayment))
}

func TestDeletePayment(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	created, err := f.svc.RecordPayment(ctx, payment.CreatePaymentRequest{PayrollID: p.ID, Date: "2025-07-01", Amount: dec("400")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePayment(ctx, created.ID))
	assert.ErrorIs(t, f.svc.DeletePayment(ctx, created.ID), payment.ErrPaymentNotFound)

	list, err := f.svc.ListPayments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScheduleRecoveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	_, err := f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: p.ID, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Amount: dec("1250.5")})
	require.NoError(t, err)

	first, err := f.svc.ScheduleRecovery(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "2025-07-01", first.Advance.Date)
	assert.True(t, first.Advance.Amount.Equal(dec("250")))

	second, err := f.svc.ScheduleRecovery(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Advance.ID, second.Advance.ID)

	month, year := 7, 2025
	employeeID := "emp-1"
	advances, err := f.advances.List(ctx, advance.AdvanceFilter{EmployeeID: &employeeID, Month: &month, Year: &year})
	require.NoError(t, err)
	require.Len(t, advances, 1)
	require.NotNil(t, advances[0].Notes)
	assert.Equal(t, "Recovery of overpayment for 6/2025", *advances[0].Notes)

	// only the first call changed anything
	var advanceEvents []payroll.ChangeEvent
	for _, e := range f.notifier.events {
		if e.Kind == payroll.EventAdvanceChanged {
			advanceEvents = append(advanceEvents, e)
		}
	}
	require.Len(t, advanceEvents, 1)
	m, y := advanceEvents[0].Period()
	assert.Equal(t, 7, m)
	assert.Equal(t, 2025, y)

	ledger, err := f.svc.GetLedger(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, ledger.Recovery)
	assert.Equal(t, first.Advance.ID, ledger.Recovery.ID)
}

func TestScheduleRecoveryReplacesAmount(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	_, err := f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: p.ID, Amount: dec("1200")})
	require.NoError(t, err)
	first, err := f.svc.ScheduleRecovery(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: p.ID, Amount: dec("100")})
	require.NoError(t, err)
	second, err := f.svc.ScheduleRecovery(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Advance.ID, second.Advance.ID)
	assert.True(t, second.Advance.Amount.Equal(dec("300")))
}

func TestScheduleRecoveryRequiresOverpayment(t *testing.T) {
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	_, err := f.svc.ScheduleRecovery(context.Background(), p.ID)
	assert.ErrorIs(t, err, payroll.ErrNotOverpaid)
}

func TestCancelRecovery(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	p := f.payroll(t, "1000")

	assert.ErrorIs(t, f.svc.CancelRecovery(ctx, p.ID), payroll.ErrRecoveryNotFound)

	_, err := f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: p.ID, Amount: dec("1100")})
	require.NoError(t, err)
	_, err = f.svc.ScheduleRecovery(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelRecovery(ctx, p.ID))
	ledger, err := f.svc.GetLedger(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, ledger.Recovery)
}

func TestGetEmployeeLedger(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)

	june := f.payroll(t, "1000")
	july, err := f.payrolls.Upsert(ctx, payroll.Payroll{EmployeeID: "emp-1", PeriodMonth: 7, PeriodYear: 2025, FinalSalary: dec("2000")})
	require.NoError(t, err)
	_, err = f.payrolls.Upsert(ctx, payroll.Payroll{EmployeeID: "emp-1", PeriodMonth: 12, PeriodYear: 2024, FinalSalary: dec("9999")})
	require.NoError(t, err)

	_, err = f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: june.ID, Amount: dec("1000")})
	require.NoError(t, err)
	_, err = f.payments.Create(ctx, payment.Payment{EmployeeID: "emp-1", PayrollID: july.ID, Amount: dec("500")})
	require.NoError(t, err)

	resp, err := f.svc.GetEmployeeLedger(ctx, "emp-1", 2025)
	require.NoError(t, err)
	require.Len(t, resp.Months, 2)
	assert.Equal(t, 6, resp.Months[0].PeriodMonth)
	assert.Equal(t, payroll.BalanceSettled, resp.Months[0].Reconciliation.Status)
	assert.Equal(t, payroll.BalanceUnderpaid, resp.Months[1].Reconciliation.Status)
	assert.True(t, resp.TotalFinal.Equal(dec("3000")))
	assert.True(t, resp.TotalPaid.Equal(dec("1500")))
	assert.True(t, resp.TotalBalance.Equal(dec("1500")))

	_, err = f.svc.GetEmployeeLedger(ctx, "emp-1", 1999)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}
