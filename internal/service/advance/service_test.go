package advance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/memory"
	"github.com/nmw-hr/payroll-backend-go/internal/service/rules"
	"github.com/shopspring/decimal"
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

type advanceFixture struct {
	svc        *AdvanceServiceImpl
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	notifier   *recordingNotifier
}

func newAdvanceFixture(t *testing.T) advanceFixture {
	t.Helper()
	store := memory.NewStore()
	provider, err := rules.NewRuleProvider(memory.NewRuleRepository(store), nil)
	require.NoError(t, err)

	f := advanceFixture{
		employees:  memory.NewEmployeeRepository(store),
		attendance: memory.NewAttendanceRepository(store),
		notifier:   &recordingNotifier{},
	}
	svc, ok := NewAdvanceService(store, memory.NewAdvanceRepository(store), f.employees, f.attendance, provider, f.notifier, time.UTC).(*AdvanceServiceImpl)
	require.True(t, ok)
	svc.now = func() time.Time { return time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

// employeeWithFullJune creates an employee present every day of June 2025.
func (f advanceFixture) employeeWithFullJune(t *testing.T, dept department.Department, base int64) employee.Employee {
	t.Helper()
	ctx := context.Background()
	e, err := f.employees.Create(ctx, employee.Employee{
		Name:        "Test " + string(dept),
		CNIC:        "35202-0000000-" + string(dept[0]),
		Department:  dept,
		BaseSalary:  decimal.NewFromInt(base),
		JoiningDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	})
	require.NoError(t, err)

	for d := 1; d <= 30; d++ {
		_, err := f.attendance.Upsert(ctx, attendance.Record{
			EmployeeID: e.ID,
			Date:       time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusPresent,
			ShiftType:  department.ShiftRegular,
		})
		require.NoError(t, err)
	}
	return e
}

func TestCreateEnforcesAdvanceCap(t *testing.T) {
	ctx := context.Background()
	f := newAdvanceFixture(t)
	guard := f.employeeWithFullJune(t, department.Guards, 30000)

	_, err := f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: guard.ID, Date: "2025-06-20", Amount: decimal.NewFromInt(9001)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrAdvanceLimit))
	var limitErr *apperror.LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.True(t, limitErr.Limit.Equal(decimal.NewFromInt(9000)))

	created, err := f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: guard.ID, Date: "2025-06-20", Amount: decimal.NewFromInt(9000)})
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(9000)))

	_, err = f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: guard.ID, Date: "2025-06-21", Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, apperror.ErrAdvanceLimit))

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, payroll.EventAdvanceChanged, f.notifier.events[0].Kind)
	assert.True(t, f.notifier.events[0].TriggersRecompute())
}

func TestCreateRoundsToWholeUnits(t *testing.T) {
	f := newAdvanceFixture(t)
	worker := f.employeeWithFullJune(t, department.Workshop, 30000)

	created, err := f.svc.Create(context.Background(), advance.CreateAdvanceRequest{EmployeeID: worker.ID, Date: "2025-06-20", Amount: decimal.RequireFromString("1500.6")})
	require.NoError(t, err)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(1501)))
}

func TestCreateRejections(t *testing.T) {
	ctx := context.Background()
	f := newAdvanceFixture(t)
	worker := f.employeeWithFullJune(t, department.Workshop, 30000)

	_, err := f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: worker.ID, Date: "2025-07-11", Amount: decimal.NewFromInt(10)})
	assert.True(t, errors.Is(err, apperror.ErrFutureDate), "future date")

	_, err = f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: worker.ID, Date: "2025-06-20", Amount: decimal.RequireFromString("0.4")})
	var validationErrs validator.ValidationErrors
	assert.True(t, errors.As(err, &validationErrs), "rounds to zero")

	_, err = f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: "7f9c0f1e-8d6b-4a7e-9b1a-3c2d1e0f9a8b", Date: "2025-06-20", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	left := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	worker.IsActive = false
	worker.InactivationDate = &left
	_, err = f.employees.Update(ctx, worker)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: worker.ID, Date: "2025-07-10", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	assert.Empty(t, f.notifier.events)
}

func TestDeleteNotifies(t *testing.T) {
	ctx := context.Background()
	f := newAdvanceFixture(t)
	worker := f.employeeWithFullJune(t, department.Workshop, 30000)

	created, err := f.svc.Create(ctx, advance.CreateAdvanceRequest{EmployeeID: worker.ID, Date: "2025-06-20", Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), advance.ErrAdvanceNotFound)
	require.Len(t, f.notifier.events, 2)

	month, year := 6, 2025
	list, err := f.svc.List(ctx, advance.AdvanceFilter{EmployeeID: &worker.ID, Month: &month, Year: &year})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListValidatesFilter(t *testing.T) {
	f := newAdvanceFixture(t)
	month := 6
	_, err := f.svc.List(context.Background(), advance.AdvanceFilter{Month: &month})
	var validationErrs validator.ValidationErrors
	assert.True(t, errors.As(err, &validationErrs))
}
