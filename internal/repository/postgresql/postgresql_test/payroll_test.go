package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/employee"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, setup *TestDatabaseSetup) employee.Employee {
	t.Helper()
	e, err := postgresql.NewEmployeeRepository(setup.DB).Create(context.Background(), employee.Employee{
		Name:        "Asif",
		CNIC:        "3520212345671",
		Department:  department.Enamel,
		BaseSalary:  decimal.NewFromInt(33000),
		JoiningDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	})
	require.NoError(t, err)
	return e
}

func TestEmployeeCNICIsUnique(t *testing.T) {
	setup := NewTestDatabase(t)
	e := seedEmployee(t, setup)

	_, err := postgresql.NewEmployeeRepository(setup.DB).Create(context.Background(), employee.Employee{
		Name:        "Other",
		CNIC:        e.CNIC,
		Department:  department.Guards,
		BaseSalary:  decimal.NewFromInt(25000),
		JoiningDate: e.JoiningDate,
		IsActive:    true,
	})
	assert.ErrorIs(t, err, employee.ErrCNICExists)
}

func TestAttendanceTimesRoundTrip(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	e := seedEmployee(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)

	in, out := "21:00", "09:30"
	hours := decimal.RequireFromString("12.5")
	saved, err := repo.Upsert(ctx, attendance.Record{
		EmployeeID:   e.ID,
		Date:         time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:       attendance.StatusPresent,
		CheckInTime:  &in,
		CheckOutTime: &out,
		HoursWorked:  &hours,
		ShiftType:    department.ShiftNight,
	})
	require.NoError(t, err)
	require.NotNil(t, saved.CheckInTime)
	assert.Equal(t, "21:00", *saved.CheckInTime)
	assert.Equal(t, "09:30", *saved.CheckOutTime)
	assert.True(t, saved.HoursWorked.Equal(hours))

	// same day replaces
	again, err := repo.Upsert(ctx, attendance.Record{EmployeeID: e.ID, Date: saved.Date, Status: attendance.StatusAbsent, ShiftType: department.ShiftNight})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Nil(t, again.CheckInTime)
}

func TestPayrollUpsertSkipsFrozenRows(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	e := seedEmployee(t, setup)
	repo := postgresql.NewPayrollRepository(setup.DB)

	snap := payroll.Payroll{
		EmployeeID:   e.ID,
		PeriodMonth:  6,
		PeriodYear:   2025,
		BaseSalary:   decimal.NewFromInt(33000),
		PresentDays:  30,
		PerDaySalary: decimal.NewFromInt(1100),
		HourlyRate:   decimal.NewFromInt(100),
		EarnedSalary: decimal.NewFromInt(33000),
		FinalSalary:  decimal.NewFromInt(33000),
	}
	saved, err := repo.Upsert(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPending, saved.Status)
	require.NotNil(t, saved.EmployeeName)
	assert.Equal(t, "Asif", *saved.EmployeeName)

	paidBy := "admin"
	updated, err := repo.UpdateStatus(ctx, []string{saved.ID}, payroll.StatusPending, payroll.StatusPaid, &paidBy)
	require.NoError(t, err)
	assert.Equal(t, []string{saved.ID}, updated)

	snap.FinalSalary = decimal.NewFromInt(1)
	_, err = repo.Upsert(ctx, snap)
	assert.ErrorIs(t, err, payroll.ErrPayrollLocked)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.FinalSalary.Equal(decimal.NewFromInt(33000)))
	require.NotNil(t, got.PaidBy)
	assert.Equal(t, "admin", *got.PaidBy)
}

func TestPaymentSumAndCascade(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	e := seedEmployee(t, setup)
	payrolls := postgresql.NewPayrollRepository(setup.DB)
	payments := postgresql.NewPaymentRepository(setup.DB)

	p, err := payrolls.Upsert(ctx, payroll.Payroll{EmployeeID: e.ID, PeriodMonth: 6, PeriodYear: 2025, FinalSalary: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	first, err := payments.Create(ctx, payment.Payment{EmployeeID: e.ID, PayrollID: p.ID, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)
	_, err = payments.Create(ctx, payment.Payment{EmployeeID: e.ID, PayrollID: p.ID, Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("100.50")})
	require.NoError(t, err)

	total, err := payments.SumByPayroll(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("500.50")))

	excl, err := payments.SumByPayroll(ctx, p.ID, &first.ID)
	require.NoError(t, err)
	assert.True(t, excl.Equal(decimal.RequireFromString("100.50")))

	summary, err := payrolls.Summary(ctx, 6, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.True(t, summary.TotalPaid.Equal(decimal.RequireFromString("500.50")))

	require.NoError(t, payrolls.Delete(ctx, p.ID))
	left, err := payments.ListByPayroll(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
