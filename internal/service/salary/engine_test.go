package salary

import (
	"errors"
	"testing"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/fixtures"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func ruleFor(t *testing.T, dept department.Department) department.Rule {
	t.Helper()
	rules, err := fixtures.DefaultDepartmentRules()
	require.NoError(t, err)
	return rules[dept]
}

// month builds one record per day of the month using status and hours for each day.
func month(year, m int, fn func(day int) attendance.Record) []attendance.Record {
	var records []attendance.Record
	for d := 1; d <= DaysInMonth(m, year); d++ {
		r := fn(d)
		r.Date = time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		records = append(records, r)
	}
	return records
}

func present(hours string, shift department.ShiftType) attendance.Record {
	return attendance.Record{Status: attendance.StatusPresent, ShiftType: shift, HoursWorked: decPtr(hours)}
}

func assertFinalInvariant(t *testing.T, b Breakdown) {
	t.Helper()
	want := b.EarnedSalary.Add(b.OvertimePay).Sub(b.UndertimeDeduction).Sub(b.AdvanceAmount)
	assert.True(t, b.FinalSalary.Equal(want), "final %s != %s", b.FinalSalary, want)
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month, year, want int
	}{
		{2, 2024, 29},
		{2, 2023, 28},
		{2, 2000, 29},
		{2, 1900, 28},
		{4, 2025, 30},
		{12, 2025, 31},
		{1, 2025, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.month, tt.year), "%d/%d", tt.month, tt.year)
	}
}

func TestFullAttendanceEarnsBase(t *testing.T) {
	tests := []struct {
		name  string
		dept  department.Department
		base  string
		month int
		year  int
		hours string
	}{
		{name: "workshop 31 day month", dept: department.Workshop, base: "30000", month: 1, year: 2025, hours: "8.5"},
		{name: "workshop february leap year", dept: department.Workshop, base: "29000", month: 2, year: 2024, hours: "8.5"},
		{name: "guards thirty day month", dept: department.Guards, base: "25000", month: 6, year: 2025, hours: "8"},
		{name: "packing uneven base", dept: department.Packing, base: "31337", month: 7, year: 2025, hours: "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := dec(tt.base)
			b, err := Calculate(Input{
				BaseSalary:    base,
				Department:    tt.dept,
				Month:         tt.month,
				Year:          tt.year,
				Records:       month(tt.year, tt.month, func(int) attendance.Record { return present(tt.hours, department.ShiftRegular) }),
				AdvanceAmount: dec("1000"),
				Rule:          ruleFor(t, tt.dept),
			})
			require.NoError(t, err)

			assert.Equal(t, DaysInMonth(tt.month, tt.year), b.PresentDays)
			assert.True(t, b.EarnedSalary.Equal(base), "earned %s", b.EarnedSalary)
			assert.True(t, b.OvertimePay.IsZero())
			assert.True(t, b.UndertimeDeduction.IsZero())
			assert.True(t, b.FinalSalary.Equal(base.Sub(dec("1000"))))
			assertFinalInvariant(t, b)
		})
	}
}

func TestPerDayUsesCalendarDays(t *testing.T) {
	rule := ruleFor(t, department.Workshop)

	feb, err := Calculate(Input{BaseSalary: dec("29000"), Department: department.Workshop, Month: 2, Year: 2024, Rule: rule})
	require.NoError(t, err)
	assert.Equal(t, 29, feb.DaysInMonth)
	assert.True(t, feb.PerDaySalary.Equal(dec("1000")))

	march, err := Calculate(Input{BaseSalary: dec("31000"), Department: department.Workshop, Month: 3, Year: 2024, Rule: rule})
	require.NoError(t, err)
	assert.True(t, march.PerDaySalary.Equal(dec("1000")))
	assert.True(t, march.HourlyRate.Round(4).Equal(dec("117.6471")))
}

func TestWorkshopScenario(t *testing.T) {
	// 30-day month: 26 present, 2 absent, 2 leave, no extra hours, 5000 advance.
	records := month(2025, 6, func(day int) attendance.Record {
		switch {
		case day <= 26:
			return present("8.5", department.ShiftRegular)
		case day <= 28:
			return attendance.Record{Status: attendance.StatusAbsent}
		default:
			return attendance.Record{Status: attendance.StatusLeave}
		}
	})

	b, err := Calculate(Input{
		BaseSalary:    dec("30000"),
		Department:    department.Workshop,
		Month:         6,
		Year:          2025,
		Records:       records,
		AdvanceAmount: dec("5000"),
		Rule:          ruleFor(t, department.Workshop),
	})
	require.NoError(t, err)

	assert.True(t, b.PerDaySalary.Equal(dec("1000")))
	assert.Equal(t, 26, b.PresentDays)
	assert.Equal(t, 2, b.AbsentDays)
	assert.Equal(t, 2, b.LeaveDays)
	assert.True(t, b.EarnedSalary.Equal(dec("26000")))
	assert.True(t, b.FinalSalary.Equal(dec("21000")))
	assertFinalInvariant(t, b)
}

func TestEnamelDayShiftOvertime(t *testing.T) {
	rule := ruleFor(t, department.Enamel)
	records := []attendance.Record{
		present("13", department.ShiftDay),
		present("11", department.ShiftDay),
	}
	records[0].Date = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	records[1].Date = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	b, err := Calculate(Input{
		BaseSalary: dec("33000"),
		Department: department.Enamel,
		Month:      6,
		Year:       2025,
		Records:    records,
		Rule:       rule,
	})
	require.NoError(t, err)

	// per day 1100, hourly 100 on an 11h day shift
	assert.True(t, b.OvertimeHours.Equal(dec("2")))
	assert.True(t, b.OvertimePay.Equal(dec("200")))
	assert.True(t, b.UndertimeHours.IsZero())
	assertFinalInvariant(t, b)
}

func TestEnamelNightShiftBaselineAndMultiplier(t *testing.T) {
	rule := ruleFor(t, department.Enamel)
	rule.NightShiftMultiplier = dec("1.5")

	records := []attendance.Record{
		present("13", department.ShiftNight),
		present("15", department.ShiftNight),
		present("12", department.ShiftNight),
	}
	for i := range records {
		records[i].Date = time.Date(2025, 6, i+1, 0, 0, 0, 0, time.UTC)
	}

	b, err := Calculate(Input{
		BaseSalary: dec("39000"),
		Department: department.Enamel,
		Month:      6,
		Year:       2025,
		Records:    records,
		Rule:       rule,
	})
	require.NoError(t, err)

	// per day 1300, night hourly 100
	assert.True(t, b.OvertimeHours.Equal(dec("2")))
	assert.True(t, b.OvertimePay.Equal(dec("300")))
	assert.True(t, b.UndertimeHours.Equal(dec("1")))
	assert.True(t, b.UndertimeDeduction.Equal(dec("100")))
	assertFinalInvariant(t, b)
}

func TestOvertimeRateOverride(t *testing.T) {
	records := []attendance.Record{present("10.5", department.ShiftRegular)}
	records[0].Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	b, err := Calculate(Input{
		BaseSalary:   dec("30000"),
		OvertimeRate: decPtr("250"),
		Department:   department.Workshop,
		Month:        6,
		Year:         2025,
		Records:      records,
		Rule:         ruleFor(t, department.Workshop),
	})
	require.NoError(t, err)
	assert.True(t, b.OvertimePay.Equal(dec("500")))
}

func TestOvertimeCappedPerDay(t *testing.T) {
	records := []attendance.Record{present("16.5", department.ShiftRegular)}
	records[0].Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rule := ruleFor(t, department.Workshop)
	b, err := Calculate(Input{
		BaseSalary: dec("30000"),
		Department: department.Workshop,
		Month:      6,
		Year:       2025,
		Records:    records,
		Rule:       rule,
	})
	require.NoError(t, err)
	assert.True(t, b.OvertimeHours.Equal(rule.MaxOvertimeHoursPerDay))
	assert.True(t, b.OvertimeHours.LessThanOrEqual(rule.MaxOvertimeHoursPerDay.Mul(decimal.NewFromInt(int64(b.PresentDays)))))
}

func TestNonAllowlistedDepartmentsGetNoOvertimeOrUndertime(t *testing.T) {
	for _, dept := range []department.Department{department.Packing, department.Drivers, department.Guards, department.Admins, department.Accounts} {
		t.Run(string(dept), func(t *testing.T) {
			records := month(2025, 6, func(day int) attendance.Record {
				if day%2 == 0 {
					return present("12", department.ShiftRegular)
				}
				return present("5", department.ShiftRegular)
			})

			b, err := Calculate(Input{
				BaseSalary: dec("30000"),
				Department: dept,
				Month:      6,
				Year:       2025,
				Records:    records,
				Rule:       ruleFor(t, dept),
			})
			require.NoError(t, err)
			assert.True(t, b.OvertimeHours.IsZero())
			assert.True(t, b.OvertimePay.IsZero())
			assert.True(t, b.UndertimeHours.IsZero())
			assert.True(t, b.UndertimeDeduction.IsZero())
			assert.True(t, b.EarnedSalary.Equal(dec("30000")))
		})
	}
}

func TestAllowlistedButExemptDepartment(t *testing.T) {
	rule := ruleFor(t, department.Workshop)
	rule.IsExemptFromOvertime = true

	records := []attendance.Record{present("12.5", department.ShiftRegular), present("6.5", department.ShiftRegular)}
	records[0].Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records[1].Date = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	b, err := Calculate(Input{BaseSalary: dec("30000"), Department: department.Workshop, Month: 6, Year: 2025, Records: records, Rule: rule})
	require.NoError(t, err)
	assert.True(t, b.OvertimePay.IsZero())
	assert.True(t, b.UndertimeHours.Equal(dec("2")))
	assert.True(t, b.UndertimeDeduction.IsPositive())
	assertFinalInvariant(t, b)
}

func TestRecordsOutsideMonthIgnored(t *testing.T) {
	records := []attendance.Record{
		present("8.5", department.ShiftRegular),
		present("8.5", department.ShiftRegular),
		present("8.5", department.ShiftRegular),
	}
	records[0].Date = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	records[1].Date = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	records[2].Date = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	b, err := Calculate(Input{BaseSalary: dec("30000"), Department: department.Workshop, Month: 6, Year: 2025, Records: records, Rule: ruleFor(t, department.Workshop)})
	require.NoError(t, err)
	assert.Equal(t, 1, b.PresentDays)
	assert.True(t, b.EarnedSalary.Equal(dec("1000")))
}

func TestFinalSalaryMayBeNegative(t *testing.T) {
	b, err := Calculate(Input{
		BaseSalary:    dec("30000"),
		Department:    department.Workshop,
		Month:         6,
		Year:          2025,
		AdvanceAmount: dec("2500"),
		Rule:          ruleFor(t, department.Workshop),
	})
	require.NoError(t, err)
	assert.True(t, b.FinalSalary.Equal(dec("-2500")))
}

func TestFinalInvariantHoldsWithRounding(t *testing.T) {
	records := month(2025, 1, func(day int) attendance.Record {
		switch day % 4 {
		case 0:
			return present("9.75", department.ShiftRegular)
		case 1:
			return present("7.2", department.ShiftRegular)
		case 2:
			return attendance.Record{Status: attendance.StatusAbsent}
		default:
			return present("8.5", department.ShiftRegular)
		}
	})

	b, err := Calculate(Input{
		BaseSalary:    dec("31111.11"),
		Department:    department.Workshop,
		Month:         1,
		Year:          2025,
		Records:       records,
		AdvanceAmount: dec("777"),
		Rule:          ruleFor(t, department.Workshop),
	})
	require.NoError(t, err)
	assertFinalInvariant(t, b)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	workshop := ruleFor(t, department.Workshop)
	tests := []struct {
		name string
		in   Input
		kind error
	}{
		{name: "negative base", in: Input{BaseSalary: dec("-1"), Department: department.Workshop, Month: 6, Year: 2025, Rule: workshop}, kind: apperror.ErrInvalidInput},
		{name: "negative overtime rate", in: Input{BaseSalary: dec("1"), OvertimeRate: decPtr("-5"), Department: department.Workshop, Month: 6, Year: 2025, Rule: workshop}, kind: apperror.ErrInvalidInput},
		{name: "negative advance", in: Input{BaseSalary: dec("1"), AdvanceAmount: dec("-5"), Department: department.Workshop, Month: 6, Year: 2025, Rule: workshop}, kind: apperror.ErrInvalidInput},
		{name: "month 13", in: Input{BaseSalary: dec("1"), Department: department.Workshop, Month: 13, Year: 2025, Rule: workshop}, kind: apperror.ErrInvalidInput},
		{name: "mismatched rules", in: Input{BaseSalary: dec("1"), Department: department.Enamel, Month: 6, Year: 2025, Rule: workshop}, kind: apperror.ErrInvalidInput},
		{name: "unknown department", in: Input{BaseSalary: dec("1"), Department: "Bakery", Month: 6, Year: 2025, Rule: workshop}, kind: apperror.ErrDataIntegrity},
		{
			name: "unknown status",
			in: Input{BaseSalary: dec("1"), Department: department.Workshop, Month: 6, Year: 2025, Rule: workshop, Records: []attendance.Record{
				{Status: "late", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
			}},
			kind: apperror.ErrDataIntegrity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestValidateAdvance(t *testing.T) {
	guards := ruleFor(t, department.Guards)
	workshop := ruleFor(t, department.Workshop)

	tests := []struct {
		name      string
		gross     string
		existing  string
		requested string
		rule      department.Rule
		wantErr   bool
		headroom  string
	}{
		{name: "exempt at cap", gross: "30000", existing: "0", requested: "9000", rule: guards},
		{name: "exempt over cap", gross: "30000", existing: "0", requested: "9001", rule: guards, wantErr: true, headroom: "9000"},
		{name: "counts existing advances", gross: "30000", existing: "5000", requested: "4001", rule: guards, wantErr: true, headroom: "4000"},
		{name: "non exempt half", gross: "30000", existing: "0", requested: "15000", rule: workshop},
		{name: "no gross yet", gross: "0", existing: "0", requested: "1", rule: workshop, wantErr: true, headroom: "0"},
		{name: "existing above cap", gross: "10000", existing: "6000", requested: "1", rule: workshop, wantErr: true, headroom: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdvance(dec(tt.gross), dec(tt.existing), dec(tt.requested), tt.rule)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrAdvanceLimit))
			var limitErr *apperror.LimitError
			require.True(t, errors.As(err, &limitErr))
			assert.True(t, limitErr.Limit.Equal(dec(tt.headroom)), "headroom %s", limitErr.Limit)
			assert.Contains(t, err.Error(), tt.rule.MaxAdvancePercentage.String()+"%")
		})
	}
}
