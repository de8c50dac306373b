// Package salary turns a month of attendance into the monthly pay figures.
// Everything here is pure: no storage, no clock.
package salary

import (
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	attendanceService "github.com/nmw-hr/payroll-backend-go/internal/service/attendance"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

type Input struct {
	BaseSalary    decimal.Decimal
	OvertimeRate  *decimal.Decimal
	Department    department.Department
	Month         int
	Year          int
	Records       []attendance.Record
	AdvanceAmount decimal.Decimal
	Rule          department.Rule
}

type Breakdown struct {
	DaysInMonth        int
	PresentDays        int
	AbsentDays         int
	LeaveDays          int
	HolidayDays        int
	PerDaySalary       decimal.Decimal
	HourlyRate         decimal.Decimal
	EarnedSalary       decimal.Decimal
	OvertimeHours      decimal.Decimal
	OvertimePay        decimal.Decimal
	UndertimeHours     decimal.Decimal
	UndertimeDeduction decimal.Decimal
	AdvanceAmount      decimal.Decimal
	FinalSalary        decimal.Decimal
}

// Gross is the pay before advances are taken off.
func (b Breakdown) Gross() decimal.Decimal {
	return b.EarnedSalary.Add(b.OvertimePay).Sub(b.UndertimeDeduction)
}

// DaysInMonth returns the calendar length of the month, leap years included.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Calculate computes the breakdown for one employee and month. Records dated
// outside the month are ignored. The final salary may be negative when
// advances exceed what was earned.
func Calculate(in Input) (Breakdown, error) {
	if err := validateInput(in); err != nil {
		return Breakdown{}, err
	}

	records := make([]attendance.Record, 0, len(in.Records))
	for _, r := range in.Records {
		if r.InPeriod(in.Month, in.Year) {
			records = append(records, r)
		}
	}

	totals, err := attendanceService.Aggregate(records)
	if err != nil {
		return Breakdown{}, err
	}

	days := DaysInMonth(in.Month, in.Year)
	perDay := in.BaseSalary.Div(decimal.NewFromInt(int64(days)))
	hourly := perDay.Div(in.Rule.StandardHoursPerDay)

	b := Breakdown{
		DaysInMonth:        days,
		PresentDays:        totals.PresentDays,
		AbsentDays:         totals.AbsentDays,
		LeaveDays:          totals.LeaveDays,
		HolidayDays:        totals.HolidayDays,
		PerDaySalary:       perDay,
		HourlyRate:         hourly,
		EarnedSalary:       perDay.Mul(decimal.NewFromInt(int64(totals.PresentDays))).Round(moneyPlaces),
		OvertimeHours:      decimal.Zero,
		OvertimePay:        decimal.Zero,
		UndertimeHours:     decimal.Zero,
		UndertimeDeduction: decimal.Zero,
		AdvanceAmount:      in.AdvanceAmount.Round(moneyPlaces),
	}

	payOvertime := in.Rule.PaysOvertime()
	deductUndertime := in.Rule.DeductsUndertime()

	if payOvertime || deductUndertime {
		overtimeHours, overtimePay := decimal.Zero, decimal.Zero
		undertimeHours, undertimeDeduction := decimal.Zero, decimal.Zero

		for _, r := range records {
			ot, ut, err := attendanceService.ClassifyHours(r, in.Rule)
			if err != nil {
				return Breakdown{}, err
			}
			if ot.IsZero() && ut.IsZero() {
				continue
			}

			baseline := in.Rule.StandardHours(r.ShiftType)
			if !baseline.IsPositive() {
				return Breakdown{}, apperror.DataIntegrity("%s has no standard hours for %s shift", in.Department, r.ShiftType)
			}
			dayRate := perDay.Div(baseline)

			if payOvertime && ot.IsPositive() {
				rate := dayRate
				if in.OvertimeRate != nil && in.OvertimeRate.IsPositive() {
					rate = *in.OvertimeRate
				}
				overtimeHours = overtimeHours.Add(ot)
				overtimePay = overtimePay.Add(ot.Mul(rate).Mul(in.Rule.Multiplier(r.ShiftType)))
			}
			if deductUndertime && ut.IsPositive() {
				undertimeHours = undertimeHours.Add(ut)
				undertimeDeduction = undertimeDeduction.Add(ut.Mul(dayRate))
			}
		}

		if payOvertime {
			ceiling := in.Rule.MaxOvertimeHoursPerDay.Mul(decimal.NewFromInt(int64(totals.PresentDays)))
			if overtimeHours.GreaterThan(ceiling) {
				// scale pay down with the hours so the rate mix is kept
				if overtimeHours.IsPositive() {
					overtimePay = overtimePay.Mul(ceiling).Div(overtimeHours)
				}
				overtimeHours = ceiling
			}
			b.OvertimeHours = overtimeHours
			b.OvertimePay = overtimePay.Round(moneyPlaces)
		}
		if deductUndertime {
			b.UndertimeHours = undertimeHours
			b.UndertimeDeduction = undertimeDeduction.Round(moneyPlaces)
		}
	}

	b.FinalSalary = b.Gross().Sub(b.AdvanceAmount)
	return b, nil
}

func validateInput(in Input) error {
	if in.Month < 1 || in.Month > 12 {
		return apperror.InvalidInput("month %d must be between 1 and 12", in.Month)
	}
	if in.Year < 1 {
		return apperror.InvalidInput("year %d is invalid", in.Year)
	}
	if in.BaseSalary.IsNegative() {
		return apperror.InvalidInput("base salary cannot be negative")
	}
	if in.OvertimeRate != nil && in.OvertimeRate.IsNegative() {
		return apperror.InvalidInput("overtime rate cannot be negative")
	}
	if in.AdvanceAmount.IsNegative() {
		return apperror.InvalidInput("advance amount cannot be negative")
	}
	if !in.Department.IsValid() {
		return apperror.DataIntegrity("unknown department %q", in.Department)
	}
	if in.Rule.Department != in.Department {
		return apperror.InvalidInput("rules for %s given for a %s employee", in.Rule.Department, in.Department)
	}
	if !in.Rule.StandardHoursPerDay.IsPositive() {
		return apperror.DataIntegrity("%s has no standard hours per day", in.Department)
	}
	return nil
}

// AdvanceCeiling returns the most an employee may draw in a month.
func AdvanceCeiling(gross decimal.Decimal, rule department.Rule) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return gross.Mul(rule.MaxAdvancePercentage).Div(decimal.NewFromInt(100)).Round(moneyPlaces)
}

// ValidateAdvance checks that existing plus requested advances for the month
// stay within the department's percentage of gross pay.
func ValidateAdvance(gross, existing, requested decimal.Decimal, rule department.Rule) error {
	if requested.IsNegative() || existing.IsNegative() {
		return apperror.InvalidInput("advance amounts cannot be negative")
	}

	ceiling := AdvanceCeiling(gross, rule)
	if existing.Add(requested).GreaterThan(ceiling) {
		headroom := ceiling.Sub(existing)
		if headroom.IsNegative() {
			headroom = decimal.Zero
		}
		return apperror.AdvanceLimit(headroom, rule.MaxAdvancePercentage)
	}
	return nil
}
