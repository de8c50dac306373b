package attendance

import (
	"strconv"
	"strings"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// Totals is the per-status day count and hour sums of a set of records.
type Totals struct {
	PresentDays         int
	AbsentDays          int
	LeaveDays           int
	HolidayDays         int
	TotalOvertimeHours  decimal.Decimal
	TotalUndertimeHours decimal.Decimal
	TotalHoursWorked    decimal.Decimal
}

// Aggregate buckets records by status and sums their stored hours.
// A status outside the known set is a data integrity error, never skipped.
func Aggregate(records []attendance.Record) (Totals, error) {
	totals := Totals{
		TotalOvertimeHours:  decimal.Zero,
		TotalUndertimeHours: decimal.Zero,
		TotalHoursWorked:    decimal.Zero,
	}

	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			totals.PresentDays++
		case attendance.StatusAbsent:
			totals.AbsentDays++
		case attendance.StatusLeave:
			totals.LeaveDays++
		case attendance.StatusHoliday:
			totals.HolidayDays++
		default:
			return Totals{}, apperror.DataIntegrity("attendance %s has unknown status %q", r.ID, r.Status)
		}

		totals.TotalOvertimeHours = totals.TotalOvertimeHours.Add(r.OvertimeHours)
		totals.TotalUndertimeHours = totals.TotalUndertimeHours.Add(r.UndertimeHours)
		if r.HoursWorked != nil {
			totals.TotalHoursWorked = totals.TotalHoursWorked.Add(*r.HoursWorked)
		}
	}

	return totals, nil
}

// ComputeHoursWorked returns the hours between two "HH:MM" clock times.
// A check-out earlier than the check-in crossed midnight, so a day is added.
func ComputeHoursWorked(checkIn, checkOut string, shift department.ShiftType) (decimal.Decimal, error) {
	if shift != "" && !shift.IsValid() {
		return decimal.Zero, apperror.InvalidInput("unknown shift type %q", shift)
	}

	in, err := parseClock(checkIn)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := parseClock(checkOut)
	if err != nil {
		return decimal.Zero, err
	}

	diff := out - in
	if diff < 0 {
		diff += minutesPerDay
	}

	return decimal.NewFromInt(int64(diff)).DivRound(sixty, 2), nil
}

func parseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, apperror.InvalidInput("time %q must be in HH:MM format", clock)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, apperror.InvalidInput("time %q has an invalid hour", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, apperror.InvalidInput("time %q has an invalid minute", clock)
	}

	return h*60 + m, nil
}

// ClassifyHours splits a record's day into overtime or undertime against the
// baseline of its own shift. Only present days carry either. When the hours
// worked are known they decide; otherwise the stored values are used.
// Daily overtime never exceeds the rule's per-day cap.
func ClassifyHours(r attendance.Record, rule department.Rule) (overtime, undertime decimal.Decimal, err error) {
	if r.Status != attendance.StatusPresent {
		return decimal.Zero, decimal.Zero, nil
	}

	if r.HoursWorked != nil {
		diff := r.HoursWorked.Sub(rule.StandardHours(r.ShiftType))
		switch {
		case diff.IsPositive():
			overtime = diff
		case diff.IsNegative():
			undertime = diff.Neg()
		}
	} else {
		if r.OvertimeHours.IsNegative() || r.UndertimeHours.IsNegative() {
			return decimal.Zero, decimal.Zero, apperror.DataIntegrity("attendance %s has negative hours", r.ID)
		}
		if r.OvertimeHours.IsPositive() && r.UndertimeHours.IsPositive() {
			return decimal.Zero, decimal.Zero, apperror.DataIntegrity("attendance %s has both overtime and undertime", r.ID)
		}
		overtime, undertime = r.OvertimeHours, r.UndertimeHours
	}

	if overtime.GreaterThan(rule.MaxOvertimeHoursPerDay) {
		overtime = rule.MaxOvertimeHoursPerDay
	}

	return overtime, undertime, nil
}
