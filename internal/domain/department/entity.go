package department

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Department string

const (
	Workshop Department = "Workshop"
	Enamel   Department = "Enamel"
	Guards   Department = "Guards"
	Admins   Department = "Admins"
	Accounts Department = "Accounts"
	Packing  Department = "Packing"
	Drivers  Department = "Drivers"
)

// All lists every department in display order.
var All = []Department{Workshop, Enamel, Guards, Admins, Accounts, Packing, Drivers}

func (d Department) IsValid() bool {
	for _, known := range All {
		if d == known {
			return true
		}
	}
	return false
}

// EarnsOvertime reports whether the department is on the overtime and
// undertime allowlist. The rule exemption flags are applied on top of this.
func (d Department) EarnsOvertime() bool {
	return d == Workshop || d == Enamel
}

// UsesShiftBaselines reports whether standard hours depend on the shift worked.
func (d Department) UsesShiftBaselines() bool {
	return d == Enamel
}

type ShiftType string

const (
	ShiftDay     ShiftType = "day"
	ShiftNight   ShiftType = "night"
	ShiftRegular ShiftType = "regular"
)

func (s ShiftType) IsValid() bool {
	return s == ShiftDay || s == ShiftNight || s == ShiftRegular
}

// Rule is the policy a department is paid under.
type Rule struct {
	Department             Department
	IsExemptFromDeductions bool
	IsExemptFromOvertime   bool
	MaxOvertimeHoursPerDay decimal.Decimal
	MaxAdvancePercentage   decimal.Decimal
	WorkingDaysPerMonth    int
	StandardHoursPerDay    decimal.Decimal
	OvertimeMultiplier     decimal.Decimal
	DayShiftHours          decimal.Decimal
	NightShiftHours        decimal.Decimal
	NightShiftMultiplier   decimal.Decimal
	IsDefault              bool
	UpdatedAt              *time.Time
}

// StandardHours returns the baseline for a day worked on the given shift.
func (r Rule) StandardHours(shift ShiftType) decimal.Decimal {
	if !r.Department.UsesShiftBaselines() {
		return r.StandardHoursPerDay
	}
	switch shift {
	case ShiftDay:
		return r.DayShiftHours
	case ShiftNight:
		return r.NightShiftHours
	default:
		return r.StandardHoursPerDay
	}
}

// Multiplier returns the overtime multiplier for a day worked on the given shift.
func (r Rule) Multiplier(shift ShiftType) decimal.Decimal {
	if r.Department.UsesShiftBaselines() && shift == ShiftNight {
		return r.NightShiftMultiplier
	}
	return r.OvertimeMultiplier
}

// PaysOvertime combines the allowlist with the exemption flag.
func (r Rule) PaysOvertime() bool {
	return r.Department.EarnsOvertime() && !r.IsExemptFromOvertime
}

// DeductsUndertime combines the allowlist with the exemption flag.
func (r Rule) DeductsUndertime() bool {
	return r.Department.EarnsOvertime() && !r.IsExemptFromDeductions
}

// ShiftPreset is the check-in/check-out pair offered for a shift.
type ShiftPreset struct {
	Shift    ShiftType
	CheckIn  string
	CheckOut string
	Hours    decimal.Decimal
}

var shiftStarts = map[ShiftType]int{
	ShiftDay:     8 * 60,
	ShiftRegular: 9 * 60,
	ShiftNight:   19 * 60,
}

// Presets derives the clock presets from the rule's hours.
func (r Rule) Presets() []ShiftPreset {
	shifts := []ShiftType{ShiftRegular}
	if r.Department.UsesShiftBaselines() {
		shifts = []ShiftType{ShiftDay, ShiftNight}
	}

	presets := make([]ShiftPreset, 0, len(shifts))
	for _, shift := range shifts {
		hours := r.StandardHours(shift)
		start := shiftStarts[shift]
		end := (start + int(hours.Mul(decimal.NewFromInt(60)).IntPart())) % (24 * 60)
		presets = append(presets, ShiftPreset{
			Shift:    shift,
			CheckIn:  formatClock(start),
			CheckOut: formatClock(end),
			Hours:    hours,
		})
	}
	return presets
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
