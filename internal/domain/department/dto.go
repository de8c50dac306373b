package department

import (
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpdateRuleRequest struct {
	Department             Department       `json:"-"`
	IsExemptFromDeductions *bool            `json:"is_exempt_from_deductions,omitempty"`
	IsExemptFromOvertime   *bool            `json:"is_exempt_from_overtime,omitempty"`
	MaxOvertimeHoursPerDay *decimal.Decimal `json:"max_overtime_hours_per_day,omitempty"`
	MaxAdvancePercentage   *decimal.Decimal `json:"max_advance_percentage,omitempty"`
	WorkingDaysPerMonth    *int             `json:"working_days_per_month,omitempty" validate:"omitempty,min=1,max=31"`
	StandardHoursPerDay    *decimal.Decimal `json:"standard_hours_per_day,omitempty"`
	OvertimeMultiplier     *decimal.Decimal `json:"overtime_multiplier,omitempty"`
	DayShiftHours          *decimal.Decimal `json:"day_shift_hours,omitempty"`
	NightShiftHours        *decimal.Decimal `json:"night_shift_hours,omitempty"`
	NightShiftMultiplier   *decimal.Decimal `json:"night_shift_multiplier,omitempty"`
}

var hoursInDay = decimal.NewFromInt(24)

func (r *UpdateRuleRequest) Validate() error {
	errs := validator.Struct(r)

	if !r.Department.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is not a known department"})
	}

	checkHours := func(field string, v *decimal.Decimal, allowZero bool) {
		if v == nil {
			return
		}
		if v.IsNegative() || (!allowZero && v.IsZero()) || v.GreaterThan(hoursInDay) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be between 0 and 24 hours"})
		}
	}
	checkHours("max_overtime_hours_per_day", r.MaxOvertimeHoursPerDay, true)
	checkHours("standard_hours_per_day", r.StandardHoursPerDay, false)
	checkHours("day_shift_hours", r.DayShiftHours, false)
	checkHours("night_shift_hours", r.NightShiftHours, false)

	if r.MaxAdvancePercentage != nil && (r.MaxAdvancePercentage.IsNegative() || r.MaxAdvancePercentage.GreaterThan(decimal.NewFromInt(100))) {
		errs = append(errs, validator.ValidationError{Field: "max_advance_percentage", Message: "must be between 0 and 100"})
	}
	if r.OvertimeMultiplier != nil && !r.OvertimeMultiplier.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "overtime_multiplier", Message: "must be positive"})
	}
	if r.NightShiftMultiplier != nil && !r.NightShiftMultiplier.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "night_shift_multiplier", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields of the request onto rule.
func (r *UpdateRuleRequest) Apply(rule Rule) Rule {
	if r.IsExemptFromDeductions != nil {
		rule.IsExemptFromDeductions = *r.IsExemptFromDeductions
	}
	if r.IsExemptFromOvertime != nil {
		rule.IsExemptFromOvertime = *r.IsExemptFromOvertime
	}
	if r.MaxOvertimeHoursPerDay != nil {
		rule.MaxOvertimeHoursPerDay = *r.MaxOvertimeHoursPerDay
	}
	if r.MaxAdvancePercentage != nil {
		rule.MaxAdvancePercentage = *r.MaxAdvancePercentage
	}
	if r.WorkingDaysPerMonth != nil {
		rule.WorkingDaysPerMonth = *r.WorkingDaysPerMonth
	}
	if r.StandardHoursPerDay != nil {
		rule.StandardHoursPerDay = *r.StandardHoursPerDay
	}
	if r.OvertimeMultiplier != nil {
		rule.OvertimeMultiplier = *r.OvertimeMultiplier
	}
	if r.DayShiftHours != nil {
		rule.DayShiftHours = *r.DayShiftHours
	}
	if r.NightShiftHours != nil {
		rule.NightShiftHours = *r.NightShiftHours
	}
	if r.NightShiftMultiplier != nil {
		rule.NightShiftMultiplier = *r.NightShiftMultiplier
	}
	rule.IsDefault = false
	return rule
}

type ShiftPresetResponse struct {
	Shift    ShiftType       `json:"shift_type"`
	CheckIn  string          `json:"check_in_time"`
	CheckOut string          `json:"check_out_time"`
	Hours    decimal.Decimal `json:"hours"`
}

type RuleResponse struct {
	Department             Department            `json:"department"`
	IsExemptFromDeductions bool                  `json:"is_exempt_from_deductions"`
	IsExemptFromOvertime   bool                  `json:"is_exempt_from_overtime"`
	MaxOvertimeHoursPerDay decimal.Decimal       `json:"max_overtime_hours_per_day"`
	MaxAdvancePercentage   decimal.Decimal       `json:"max_advance_percentage"`
	WorkingDaysPerMonth    int                   `json:"working_days_per_month"`
	StandardHoursPerDay    decimal.Decimal       `json:"standard_hours_per_day"`
	OvertimeMultiplier     decimal.Decimal       `json:"overtime_multiplier"`
	DayShiftHours          decimal.Decimal       `json:"day_shift_hours"`
	NightShiftHours        decimal.Decimal       `json:"night_shift_hours"`
	NightShiftMultiplier   decimal.Decimal       `json:"night_shift_multiplier"`
	PaysOvertime           bool                  `json:"pays_overtime"`
	DeductsUndertime       bool                  `json:"deducts_undertime"`
	IsDefault              bool                  `json:"is_default"`
	Presets                []ShiftPresetResponse `json:"shift_presets"`
}

func NewRuleResponse(r Rule) RuleResponse {
	presets := make([]ShiftPresetResponse, 0, 2)
	for _, p := range r.Presets() {
		presets = append(presets, ShiftPresetResponse{Shift: p.Shift, CheckIn: p.CheckIn, CheckOut: p.CheckOut, Hours: p.Hours})
	}
	return RuleResponse{
		Department:             r.Department,
		IsExemptFromDeductions: r.IsExemptFromDeductions,
		IsExemptFromOvertime:   r.IsExemptFromOvertime,
		MaxOvertimeHoursPerDay: r.MaxOvertimeHoursPerDay,
		MaxAdvancePercentage:   r.MaxAdvancePercentage,
		WorkingDaysPerMonth:    r.WorkingDaysPerMonth,
		StandardHoursPerDay:    r.StandardHoursPerDay,
		OvertimeMultiplier:     r.OvertimeMultiplier,
		DayShiftHours:          r.DayShiftHours,
		NightShiftHours:        r.NightShiftHours,
		NightShiftMultiplier:   r.NightShiftMultiplier,
		PaysOvertime:           r.PaysOvertime(),
		DeductsUndertime:       r.DeductsUndertime(),
		IsDefault:              r.IsDefault,
		Presets:                presets,
	}
}
