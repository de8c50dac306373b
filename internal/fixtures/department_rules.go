package fixtures

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed department_rules.yaml
var departmentRulesYAML []byte

type ruleFixture struct {
	ExemptFromDeductions   bool   `yaml:"exempt_from_deductions"`
	ExemptFromOvertime     bool   `yaml:"exempt_from_overtime"`
	MaxOvertimeHoursPerDay string `yaml:"max_overtime_hours_per_day"`
	MaxAdvancePercentage   string `yaml:"max_advance_percentage"`
	WorkingDaysPerMonth    int    `yaml:"working_days_per_month"`
	StandardHoursPerDay    string `yaml:"standard_hours_per_day"`
	OvertimeMultiplier     string `yaml:"overtime_multiplier"`
	DayShiftHours          string `yaml:"day_shift_hours"`
	NightShiftHours        string `yaml:"night_shift_hours"`
	NightShiftMultiplier   string `yaml:"night_shift_multiplier"`
}

type rulesFile struct {
	Departments map[string]ruleFixture `yaml:"departments"`
}

var (
	defaultRules    map[department.Department]department.Rule
	defaultRulesErr error
	defaultOnce     sync.Once
)

// DefaultDepartmentRules returns the built-in rule for every department.
func DefaultDepartmentRules() (map[department.Department]department.Rule, error) {
	defaultOnce.Do(func() {
		defaultRules, defaultRulesErr = ParseDepartmentRules(departmentRulesYAML)
	})
	if defaultRulesErr != nil {
		return nil, defaultRulesErr
	}

	// callers get their own copy
	out := make(map[department.Department]department.Rule, len(defaultRules))
	for k, v := range defaultRules {
		out[k] = v
	}
	return out, nil
}

// ParseDepartmentRules decodes a rules document. Every known department must
// be present; shift hours default to the standard hours when left out.
func ParseDepartmentRules(data []byte) (map[department.Department]department.Rule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse department rules: %w", err)
	}

	rules := make(map[department.Department]department.Rule, len(department.All))
	for name, f := range file.Departments {
		dept := department.Department(name)
		if !dept.IsValid() {
			return nil, fmt.Errorf("unknown department %q in rules", name)
		}

		rule, err := f.toRule(dept)
		if err != nil {
			return nil, fmt.Errorf("department %s: %w", name, err)
		}
		rules[dept] = rule
	}

	for _, dept := range department.All {
		if _, ok := rules[dept]; !ok {
			return nil, fmt.Errorf("missing rules for department %s", dept)
		}
	}

	return rules, nil
}

func (f ruleFixture) toRule(dept department.Department) (department.Rule, error) {
	var err error
	parse := func(field, value string) decimal.Decimal {
		if err != nil || value == "" {
			return decimal.Zero
		}
		d, perr := decimal.NewFromString(value)
		if perr != nil {
			err = fmt.Errorf("invalid %s %q: %w", field, value, perr)
		}
		return d
	}

	rule := department.Rule{
		Department:             dept,
		IsExemptFromDeductions: f.ExemptFromDeductions,
		IsExemptFromOvertime:   f.ExemptFromOvertime,
		MaxOvertimeHoursPerDay: parse("max_overtime_hours_per_day", f.MaxOvertimeHoursPerDay),
		MaxAdvancePercentage:   parse("max_advance_percentage", f.MaxAdvancePercentage),
		WorkingDaysPerMonth:    f.WorkingDaysPerMonth,
		StandardHoursPerDay:    parse("standard_hours_per_day", f.StandardHoursPerDay),
		OvertimeMultiplier:     parse("overtime_multiplier", f.OvertimeMultiplier),
		DayShiftHours:          parse("day_shift_hours", f.DayShiftHours),
		NightShiftHours:        parse("night_shift_hours", f.NightShiftHours),
		NightShiftMultiplier:   parse("night_shift_multiplier", f.NightShiftMultiplier),
		IsDefault:              true,
	}
	if err != nil {
		return department.Rule{}, err
	}

	if !rule.StandardHoursPerDay.IsPositive() {
		return department.Rule{}, fmt.Errorf("standard_hours_per_day must be positive")
	}
	if rule.DayShiftHours.IsZero() {
		rule.DayShiftHours = rule.StandardHoursPerDay
	}
	if rule.NightShiftHours.IsZero() {
		rule.NightShiftHours = rule.StandardHoursPerDay
	}
	if rule.OvertimeMultiplier.IsZero() {
		rule.OvertimeMultiplier = decimal.NewFromInt(1)
	}
	if rule.NightShiftMultiplier.IsZero() {
		rule.NightShiftMultiplier = rule.OvertimeMultiplier
	}

	return rule, nil
}
