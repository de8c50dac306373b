package fixtures

import (
	"testing"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDepartmentRules(t *testing.T) {
	rules, err := DefaultDepartmentRules()
	require.NoError(t, err)
	require.Len(t, rules, len(department.All))

	tests := []struct {
		dept          department.Department
		standardHours string
		dayHours      string
		nightHours    string
		exempt        bool
		advanceCap    string
	}{
		{department.Enamel, "11", "11", "13", false, "50"},
		{department.Workshop, "8.5", "8.5", "8.5", false, "50"},
		{department.Guards, "8", "8", "8", true, "30"},
		{department.Admins, "8", "8", "8", true, "30"},
		{department.Accounts, "8", "8", "8", true, "30"},
		{department.Packing, "8", "8", "8", false, "50"},
		{department.Drivers, "8", "8", "8", false, "50"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dept), func(t *testing.T) {
			rule := rules[tt.dept]
			assert.Equal(t, tt.dept, rule.Department)
			assert.True(t, rule.IsDefault)
			assert.True(t, rule.StandardHoursPerDay.Equal(decimal.RequireFromString(tt.standardHours)))
			assert.True(t, rule.DayShiftHours.Equal(decimal.RequireFromString(tt.dayHours)))
			assert.True(t, rule.NightShiftHours.Equal(decimal.RequireFromString(tt.nightHours)))
			assert.Equal(t, tt.exempt, rule.IsExemptFromOvertime)
			assert.Equal(t, tt.exempt, rule.IsExemptFromDeductions)
			assert.True(t, rule.MaxAdvancePercentage.Equal(decimal.RequireFromString(tt.advanceCap)))
			assert.True(t, rule.OvertimeMultiplier.Equal(decimal.NewFromInt(1)))
		})
	}
}

func TestDefaultDepartmentRulesReturnsCopy(t *testing.T) {
	first, err := DefaultDepartmentRules()
	require.NoError(t, err)
	delete(first, department.Enamel)

	second, err := DefaultDepartmentRules()
	require.NoError(t, err)
	assert.Contains(t, second, department.Enamel)
}

func TestParseDepartmentRulesRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown department", doc: "departments:\n  Bakery:\n    standard_hours_per_day: \"8\"\n"},
		{name: "missing departments", doc: "departments:\n  Workshop:\n    standard_hours_per_day: \"8.5\"\n"},
		{name: "bad decimal", doc: "departments:\n  Workshop:\n    standard_hours_per_day: \"eight\"\n"},
		{name: "not yaml", doc: "departments: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDepartmentRules([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
