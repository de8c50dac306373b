package department

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enamelRule() Rule {
	return Rule{
		Department:           Enamel,
		StandardHoursPerDay:  decimal.NewFromInt(11),
		DayShiftHours:        decimal.NewFromInt(11),
		NightShiftHours:      decimal.NewFromInt(13),
		OvertimeMultiplier:   decimal.NewFromInt(1),
		NightShiftMultiplier: decimal.RequireFromString("1.5"),
	}
}

func TestStandardHours(t *testing.T) {
	enamel := enamelRule()
	workshop := Rule{Department: Workshop, StandardHoursPerDay: decimal.RequireFromString("8.5"), NightShiftHours: decimal.NewFromInt(13)}

	assert.True(t, enamel.StandardHours(ShiftDay).Equal(decimal.NewFromInt(11)))
	assert.True(t, enamel.StandardHours(ShiftNight).Equal(decimal.NewFromInt(13)))
	assert.True(t, enamel.StandardHours(ShiftRegular).Equal(decimal.NewFromInt(11)))
	assert.True(t, workshop.StandardHours(ShiftNight).Equal(decimal.RequireFromString("8.5")))
}

func TestMultiplier(t *testing.T) {
	enamel := enamelRule()
	assert.True(t, enamel.Multiplier(ShiftNight).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, enamel.Multiplier(ShiftDay).Equal(decimal.NewFromInt(1)))

	workshop := enamel
	workshop.Department = Workshop
	assert.True(t, workshop.Multiplier(ShiftNight).Equal(decimal.NewFromInt(1)))
}

func TestOvertimeGates(t *testing.T) {
	tests := []struct {
		rule          Rule
		wantOvertime  bool
		wantUndertime bool
	}{
		{rule: Rule{Department: Workshop}, wantOvertime: true, wantUndertime: true},
		{rule: Rule{Department: Enamel, IsExemptFromOvertime: true}, wantOvertime: false, wantUndertime: true},
		{rule: Rule{Department: Enamel, IsExemptFromDeductions: true}, wantOvertime: true, wantUndertime: false},
		{rule: Rule{Department: Packing}, wantOvertime: false, wantUndertime: false},
		{rule: Rule{Department: Guards}, wantOvertime: false, wantUndertime: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.rule.Department), func(t *testing.T) {
			assert.Equal(t, tt.wantOvertime, tt.rule.PaysOvertime())
			assert.Equal(t, tt.wantUndertime, tt.rule.DeductsUndertime())
		})
	}
}

func TestPresets(t *testing.T) {
	presets := enamelRule().Presets()
	require.Len(t, presets, 2)
	assert.Equal(t, ShiftDay, presets[0].Shift)
	assert.Equal(t, "08:00", presets[0].CheckIn)
	assert.Equal(t, "19:00", presets[0].CheckOut)
	assert.Equal(t, "19:00", presets[1].CheckIn)
	assert.Equal(t, "08:00", presets[1].CheckOut)

	workshop := Rule{Department: Workshop, StandardHoursPerDay: decimal.RequireFromString("8.5")}.Presets()
	require.Len(t, workshop, 1)
	assert.Equal(t, ShiftRegular, workshop[0].Shift)
	assert.Equal(t, "09:00", workshop[0].CheckIn)
	assert.Equal(t, "17:30", workshop[0].CheckOut)
}

func TestDepartmentValidity(t *testing.T) {
	assert.True(t, Drivers.IsValid())
	assert.False(t, Department("Kitchen").IsValid())
	assert.False(t, Department("workshop").IsValid())
	assert.Len(t, All, 7)
}
