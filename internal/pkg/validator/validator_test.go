package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"{123e4567-e89b-12d3-a456-426614174000}",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31", "2024-02-29"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", "2023-02-29", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidCNIC(t *testing.T) {
	valid := []string{"35202-1234567-1", "3520212345671"}
	invalid := []string{"35202-123456-1", "352021234567", "35202-1234567-12", "abcde-1234567-1", ""}
	for _, s := range valid {
		assert.True(t, IsValidCNIC(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidCNIC(s), s)
	}
	assert.Equal(t, "3520212345671", NormalizeCNIC(" 35202-1234567-1 "))
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "08:30", "19:00", "23:59"}
	invalid := []string{"24:00", "8:30", "08:60", "0830", ""}
	for _, s := range valid {
		assert.True(t, IsValidClock(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidClock(s), s)
	}
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, IsNonNegative(decimal.Zero))
	assert.True(t, IsNonNegative(decimal.NewFromInt(5)))
	assert.False(t, IsNonNegative(decimal.NewFromInt(-1)))
}

type sampleRequest struct {
	Name   string   `json:"name" validate:"required"`
	CNIC   string   `json:"cnic" validate:"required,cnic"`
	Status string   `json:"status" validate:"oneof=present absent"`
	Clock  *string  `json:"check_in_time" validate:"omitempty,clock"`
	Date   string   `json:"date" validate:"required,date"`
	IDs    []string `json:"employee_ids" validate:"dive,uuid"`
	Hidden string   `json:"-"`
}

func TestStruct(t *testing.T) {
	bad := "25:00"
	errs := Struct(sampleRequest{
		CNIC:   "123",
		Status: "late",
		Clock:  &bad,
		Date:   "2024-13-01",
		IDs:    []string{"not-a-uuid"},
	})
	require.NotEmpty(t, errs)

	m := errs.ToMap()
	assert.Equal(t, "is required", m["name"])
	assert.Contains(t, m["cnic"], "CNIC")
	assert.Equal(t, "must be one of: present, absent", m["status"])
	assert.Contains(t, m["check_in_time"], "HH:MM")
	assert.Contains(t, m["date"], "YYYY-MM-DD")
	assert.Equal(t, "must be a valid UUID", m["employee_ids[0]"])

	clock := "08:00"
	ok := Struct(sampleRequest{
		Name:   "Ali",
		CNIC:   "35202-1234567-1",
		Status: "present",
		Clock:  &clock,
		Date:   "2024-01-15",
	})
	assert.Nil(t, ok)
}

func TestValidationErrorsError(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "must be between 1 and 12"},
		{Field: "year", Message: "is required"},
	}
	assert.Equal(t, "month: must be between 1 and 12; year: is required", errs.Error())
}
