package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
)

const ruleColumns = `department, is_exempt_from_deductions, is_exempt_from_overtime, max_overtime_hours_per_day,
	max_advance_percentage, working_days_per_month, standard_hours_per_day, overtime_multiplier,
	day_shift_hours, night_shift_hours, night_shift_multiplier, updated_at`

type ruleRepositoryImpl struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) department.RuleRepository {
	return &ruleRepositoryImpl{db: db}
}

func scanRule(row pgx.Row) (department.Rule, error) {
	var r department.Rule
	err := row.Scan(
		&r.Department, &r.IsExemptFromDeductions, &r.IsExemptFromOvertime, &r.MaxOvertimeHoursPerDay,
		&r.MaxAdvancePercentage, &r.WorkingDaysPerMonth, &r.StandardHoursPerDay, &r.OvertimeMultiplier,
		&r.DayShiftHours, &r.NightShiftHours, &r.NightShiftMultiplier, &r.UpdatedAt,
	)
	return r, err
}

// Get implements department.RuleRepository.
func (r *ruleRepositoryImpl) Get(ctx context.Context, dept department.Department) (department.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM department_rules WHERE department = $1`

	rule, err := scanRule(q.QueryRow(ctx, query, dept))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Rule{}, department.ErrRuleNotFound
		}
		return department.Rule{}, fmt.Errorf("failed to get rule for %s: %w", dept, err)
	}
	return rule, nil
}

// List implements department.RuleRepository.
func (r *ruleRepositoryImpl) List(ctx context.Context) ([]department.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM department_rules ORDER BY department`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list department rules: %w", err)
	}
	defer rows.Close()

	var rules []department.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Upsert implements department.RuleRepository.
func (r *ruleRepositoryImpl) Upsert(ctx context.Context, rule department.Rule) (department.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO department_rules (
			department, is_exempt_from_deductions, is_exempt_from_overtime, max_overtime_hours_per_day,
			max_advance_percentage, working_days_per_month, standard_hours_per_day, overtime_multiplier,
			day_shift_hours, night_shift_hours, night_shift_multiplier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (department) DO UPDATE SET
			is_exempt_from_deductions = EXCLUDED.is_exempt_from_deductions,
			is_exempt_from_overtime = EXCLUDED.is_exempt_from_overtime,
			max_overtime_hours_per_day = EXCLUDED.max_overtime_hours_per_day,
			max_advance_percentage = EXCLUDED.max_advance_percentage,
			working_days_per_month = EXCLUDED.working_days_per_month,
			standard_hours_per_day = EXCLUDED.standard_hours_per_day,
			overtime_multiplier = EXCLUDED.overtime_multiplier,
			day_shift_hours = EXCLUDED.day_shift_hours,
			night_shift_hours = EXCLUDED.night_shift_hours,
			night_shift_multiplier = EXCLUDED.night_shift_multiplier,
			updated_at = NOW()
		RETURNING ` + ruleColumns

	saved, err := scanRule(q.QueryRow(ctx, query,
		rule.Department, rule.IsExemptFromDeductions, rule.IsExemptFromOvertime, rule.MaxOvertimeHoursPerDay,
		rule.MaxAdvancePercentage, rule.WorkingDaysPerMonth, rule.StandardHoursPerDay, rule.OvertimeMultiplier,
		rule.DayShiftHours, rule.NightShiftHours, rule.NightShiftMultiplier,
	))
	if err != nil {
		return department.Rule{}, fmt.Errorf("failed to save rule for %s: %w", rule.Department, err)
	}
	return saved, nil
}

// Delete implements department.RuleRepository.
func (r *ruleRepositoryImpl) Delete(ctx context.Context, dept department.Department) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM department_rules WHERE department = $1`, dept)
	if err != nil {
		return fmt.Errorf("failed to delete rule for %s: %w", dept, err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrRuleNotFound
	}
	return nil
}
