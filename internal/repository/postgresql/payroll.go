package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
)

// Expects payrolls aliased p joined with employees aliased e.
const payrollColumns = `p.id, p.employee_id, p.period_month, p.period_year, p.base_salary,
	p.present_days, p.absent_days, p.leave_days, p.holiday_days, p.per_day_salary, p.hourly_rate,
	p.earned_salary, p.overtime_hours, p.overtime_pay, p.undertime_hours, p.undertime_deduction,
	p.advance_amount, p.final_salary, p.status, p.paid_at, p.paid_by, p.created_at, p.updated_at,
	e.name, e.department`

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodMonth, &p.PeriodYear, &p.BaseSalary,
		&p.PresentDays, &p.AbsentDays, &p.LeaveDays, &p.HolidayDays, &p.PerDaySalary, &p.HourlyRate,
		&p.EarnedSalary, &p.OvertimeHours, &p.OvertimePay, &p.UndertimeHours, &p.UndertimeDeduction,
		&p.AdvanceAmount, &p.FinalSalary, &p.Status, &p.PaidAt, &p.PaidBy, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.Department,
	)
	return p, err
}

func collectPayrolls(rows pgx.Rows) ([]payroll.Payroll, error) {
	defer rows.Close()
	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payrolls, nil
}

// Upsert implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Upsert(ctx context.Context, snap payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	// The WHERE on the conflict branch leaves paid and locked rows untouched,
	// in which case nothing is returned.
	query := `
		WITH p AS (
			INSERT INTO payrolls (
				employee_id, period_month, period_year, base_salary,
				present_days, absent_days, leave_days, holiday_days, per_day_salary, hourly_rate,
				earned_salary, overtime_hours, overtime_pay, undertime_hours, undertime_deduction,
				advance_amount, final_salary
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (employee_id, period_month, period_year) DO UPDATE SET
				base_salary = EXCLUDED.base_salary,
				present_days = EXCLUDED.present_days,
				absent_days = EXCLUDED.absent_days,
				leave_days = EXCLUDED.leave_days,
				holiday_days = EXCLUDED.holiday_days,
				per_day_salary = EXCLUDED.per_day_salary,
				hourly_rate = EXCLUDED.hourly_rate,
				earned_salary = EXCLUDED.earned_salary,
				overtime_hours = EXCLUDED.overtime_hours,
				overtime_pay = EXCLUDED.overtime_pay,
				undertime_hours = EXCLUDED.undertime_hours,
				undertime_deduction = EXCLUDED.undertime_deduction,
				advance_amount = EXCLUDED.advance_amount,
				final_salary = EXCLUDED.final_salary,
				updated_at = NOW()
			WHERE payrolls.status = 'pending'
			RETURNING *
		)
		SELECT ` + payrollColumns + `
		FROM p JOIN employees e ON e.id = p.employee_id
	`

	saved, err := scanPayroll(q.QueryRow(ctx, query,
		snap.EmployeeID, snap.PeriodMonth, snap.PeriodYear, snap.BaseSalary,
		snap.PresentDays, snap.AbsentDays, snap.LeaveDays, snap.HolidayDays, snap.PerDaySalary, snap.HourlyRate,
		snap.EarnedSalary, snap.OvertimeHours, snap.OvertimePay, snap.UndertimeHours, snap.UndertimeDeduction,
		snap.AdvanceAmount, snap.FinalSalary,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollLocked
		}
		return payroll.Payroll{}, fmt.Errorf("failed to upsert payroll for employee %s: %w", snap.EmployeeID, err)
	}
	return saved, nil
}

func (r *payrollRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payrolls p JOIN employees e ON e.id = p.employee_id WHERE ` + where

	p, err := scanPayroll(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return p, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetByIDForUpdate implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (payroll.Payroll, error) {
	return r.getOne(ctx, "p.id = $1 FOR UPDATE OF p", id)
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payroll, error) {
	return r.getOne(ctx, "p.employee_id = $1 AND p.period_month = $2 AND p.period_year = $3", employeeID, month, year)
}

// List implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.Payroll, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE conditions
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		conditions = append(conditions, fmt.Sprintf("p.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		conditions = append(conditions, fmt.Sprintf("p.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("p.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payrolls p JOIN employees e ON e.id = p.employee_id WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payrolls: %w", err)
	}

	// Main query with pagination
	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM payrolls p JOIN employees e ON e.id = p.employee_id
		WHERE %s
		ORDER BY p.period_year DESC, p.period_month DESC, e.name
		LIMIT $%d OFFSET $%d
	`, payrollColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payrolls: %w", err)
	}
	payrolls, err := collectPayrolls(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan payrolls: %w", err)
	}
	return payrolls, total, nil
}

// ListByPeriod implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByPeriod(ctx context.Context, month, year int, status *payroll.Status) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls p JOIN employees e ON e.id = p.employee_id
		WHERE p.period_month = $1 AND p.period_year = $2 AND ($3::text IS NULL OR p.status = $3)
		ORDER BY e.name
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := q.Query(ctx, query, month, year, statusArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls for %d/%d: %w", month, year, err)
	}
	return collectPayrolls(rows)
}

// ListByEmployeeYear implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls p JOIN employees e ON e.id = p.employee_id
		WHERE p.employee_id = $1 AND p.period_year = $2
		ORDER BY p.period_month
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls for employee %s: %w", employeeID, err)
	}
	return collectPayrolls(rows)
}

// UpdateStatus implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) UpdateStatus(ctx context.Context, ids []string, from, to payroll.Status, paidBy *string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = $3,
			paid_at = CASE WHEN $3 = 'paid' THEN NOW() ELSE paid_at END,
			paid_by = CASE WHEN $3 = 'paid' THEN $4 ELSE paid_by END,
			updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND status = $2
		RETURNING id
	`

	rows, err := q.Query(ctx, query, ids, string(from), string(to), paidBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update payroll status: %w", err)
	}
	defer rows.Close()

	var updated []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements payroll.PayrollRepository. Payments go with it.
func (r *payrollRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payrolls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// Summary implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) Summary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(p.earned_salary), 0),
			COALESCE(SUM(p.overtime_pay), 0),
			COALESCE(SUM(p.undertime_deduction), 0),
			COALESCE(SUM(p.advance_amount), 0),
			COALESCE(SUM(p.final_salary), 0),
			COALESCE(SUM(paid.total), 0),
			COUNT(*) FILTER (WHERE p.status = 'pending'),
			COUNT(*) FILTER (WHERE p.status = 'paid'),
			COUNT(*) FILTER (WHERE p.status = 'locked')
		FROM payrolls p
		LEFT JOIN (
			SELECT payroll_id, SUM(amount) AS total FROM payments GROUP BY payroll_id
		) paid ON paid.payroll_id = p.id
		WHERE p.period_month = $1 AND p.period_year = $2
	`

	s := payroll.PayrollSummaryResponse{PeriodMonth: month, PeriodYear: year}
	err := q.QueryRow(ctx, query, month, year).Scan(
		&s.TotalEmployees, &s.TotalEarned, &s.TotalOvertimePay, &s.TotalUndertime,
		&s.TotalAdvances, &s.TotalFinalSalary, &s.TotalPaid,
		&s.PendingCount, &s.PaidCount, &s.LockedCount,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to summarize payrolls: %w", err)
	}
	return s, nil
}
