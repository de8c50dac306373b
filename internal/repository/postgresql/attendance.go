package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
)

// TIME columns travel as HH:MM text.
const recordColumns = `id, employee_id, date, status,
	to_char(check_in_time, 'HH24:MI'), to_char(check_out_time, 'HH24:MI'),
	hours_worked, overtime_hours, undertime_hours, shift_type,
	biometric_verified, credential_id, verified_at, notes, created_at, updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &r.Status,
		&r.CheckInTime, &r.CheckOutTime,
		&r.HoursWorked, &r.OvertimeHours, &r.UndertimeHours, &r.ShiftType,
		&r.BiometricVerified, &r.CredentialID, &r.VerifiedAt, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func collectRecords(rows pgx.Rows) ([]attendance.Record, error) {
	defer rows.Close()
	var records []attendance.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, date, status, check_in_time, check_out_time, hours_worked,
			overtime_hours, undertime_hours, shift_type, biometric_verified, credential_id, verified_at, notes
		) VALUES ($1, $2, $3, $4::time, $5::time, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			check_in_time = EXCLUDED.check_in_time,
			check_out_time = EXCLUDED.check_out_time,
			hours_worked = EXCLUDED.hours_worked,
			overtime_hours = EXCLUDED.overtime_hours,
			undertime_hours = EXCLUDED.undertime_hours,
			shift_type = EXCLUDED.shift_type,
			biometric_verified = EXCLUDED.biometric_verified,
			credential_id = EXCLUDED.credential_id,
			verified_at = EXCLUDED.verified_at,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.Status, record.CheckInTime, record.CheckOutTime, record.HoursWorked,
		record.OvertimeHours, record.UndertimeHours, record.ShiftType, record.BiometricVerified,
		record.CredentialID, record.VerifiedAt, record.Notes,
	))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance for employee %s: %w", record.EmployeeID, err)
	}
	return saved, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	r, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance with id %s: %w", id, err)
	}
	return r, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE employee_id = $1 AND date = $2`

	r, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return r, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetOpenSession(ctx context.Context, employeeID string, since time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + ` FROM attendance_records
		WHERE employee_id = $1 AND date >= $2
			AND check_in_time IS NOT NULL AND check_out_time IS NULL
		ORDER BY date DESC
		LIMIT 1
	`

	r, err := scanRecord(q.QueryRow(ctx, query, employeeID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return r, nil
}

// ListByEmployeePeriod implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + ` FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return collectRecords(rows)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE conditions
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != nil && filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d AND EXTRACT(YEAR FROM date) = $%d", argIdx, argIdx+1))
		args = append(args, *filter.Month, *filter.Year)
		argIdx += 2
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM attendance_records
		WHERE %s
		ORDER BY date, employee_id
		LIMIT $%d OFFSET $%d
	`, recordColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return records, total, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

type credentialRepositoryImpl struct {
	db *database.DB
}

func NewCredentialRepository(db *database.DB) attendance.CredentialRepository {
	return &credentialRepositoryImpl{db: db}
}

// GetEmployeeID implements attendance.CredentialRepository.
func (c *credentialRepositoryImpl) GetEmployeeID(ctx context.Context, credentialID string) (string, error) {
	q := GetQuerier(ctx, c.db)

	var employeeID string
	err := q.QueryRow(ctx, `SELECT employee_id FROM biometric_credentials WHERE credential_id = $1`, credentialID).Scan(&employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", attendance.ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to look up credential: %w", err)
	}
	return employeeID, nil
}

// Register implements attendance.CredentialRepository.
func (c *credentialRepositoryImpl) Register(ctx context.Context, credentialID, employeeID string) error {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO biometric_credentials (credential_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT (credential_id) DO UPDATE SET employee_id = EXCLUDED.employee_id
	`
	if _, err := q.Exec(ctx, query, credentialID, employeeID); err != nil {
		return fmt.Errorf("failed to register credential: %w", err)
	}
	return nil
}
