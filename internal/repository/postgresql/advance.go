package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/advance"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const advanceColumns = `id, employee_id, date, amount, notes, created_at, updated_at`

type advanceRepositoryImpl struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepositoryImpl{db: db}
}

func scanAdvance(row pgx.Row) (advance.Advance, error) {
	var a advance.Advance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func collectAdvances(rows pgx.Rows) ([]advance.Advance, error) {
	defer rows.Close()
	var advances []advance.Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, err
		}
		advances = append(advances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return advances, nil
}

func advanceNotFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return advance.ErrAdvanceNotFound
	}
	return fmt.Errorf("failed to %s advance: %w", what, err)
}

// Create implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) Create(ctx context.Context, adv advance.Advance) (advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO advances (employee_id, date, amount, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + advanceColumns

	created, err := scanAdvance(q.QueryRow(ctx, query, adv.EmployeeID, adv.Date, adv.Amount, adv.Notes))
	if err != nil {
		return advance.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}
	return created, nil
}

// GetByID implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) GetByID(ctx context.Context, id string) (advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

	adv, err := scanAdvance(q.QueryRow(ctx, `SELECT `+advanceColumns+` FROM advances WHERE id = $1`, id))
	if err != nil {
		return advance.Advance{}, advanceNotFound(err, "get")
	}
	return adv, nil
}

// GetByNote implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) GetByNote(ctx context.Context, employeeID, note string) (advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE employee_id = $1 AND notes = $2 LIMIT 1`

	adv, err := scanAdvance(q.QueryRow(ctx, query, employeeID, note))
	if err != nil {
		return advance.Advance{}, advanceNotFound(err, "find")
	}
	return adv, nil
}

// UpdateAmount implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) UpdateAmount(ctx context.Context, id string, amount decimal.Decimal, date time.Time) (advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE advances SET amount = $2, date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + advanceColumns

	adv, err := scanAdvance(q.QueryRow(ctx, query, id, amount, date))
	if err != nil {
		return advance.Advance{}, advanceNotFound(err, "update")
	}
	return adv, nil
}

// Delete implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM advances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete advance with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrAdvanceNotFound
	}
	return nil
}

// ListByEmployeePeriod implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time) ([]advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + advanceColumns + ` FROM advances
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, created_at
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	return collectAdvances(rows)
}

// List implements advance.AdvanceRepository.
func (a *advanceRepositoryImpl) List(ctx context.Context, filter advance.AdvanceFilter) ([]advance.Advance, error) {
	q := GetQuerier(ctx, a.db)

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
	}

	query := fmt.Sprintf(`SELECT %s FROM advances WHERE %s ORDER BY date, created_at`, advanceColumns, strings.Join(conditions, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	return collectAdvances(rows)
}
