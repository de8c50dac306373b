package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, employee_id, payroll_id, date, amount, notes, created_at, updated_at`

type paymentRepositoryImpl struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payment.PaymentRepository {
	return &paymentRepositoryImpl{db: db}
}

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(&p.ID, &p.EmployeeID, &p.PayrollID, &p.Date, &p.Amount, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payments (employee_id, payroll_id, date, amount, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns

	created, err := scanPayment(q.QueryRow(ctx, query, p.EmployeeID, p.PayrollID, p.Date, p.Amount, p.Notes))
	if err != nil {
		return payment.Payment{}, fmt.Errorf("failed to create payment: %w", err)
	}
	return created, nil
}

// Update implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payments SET date = $2, amount = $3, notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentColumns

	updated, err := scanPayment(q.QueryRow(ctx, query, p.ID, p.Date, p.Amount, p.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to update payment with id %s: %w", p.ID, err)
	}
	return updated, nil
}

// GetByID implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayment(q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("failed to get payment with id %s: %w", id, err)
	}
	return p, nil
}

// Delete implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// ListByPayroll implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) ListByPayroll(ctx context.Context, payrollID string) ([]payment.Payment, error) {
	byPayroll, err := r.ListByPayrolls(ctx, []string{payrollID})
	if err != nil {
		return nil, err
	}
	return byPayroll[payrollID], nil
}

// ListByPayrolls implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) ListByPayrolls(ctx context.Context, payrollIDs []string) (map[string][]payment.Payment, error) {
	q := GetQuerier(ctx, r.db)

	out := make(map[string][]payment.Payment, len(payrollIDs))
	if len(payrollIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE payroll_id = ANY($1::uuid[])
		ORDER BY date, created_at
	`

	rows, err := q.Query(ctx, query, payrollIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out[p.PayrollID] = append(out[p.PayrollID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SumByPayroll implements payment.PaymentRepository.
func (r *paymentRepositoryImpl) SumByPayroll(ctx context.Context, payrollID string, excludeID *string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE payroll_id = $1 AND ($2::uuid IS NULL OR id <> $2)
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, payrollID, excludeID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
