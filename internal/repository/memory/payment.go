package memory

import (
	"context"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/payment"
	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	s *Store
}

func NewPaymentRepository(s *Store) payment.PaymentRepository {
	return &paymentRepository{s: s}
}

func (r *paymentRepository) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.payments[p.ID] = p
	return p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.payments[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.payments[p.ID] = p
	return p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return p, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[id]; !ok {
		return payment.ErrPaymentNotFound
	}
	delete(r.s.payments, id)
	return nil
}

func (r *paymentRepository) ListByPayroll(ctx context.Context, payrollID string) ([]payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.paymentsFor(payrollID), nil
}

func (r *paymentRepository) ListByPayrolls(ctx context.Context, payrollIDs []string) (map[string][]payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string][]payment.Payment, len(payrollIDs))
	for _, id := range payrollIDs {
		if ps := r.s.paymentsFor(id); len(ps) > 0 {
			out[id] = ps
		}
	}
	return out, nil
}

func (r *paymentRepository) SumByPayroll(ctx context.Context, payrollID string, excludeID *string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.s.paymentsFor(payrollID) {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total, nil
}

// paymentsFor expects the caller to hold mu.
func (s *Store) paymentsFor(payrollID string) []payment.Payment {
	var out []payment.Payment
	for _, p := range s.payments {
		if p.PayrollID == payrollID {
			out = append(out, p)
		}
	}
	sortByDate(out, func(p payment.Payment) time.Time { return p.Date })
	return out
}
