package memory

import (
	"context"
	"sort"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
)

type ruleRepository struct {
	s *Store
}

func NewRuleRepository(s *Store) department.RuleRepository {
	return &ruleRepository{s: s}
}

func (r *ruleRepository) Get(ctx context.Context, dept department.Department) (department.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rule, ok := r.s.rules[dept]
	if !ok {
		return department.Rule{}, department.ErrRuleNotFound
	}
	return rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]department.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]department.Rule, 0, len(r.s.rules))
	for _, rule := range r.s.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

func (r *ruleRepository) Upsert(ctx context.Context, rule department.Rule) (department.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	rule.IsDefault = false
	rule.UpdatedAt = &now
	r.s.rules[rule.Department] = rule
	return rule, nil
}

func (r *ruleRepository) Delete(ctx context.Context, dept department.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rules[dept]; !ok {
		return department.ErrRuleNotFound
	}
	delete(r.s.rules, dept)
	return nil
}
