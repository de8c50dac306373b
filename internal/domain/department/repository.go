package department

import "context"

// RuleRepository stores per-department overrides of the default rules.
type RuleRepository interface {
	Get(ctx context.Context, dept Department) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Upsert(ctx context.Context, rule Rule) (Rule, error)
	Delete(ctx context.Context, dept Department) error
}
