package department

import "context"

// RuleProvider is the single source of department policy.
type RuleProvider interface {
	// GetRules returns the persisted override or the default for dept. Never a zero rule.
	GetRules(ctx context.Context, dept Department) (Rule, error)

	ListRules(ctx context.Context) ([]RuleResponse, error)
	GetRule(ctx context.Context, dept Department) (RuleResponse, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (RuleResponse, error)

	// ResetRule drops the override so the default applies again.
	ResetRule(ctx context.Context, dept Department) (RuleResponse, error)

	// Invalidate clears cached rules. Called when another instance changed them.
	Invalidate()
}
