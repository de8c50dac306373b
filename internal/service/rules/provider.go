package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/fixtures"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/realtime"
)

// Publisher fans an invalidation out to other instances.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}

type RuleProviderImpl struct {
	repo      department.RuleRepository
	publisher Publisher
	notifier  payroll.ChangeNotifier
	defaults  map[department.Department]department.Rule

	mu    sync.RWMutex
	cache map[department.Department]department.Rule
	// gen counts invalidations; a load started under an older gen is not cached.
	gen uint64
}

// NewRuleProvider builds the provider. publisher may be nil when running a
// single instance.
func NewRuleProvider(repo department.RuleRepository, publisher Publisher) (*RuleProviderImpl, error) {
	defaults, err := fixtures.DefaultDepartmentRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load default department rules: %w", err)
	}

	return &RuleProviderImpl{
		repo:      repo,
		publisher: publisher,
		defaults:  defaults,
		cache:     make(map[department.Department]department.Rule),
	}, nil
}

// SetNotifier registers the receiver of rule change events. The payroll
// recomputer depends on the provider, so it is attached after construction.
func (p *RuleProviderImpl) SetNotifier(notifier payroll.ChangeNotifier) {
	p.notifier = notifier
}

func (p *RuleProviderImpl) GetRules(ctx context.Context, dept department.Department) (department.Rule, error) {
	if !dept.IsValid() {
		return department.Rule{}, apperror.DataIntegrity("unknown department %q", dept)
	}

	p.mu.RLock()
	rule, ok := p.cache[dept]
	gen := p.gen
	p.mu.RUnlock()
	if ok {
		return rule, nil
	}

	rule, err := p.repo.Get(ctx, dept)
	if err != nil {
		if !errors.Is(err, department.ErrRuleNotFound) {
			return department.Rule{}, fmt.Errorf("failed to load rules for %s: %w", dept, err)
		}
		rule = p.defaults[dept]
	}

	p.mu.Lock()
	if p.gen == gen {
		p.cache[dept] = rule
	}
	p.mu.Unlock()

	return rule, nil
}

func (p *RuleProviderImpl) ListRules(ctx context.Context) ([]department.RuleResponse, error) {
	result := make([]department.RuleResponse, 0, len(department.All))
	for _, dept := range department.All {
		rule, err := p.GetRules(ctx, dept)
		if err != nil {
			return nil, err
		}
		result = append(result, department.NewRuleResponse(rule))
	}
	return result, nil
}

func (p *RuleProviderImpl) GetRule(ctx context.Context, dept department.Department) (department.RuleResponse, error) {
	if !dept.IsValid() {
		return department.RuleResponse{}, department.ErrUnknownDepartment
	}

	rule, err := p.GetRules(ctx, dept)
	if err != nil {
		return department.RuleResponse{}, err
	}
	return department.NewRuleResponse(rule), nil
}

func (p *RuleProviderImpl) UpdateRule(ctx context.Context, req department.UpdateRuleRequest) (department.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return department.RuleResponse{}, err
	}

	current, err := p.GetRules(ctx, req.Department)
	if err != nil {
		return department.RuleResponse{}, err
	}

	saved, err := p.repo.Upsert(ctx, req.Apply(current))
	if err != nil {
		return department.RuleResponse{}, err
	}

	p.changed(ctx)
	return department.NewRuleResponse(saved), nil
}

func (p *RuleProviderImpl) ResetRule(ctx context.Context, dept department.Department) (department.RuleResponse, error) {
	if !dept.IsValid() {
		return department.RuleResponse{}, department.ErrUnknownDepartment
	}

	if err := p.repo.Delete(ctx, dept); err != nil && !errors.Is(err, department.ErrRuleNotFound) {
		return department.RuleResponse{}, err
	}

	p.changed(ctx)
	return department.NewRuleResponse(p.defaults[dept]), nil
}

func (p *RuleProviderImpl) Invalidate() {
	p.mu.Lock()
	p.cache = make(map[department.Department]department.Rule)
	p.gen++
	p.mu.Unlock()
}

// HandleMessage reacts to realtime channel messages.
func (p *RuleProviderImpl) HandleMessage(message string) {
	if message == realtime.MessageDepartmentRules {
		p.Invalidate()
		slog.Debug("Department rule cache invalidated")
	}
}

func (p *RuleProviderImpl) changed(ctx context.Context) {
	p.Invalidate()
	if p.notifier != nil {
		p.notifier.Notify(ctx, payroll.ChangeEvent{Kind: payroll.EventRulesChanged, Date: time.Now()})
	}
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, realtime.MessageDepartmentRules); err != nil {
		slog.Error("Failed to publish rule invalidation", "error", err)
	}
}
