package rules

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nmw-hr/payroll-backend-go/internal/domain/department"
	"github.com/nmw-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/apperror"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/realtime"
	"github.com/nmw-hr/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[department.Department]department.Rule
	gets  int
	err   error
	// onGet runs after a read, outside the lock, before the result is returned.
	onGet func()
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[department.Department]department.Rule)}
}

func (f *fakeRuleRepo) Get(ctx context.Context, dept department.Department) (department.Rule, error) {
	f.mu.Lock()
	f.gets++
	err := f.err
	rule, ok := f.rules[dept]
	hook := f.onGet
	f.onGet = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return department.Rule{}, err
	}
	if !ok {
		return department.Rule{}, department.ErrRuleNotFound
	}
	return rule, nil
}

func (f *fakeRuleRepo) List(ctx context.Context) ([]department.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []department.Rule
	for _, r := range f.rules {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRuleRepo) Upsert(ctx context.Context, rule department.Rule) (department.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[rule.Department] = rule
	return rule, nil
}

func (f *fakeRuleRepo) Delete(ctx context.Context, dept department.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[dept]; !ok {
		return department.ErrRuleNotFound
	}
	delete(f.rules, dept)
	return nil
}

type recordingNotifier struct {
	events []payroll.ChangeEvent
}

func (r *recordingNotifier) Notify(ctx context.Context, event payroll.ChangeEvent) {
	r.events = append(r.events, event)
}

type fakePublisher struct {
	messages []string
}

func (f *fakePublisher) Publish(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func TestGetRulesFallsBackToDefaults(t *testing.T) {
	provider, err := NewRuleProvider(newFakeRuleRepo(), nil)
	require.NoError(t, err)

	for _, dept := range department.All {
		rule, err := provider.GetRules(context.Background(), dept)
		require.NoError(t, err)
		assert.Equal(t, dept, rule.Department)
		assert.True(t, rule.IsDefault)
		assert.True(t, rule.StandardHoursPerDay.IsPositive(), "rule for %s must never be zero", dept)
	}

	enamel, _ := provider.GetRules(context.Background(), department.Enamel)
	assert.True(t, enamel.StandardHours(department.ShiftDay).Equal(decimal.NewFromInt(11)))
	assert.True(t, enamel.StandardHours(department.ShiftNight).Equal(decimal.NewFromInt(13)))

	workshop, _ := provider.GetRules(context.Background(), department.Workshop)
	assert.True(t, workshop.StandardHours(department.ShiftNight).Equal(decimal.RequireFromString("8.5")))
}

func TestGetRulesUnknownDepartment(t *testing.T) {
	provider, err := NewRuleProvider(newFakeRuleRepo(), nil)
	require.NoError(t, err)

	_, err = provider.GetRules(context.Background(), department.Department("Bakery"))
	assert.True(t, errors.Is(err, apperror.ErrDataIntegrity))
}

func TestGetRulesPropagatesStorageErrors(t *testing.T) {
	repo := newFakeRuleRepo()
	repo.err = errors.New("connection refused")
	provider, err := NewRuleProvider(repo, nil)
	require.NoError(t, err)

	_, err = provider.GetRules(context.Background(), department.Workshop)
	assert.Error(t, err)
}

func TestGetRulesCachesUntilInvalidated(t *testing.T) {
	repo := newFakeRuleRepo()
	provider, err := NewRuleProvider(repo, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = provider.GetRules(ctx, department.Workshop)
	_, _ = provider.GetRules(ctx, department.Workshop)
	assert.Equal(t, 1, repo.gets)

	provider.HandleMessage("something_else")
	_, _ = provider.GetRules(ctx, department.Workshop)
	assert.Equal(t, 1, repo.gets)

	provider.HandleMessage(realtime.MessageDepartmentRules)
	_, _ = provider.GetRules(ctx, department.Workshop)
	assert.Equal(t, 2, repo.gets)
}

func TestGetRulesDoesNotCacheLoadRacingAnUpdate(t *testing.T) {
	repo := newFakeRuleRepo()
	provider, err := NewRuleProvider(repo, nil)
	require.NoError(t, err)

	ctx := context.Background()
	hours := decimal.NewFromInt(12)
	// the update lands after the read returned the default but before it is cached
	repo.onGet = func() {
		_, err := provider.UpdateRule(ctx, department.UpdateRuleRequest{
			Department:      department.Enamel,
			NightShiftHours: &hours,
		})
		require.NoError(t, err)
	}

	stale, err := provider.GetRules(ctx, department.Enamel)
	require.NoError(t, err)
	assert.True(t, stale.IsDefault)

	rule, err := provider.GetRules(ctx, department.Enamel)
	require.NoError(t, err)
	assert.False(t, rule.IsDefault)
	assert.True(t, rule.NightShiftHours.Equal(hours))
	// outer load, the update's own load, then a fresh load after invalidation
	assert.Equal(t, 3, repo.gets)
}

func TestRuleChangesNotifyPayroll(t *testing.T) {
	provider, err := NewRuleProvider(newFakeRuleRepo(), nil)
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	provider.SetNotifier(notifier)

	ctx := context.Background()
	advanceCap := decimal.NewFromInt(30)
	_, err = provider.UpdateRule(ctx, department.UpdateRuleRequest{
		Department:           department.Packing,
		MaxAdvancePercentage: &advanceCap,
	})
	require.NoError(t, err)
	_, err = provider.ResetRule(ctx, department.Packing)
	require.NoError(t, err)

	require.Len(t, notifier.events, 2)
	for _, event := range notifier.events {
		assert.Equal(t, payroll.EventRulesChanged, event.Kind)
		assert.True(t, event.TriggersSweep())
		assert.False(t, event.TriggersRecompute())
	}

	provider.HandleMessage(realtime.MessageDepartmentRules)
	assert.Len(t, notifier.events, 2)
}

func TestUpdateRulePersistsOverrideAndPublishes(t *testing.T) {
	repo := newFakeRuleRepo()
	pub := &fakePublisher{}
	provider, err := NewRuleProvider(repo, pub)
	require.NoError(t, err)

	ctx := context.Background()
	advanceCap := decimal.NewFromInt(40)
	hours := decimal.NewFromInt(12)
	resp, err := provider.UpdateRule(ctx, department.UpdateRuleRequest{
		Department:           department.Enamel,
		MaxAdvancePercentage: &advanceCap,
		NightShiftHours:      &hours,
	})
	require.NoError(t, err)
	assert.False(t, resp.IsDefault)
	assert.True(t, resp.MaxAdvancePercentage.Equal(advanceCap))
	assert.True(t, resp.DayShiftHours.Equal(decimal.NewFromInt(11)))
	assert.Equal(t, []string{realtime.MessageDepartmentRules}, pub.messages)

	rule, err := provider.GetRules(ctx, department.Enamel)
	require.NoError(t, err)
	assert.True(t, rule.NightShiftHours.Equal(hours))

	reset, err := provider.ResetRule(ctx, department.Enamel)
	require.NoError(t, err)
	assert.True(t, reset.IsDefault)
	assert.True(t, reset.NightShiftHours.Equal(decimal.NewFromInt(13)))

	rule, err = provider.GetRules(ctx, department.Enamel)
	require.NoError(t, err)
	assert.True(t, rule.IsDefault)
}

func TestUpdateRuleValidation(t *testing.T) {
	provider, err := NewRuleProvider(newFakeRuleRepo(), nil)
	require.NoError(t, err)

	tooMany := decimal.NewFromInt(25)
	_, err = provider.UpdateRule(context.Background(), department.UpdateRuleRequest{
		Department:          department.Workshop,
		StandardHoursPerDay: &tooMany,
	})

	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
	assert.Contains(t, validationErrs.ToMap(), "standard_hours_per_day")
}

func TestPresetsFollowRules(t *testing.T) {
	provider, err := NewRuleProvider(newFakeRuleRepo(), nil)
	require.NoError(t, err)

	resp, err := provider.GetRule(context.Background(), department.Enamel)
	require.NoError(t, err)
	require.Len(t, resp.Presets, 2)
	assert.Equal(t, "08:00", resp.Presets[0].CheckIn)
	assert.Equal(t, "19:00", resp.Presets[0].CheckOut)
	assert.Equal(t, "19:00", resp.Presets[1].CheckIn)
	assert.Equal(t, "08:00", resp.Presets[1].CheckOut)

	workshop, err := provider.GetRule(context.Background(), department.Workshop)
	require.NoError(t, err)
	require.Len(t, workshop.Presets, 1)
	assert.Equal(t, "09:00", workshop.Presets[0].CheckIn)
	assert.Equal(t, "17:30", workshop.Presets[0].CheckOut)
}
