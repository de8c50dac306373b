package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := NewScheduler(time.UTC)
	err := s.AddJob("broken", "not a spec", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRunOnceRunsEveryJob(t *testing.T) {
	s := NewScheduler(nil)

	var ran []string
	require.NoError(t, s.AddJob("first", "30 2 * * *", func(ctx context.Context) error {
		ran = append(ran, "first")
		return nil
	}))
	require.NoError(t, s.AddJob("second", "@hourly", func(ctx context.Context) error {
		ran = append(ran, "second")
		return errors.New("failures are logged, not returned")
	}))

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(time.UTC)
	require.NoError(t, s.AddJob("noop", "@every 1h", func(ctx context.Context) error { return nil }))
	s.Start()
	s.Stop()
}
