package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, s *Scheduler, name string, want JobStatus) *TaskResult {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		result, err := s.GetTask(name)
		require.NoError(t, err)
		if result.Status == want {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %q never reached status %q", name, want)
	return nil
}

func TestSchedulerRunAndStates(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Register(Job{
		Name:        "ok_job",
		Description: "test job",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	result, err := s.GetTask("ok_job")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, result.Status)

	require.NoError(t, s.Run(context.Background(), "ok_job"))
	waitForStatus(t, s, "ok_job", StatusFulfill)
	assert.Equal(t, int32(1), runs.Load())

	items := s.List()
	require.Len(t, items, 1)
	assert.Equal(t, "ok_job", items[0].Name)
	assert.Equal(t, "test job", items[0].Description)
	assert.NotNil(t, items[0].LastRunAt)
}

func TestSchedulerRejectOnError(t *testing.T) {
	s := New()
	s.Register(Job{
		Name:     "bad_job",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})

	require.NoError(t, s.Run(context.Background(), "bad_job"))
	result := waitForStatus(t, s, "bad_job", StatusReject)
	assert.Equal(t, "boom", result.Message)
}

func TestSchedulerRecoversPanic(t *testing.T) {
	s := New()
	s.Register(Job{
		Name:     "panic_job",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			panic("kaboom")
		},
	})

	require.NoError(t, s.Run(context.Background(), "panic_job"))
	result := waitForStatus(t, s, "panic_job", StatusReject)
	assert.Contains(t, result.Message, "kaboom")
}

func TestSchedulerUnknownJob(t *testing.T) {
	s := New()
	assert.Error(t, s.Run(context.Background(), "missing"))
	_, err := s.GetTask("missing")
	assert.Error(t, err)
}

func TestSchedulerStartRunsOnInterval(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Register(Job{
		Name:     "tick",
		Interval: 20 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
