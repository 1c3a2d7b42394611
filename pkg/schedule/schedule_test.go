package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/pkg/schedule"
)

func noop(context.Context) error { return nil }

func TestAddRejectsBadSpecAndDuplicates(t *testing.T) {
	s := schedule.New()
	assert.Error(t, s.Add("bad", "not a spec", noop))
	require.NoError(t, s.Hourly("warm", noop))
	assert.Error(t, s.Hourly("warm", noop))

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warm", entries[0].Name)
	assert.Equal(t, "@hourly", entries[0].Spec)
	assert.True(t, entries[0].Next.After(time.Now()), "next run known before Start")
	assert.Zero(t, entries[0].Next.Minute())
}

func TestRunNow(t *testing.T) {
	s := schedule.New()
	boom := errors.New("boom")
	require.NoError(t, s.Hourly("fails", func(context.Context) error { return boom }))

	assert.ErrorIs(t, s.RunNow(context.Background(), "fails"), boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestStartRunsTasksUntilCancelled(t *testing.T) {
	s := schedule.New()
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("panics", "@every 1s", func(context.Context) error {
		panic("kaboom")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.False(t, s.Entries()[1].Next.IsZero())

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
