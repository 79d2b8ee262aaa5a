package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunerpy/mlm/internal/events"
)

func newTestScheduler() *Scheduler {
	return &Scheduler{log: zap.NewNop()}
}

func TestTriggerRunsTaskImmediately(t *testing.T) {
	s := newTestScheduler()
	ran := make(chan struct{}, 1)
	s.add("probe", time.Hour, func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})

	s.Start(context.Background())
	t.Cleanup(s.Stop)

	require.True(t, s.Trigger("probe"))
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran after Trigger")
	}

	require.False(t, s.Trigger("missing"))
}

func TestRunOnceRecordsFailureAndRecoversPanic(t *testing.T) {
	s := newTestScheduler()
	s.add("boom", time.Hour, func(ctx context.Context) error {
		panic("kaboom")
	})
	s.add("fails", time.Hour, func(ctx context.Context) error {
		return errors.New("disk full")
	})

	s.runOnce(context.Background(), s.tasks[0])
	s.runOnce(context.Background(), s.tasks[1])

	require.Contains(t, s.tasks[0].snapshot().LastResult, "panic")
	require.Equal(t, "disk full", s.tasks[1].snapshot().LastResult)
}

func TestRunOncePublishesTaskCompleted(t *testing.T) {
	_, ch, cancel := events.Subscribe(4)
	defer cancel()

	s := newTestScheduler()
	s.add("probe", time.Hour, func(ctx context.Context) error { return nil })
	s.runOnce(context.Background(), s.tasks[0])

	select {
	case ev := <-ch:
		require.Equal(t, events.TaskCompleted, ev.Type)
		require.Equal(t, "probe", ev.Source)
	case <-time.After(time.Second):
		t.Fatal("no TaskCompleted event published")
	}
}

func TestStatsReportsEveryTask(t *testing.T) {
	s := newTestScheduler()
	s.add("a", time.Hour, func(ctx context.Context) error { return nil })
	s.add("b", time.Hour, func(ctx context.Context) error { return nil })

	stats := s.Stats()
	require.Len(t, stats, 2)
	require.Contains(t, stats, "a")
	require.Contains(t, stats, "b")
}

func TestStartIsNotReentrant(t *testing.T) {
	s := newTestScheduler()
	s.add("probe", time.Hour, func(ctx context.Context) error { return nil })

	s.Start(context.Background())
	first := s.cancel
	s.Start(context.Background())
	require.True(t, first != nil)
	s.Stop()
}
