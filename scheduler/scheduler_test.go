package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func counter(n *int32) TaskFn {
	return func(context.Context) error {
		atomic.AddInt32(n, 1)
		return nil
	}
}

func TestAddTicker_Fires(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	var count int32
	s.AddTicker("tick", 20*time.Millisecond, counter(&count))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) >= 3 },
		time.Second, 10*time.Millisecond)
}

func TestAddTicker_Replaces(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("task", 20*time.Millisecond, counter(&count1))
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("task", 20*time.Millisecond, counter(&count2))
	time.Sleep(80 * time.Millisecond)

	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "old ticker must stop after replacement")
	assert.Positive(t, atomic.LoadInt32(&count2))
	assert.Len(t, s.Tasks(), 1)
}

func TestRemove(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	var count int32
	s.AddTicker("r", 10*time.Millisecond, counter(&count))
	time.Sleep(35 * time.Millisecond)
	s.Remove("r")
	snap := atomic.LoadInt32(&count)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&count))
	assert.Empty(t, s.Tasks())

	s.Remove("does-not-exist")
}

func TestStop_StopsAllTickers(t *testing.T) {
	s := New(newNop(), 0)

	var a, b int32
	s.AddTicker("a", 10*time.Millisecond, counter(&a))
	s.AddTicker("b", 10*time.Millisecond, counter(&b))
	time.Sleep(35 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	time.Sleep(15 * time.Millisecond)
	snapA, snapB := atomic.LoadInt32(&a), atomic.LoadInt32(&b)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snapA, atomic.LoadInt32(&a))
	assert.Equal(t, snapB, atomic.LoadInt32(&b))
}

func TestRunNow(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	var count int32
	s.AddTicker("leaderboard.refresh", time.Hour, counter(&count))

	require.NoError(t, s.RunNow(context.Background(), "leaderboard.refresh"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))

	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestRunNow_RecordsFailures(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	boom := errors.New("boom")
	s.AddTicker("failing", time.Hour, func(context.Context) error { return boom })

	err := s.RunNow(context.Background(), "failing")
	assert.ErrorIs(t, err, boom)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), tasks[0].Runs)
	assert.Equal(t, int64(1), tasks[0].Failures)
	assert.Equal(t, "boom", tasks[0].LastError)
	assert.NotNil(t, tasks[0].LastRun)
}

func TestRunNow_TaskSeesTimeout(t *testing.T) {
	s := New(newNop(), 20*time.Millisecond)
	defer s.Stop()

	s.AddTicker("slow", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTasks_Sorted(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	s.AddTicker("b", time.Hour, counter(new(int32)))
	s.AddTicker("a", time.Hour, counter(new(int32)))

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Name)
	assert.Equal(t, time.Hour, tasks[0].Interval)
	assert.Nil(t, tasks[0].LastRun)
}

func TestTicker_PanicRecovery(t *testing.T) {
	s := New(newNop(), 0)
	defer s.Stop()

	var after int32
	s.AddTicker("panicky", 10*time.Millisecond, func(context.Context) error {
		if atomic.AddInt32(&after, 1) == 1 {
			panic("first run explodes")
		}
		return nil
	})

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&after) >= 3 },
		time.Second, 10*time.Millisecond, "ticker must keep running after a panic")

	err := s.RunNow(context.Background(), "panicky")
	assert.NoError(t, err)
}
