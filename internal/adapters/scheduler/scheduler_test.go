package scheduler_adapter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"homiio/internal/contextkeys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return New(contextkeys.LoggerFromContext(context.Background()))
}

func TestScheduler_AddValidatesSpec(t *testing.T) {
	s := newTestScheduler()

	err := s.Add(Job{Name: "broken", Spec: "every five minutes", Run: func(ctx context.Context, now time.Time) (int, error) { return 0, nil }})
	assert.Error(t, err)

	err = s.Add(Job{Name: "no-func", Spec: "*/5 * * * *"})
	assert.Error(t, err)

	require.NoError(t, s.Add(Job{Name: "ok", Spec: "*/5 * * * *", Run: func(ctx context.Context, now time.Time) (int, error) { return 0, nil }}))
}

func TestScheduler_RunOnStart(t *testing.T) {
	s := newTestScheduler()
	ran := make(chan time.Time, 2)
	var traced atomic.Bool

	require.NoError(t, s.Add(Job{
		Name: "refresh-leases",
		Spec: "0 3 * * *",
		Run: func(ctx context.Context, now time.Time) (int, error) {
			traced.Store(contextkeys.TraceIDFromContext(ctx) != "")
			ran <- now
			return 2, nil
		},
	}))
	require.NoError(t, s.Add(Job{
		Name: "failing",
		Spec: "0 4 * * *",
		Run: func(ctx context.Context, now time.Time) (int, error) {
			ran <- now
			return 0, errors.New("db down")
		},
	}))

	s.Start(true)
	for i := 0; i < 2; i++ {
		select {
		case now := <-ran:
			assert.Equal(t, time.UTC, now.Location())
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run on start")
		}
	}
	assert.True(t, traced.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_StartupRunIsNotOverlappedByTick(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var runs atomic.Int32

	require.NoError(t, s.Add(Job{
		Name: "expire-viewings",
		Spec: "*/5 * * * *",
		Run: func(ctx context.Context, now time.Time) (int, error) {
			runs.Add(1)
			started <- struct{}{}
			<-release
			return 0, nil
		},
	}))

	s.Start(true)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	// тик cron пока идет запуск при старте
	s.jobs[0].run.Run()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopWaitsForStartupRun(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	var finished atomic.Bool

	require.NoError(t, s.Add(Job{
		Name: "refresh-leases",
		Spec: "0 3 * * *",
		Run: func(ctx context.Context, now time.Time) (int, error) {
			close(started)
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			return 1, nil
		},
	}))

	s.Start(true)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, finished.Load())
}
