package notify_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/notify"
)

func TestDispatcher_RunsTasks(t *testing.T) {
	d := notify.NewDispatcher(2, time.Second)
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		d.Go("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Wait()
	assert.Equal(t, int32(10), ran.Load())
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	d := notify.NewDispatcher(3, time.Second)
	var current, peak atomic.Int32
	for i := 0; i < 20; i++ {
		d.Go("bounded", func(ctx context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return nil
		})
	}
	d.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestDispatcher_ErrorsAndPanicsAreContained(t *testing.T) {
	d := notify.NewDispatcher(1, time.Second)
	var after atomic.Bool
	d.Go("fails", func(ctx context.Context) error { return errors.New("smtp down") })
	d.Go("panics", func(ctx context.Context) error { panic("boom") })
	d.Go("after", func(ctx context.Context) error {
		after.Store(true)
		return nil
	})
	d.Wait()
	assert.True(t, after.Load())
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	d := notify.NewDispatcher(1, 10*time.Millisecond)
	var ctxErr atomic.Value
	d.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		ctxErr.Store(ctx.Err())
		return ctx.Err()
	})
	d.Wait()
	assert.ErrorIs(t, ctxErr.Load().(error), context.DeadlineExceeded)
}

func TestDispatcher_CloseDropsNewTasks(t *testing.T) {
	d := notify.NewDispatcher(1, time.Second)
	require.NoError(t, d.Close(context.Background()))

	var ran atomic.Bool
	d.Go("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	d.Wait()
	assert.False(t, ran.Load())
}

func TestDispatcher_DropsWhenBacklogFull(t *testing.T) {
	d := notify.NewDispatcher(1, time.Second, notify.WithBacklog(2))
	release := make(chan struct{})
	var ran atomic.Int32
	block := func(ctx context.Context) error {
		<-release
		ran.Add(1)
		return nil
	}

	for i := 0; i < 5; i++ {
		d.Go("blocked", block)
	}
	assert.Equal(t, int64(2), d.Dropped())

	close(release)
	d.Wait()
	assert.Equal(t, int32(3), ran.Load())

	d.Go("after drain", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	d.Wait()
	assert.Equal(t, int32(4), ran.Load())
	assert.Equal(t, int64(2), d.Dropped())
}
