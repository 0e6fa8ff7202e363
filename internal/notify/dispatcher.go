package notify

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Task is a unit of background notification work.
type Task func(ctx context.Context) error

// DefaultBacklog is the number of tasks allowed to wait for a running slot.
const DefaultBacklog = 256

// Dispatcher runs notification tasks in the background with bounded
// concurrency. Task failures are logged and never reach the caller. Tasks
// submitted while every running and waiting slot is taken are dropped and
// counted.
type Dispatcher struct {
	sem     *semaphore.Weighted
	slots   *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
	dropped atomic.Int64

	mu     sync.Mutex
	closed bool
}

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	backlog int64
}

// WithBacklog sets how many tasks may queue behind the running ones.
func WithBacklog(n int64) Option {
	return func(o *options) { o.backlog = n }
}

// NewDispatcher creates a dispatcher running at most concurrency tasks at once,
// each bounded by timeout.
func NewDispatcher(concurrency int64, timeout time.Duration, opts ...Option) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	o := options{backlog: DefaultBacklog}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backlog < 0 {
		o.backlog = 0
	}
	return &Dispatcher{
		sem:     semaphore.NewWeighted(concurrency),
		slots:   semaphore.NewWeighted(concurrency + o.backlog),
		timeout: timeout,
	}
}

// Dropped reports how many tasks were rejected because the backlog was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Go schedules task and returns immediately. Tasks submitted after Close or
// while the backlog is full are dropped.
func (d *Dispatcher) Go(name string, task Task) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Printf("notify.Dispatcher: dropping %s after close", name)
		return
	}
	if !d.slots.TryAcquire(1) {
		d.mu.Unlock()
		d.dropped.Add(1)
		log.Printf("notify.Dispatcher: backlog full, dropping %s", name)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer d.slots.Release(1)

		ctx := context.Background()
		if err := d.sem.Acquire(ctx, 1); err != nil {
			log.Printf("notify.Dispatcher: %s: acquiring slot: %v", name, err)
			return
		}
		defer d.sem.Release(1)

		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				log.Printf("notify.Dispatcher: %s: panic: %v", name, r)
			}
		}()

		if err := task(ctx); err != nil {
			log.Printf("notify.Dispatcher: %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until every scheduled task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting tasks and waits for in-flight ones, or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
