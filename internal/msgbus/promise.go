package msgbus

import (
	"context"
	"sync"
	"time"
)

// Promise is a single-assignment cell holding the eventual result of an
// event. Resolve fills the cell exactly once and wakes every waiter;
// later calls are no-ops. A resolve happens-before any Await that
// observes the value.
type Promise[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	resolved bool
	value    T
}

// NewPromise returns an empty, unresolved promise.
func NewPromise[T any]() *Promise[T] {
	p := &Promise[T]{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Resolve fills the cell with v. Only the first call has any effect.
func (p *Promise[T]) Resolve(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return
	}
	p.value = v
	p.resolved = true
	p.cond.Broadcast()
}

// IsResolved reports whether the promise has been resolved.
func (p *Promise[T]) IsResolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved
}

// Await blocks until the promise resolves and returns its value. If ctx
// is cancelled first, the zero value and ctx.Err() are returned.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	// A cond has no channel to select on, so cancellation is delivered
	// by waking the waiters when ctx fires.
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.resolved {
		if ctx.Err() != nil {
			var zero T
			return zero, ctx.Err()
		}
		p.cond.Wait()
	}
	return p.value, nil
}

// AwaitFor blocks up to d for the promise to resolve. The second return
// is false if the wait timed out.
func (p *Promise[T]) AwaitFor(d time.Duration) (T, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	v, err := p.Await(ctx)
	return v, err == nil
}
