package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	future *Future
}

// Future is the pending result of a job submitted to the Pool.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the job has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes or ctx ends. A job abandoned by Wait
// keeps running in its worker until its own context is cancelled.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pool runs blocking work (storage, inference) on a fixed set of workers so
// that the session loops never block on I/O themselves.
type Pool struct {
	size    int
	queue   chan job
	quit    chan struct{}
	workers sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewPool(size, queueSize int) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		size:  size,
		queue: make(chan job, queueSize),
		quit:  make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	for i := 0; i < p.size; i++ {
		p.workers.Add(1)
		go p.worker(ctx)
	}
	slog.Debug("Worker pool started", "workers", p.size, "queue", cap(p.queue))
}

func (p *Pool) worker(ctx context.Context) {
	defer p.workers.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case j := <-p.queue:
			j.future.resolve(p.run(j))
		}
	}
}

func (p *Pool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Worker job panicked", "panic", r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.fn(j.ctx)
}

// Submit queues fn and returns immediately with its Future. When the queue is
// full Submit waits for room or for ctx to end.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) *Future {
	f := newFuture()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		f.resolve(ErrPoolClosed)
		return f
	}

	select {
	case p.queue <- job{ctx: ctx, fn: fn, future: f}:
	case <-ctx.Done():
		f.resolve(ctx.Err())
	}
	return f
}

// Do submits fn and waits for it.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	return p.Submit(ctx, fn).Wait(ctx)
}

// Call runs fn on the pool and returns its value. The value is read only
// once the job has finished, so a caller whose ctx ends first gets the zero
// value and ctx.Err() while the job completes on its own.
func Call[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	var out T
	f := p.Submit(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		out = v
		return err
	})
	select {
	case <-f.done:
		if f.err != nil {
			var zero T
			return zero, f.err
		}
		return out, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Stop tells workers to exit and waits for them. Jobs still queued are
// resolved with ErrPoolClosed.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("stop worker pool: %w", ctx.Err())
	}

	for {
		select {
		case j := <-p.queue:
			j.future.resolve(ErrPoolClosed)
		default:
			slog.Debug("Worker pool stopped")
			return nil
		}
	}
}
