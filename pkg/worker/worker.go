// Package worker provides a small fixed-size worker pool for fanning
// out independent blocking calls, bounded by a fail-fast queue.
package worker

import (
	"context"
	"errors"
)

var (
	ErrBackpressure = errors.New("worker queue is full")
	ErrStopped      = errors.New("worker pool is stopped")
)

// Result carries one job's outcome.
type Result struct {
	Val any
	Err error
}

type job struct {
	ctx context.Context
	fn  func(context.Context) (any, error)
	ret chan<- Result
}

type Pool struct {
	jobs chan job
	stop chan struct{}
}

func NewPool(size int, queue int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queue <= 0 {
		queue = 16
	}

	p := &Pool{
		jobs: make(chan job, queue),
		stop: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	for {
		select {
		case j := <-p.jobs:
			if err := j.ctx.Err(); err != nil {
				j.ret <- Result{Err: err}
				continue
			}
			val, err := j.fn(j.ctx)
			j.ret <- Result{Val: val, Err: err}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) Stop() {
	close(p.stop)
}

// Submit enqueues a job and returns a channel that receives its single
// Result. The channel is buffered: a caller that abandons it does not
// leak the worker. Fails fast with ErrBackpressure when the queue is
// full.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) (any, error)) (<-chan Result, error) {
	select {
	case <-p.stop:
		return nil, ErrStopped
	default:
	}

	ret := make(chan Result, 1)
	select {
	case p.jobs <- job{ctx, fn, ret}:
		return ret, nil
	default:
		return nil, ErrBackpressure
	}
}

// Wait blocks on a submitted job's result, honoring ctx cancellation.
func Wait(ctx context.Context, ch <-chan Result) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
