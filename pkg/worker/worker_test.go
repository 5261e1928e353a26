package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPool_RunsJobsConcurrently(t *testing.T) {
	p := NewPool(4, 8)
	defer p.Stop()

	ctx := context.Background()
	start := make(chan struct{})

	var chans []<-chan Result
	for i := 0; i < 4; i++ {
		i := i
		ch, err := p.Submit(ctx, func(context.Context) (any, error) {
			<-start
			return i, nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		chans = append(chans, ch)
	}
	close(start)

	seen := make(map[int]bool)
	for _, ch := range chans {
		val, err := Wait(ctx, ch)
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		seen[val.(int)] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct results, got %v", seen)
	}
}

func TestPool_Backpressure(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Stop()

	ctx := context.Background()
	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker, then fill the single queue slot.
	if _, err := p.Submit(ctx, func(context.Context) (any, error) {
		<-block
		return nil, nil
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The queue may drain into the worker before the blocker runs, so
	// keep submitting until the queue is provably full.
	deadline := time.After(2 * time.Second)
	for {
		_, err := p.Submit(ctx, func(context.Context) (any, error) {
			<-block
			return nil, nil
		})
		if errors.Is(err, ErrBackpressure) {
			return
		}
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		select {
		case <-deadline:
			t.Fatal("never hit backpressure")
		default:
		}
	}
}

func TestPool_ContextCancellation(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := p.Submit(ctx, func(context.Context) (any, error) {
		return "never", nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := Wait(context.Background(), ch); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Stop()

	if _, err := p.Submit(context.Background(), func(context.Context) (any, error) {
		return nil, nil
	}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
