package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewPool(3, 10)
	results := p.Run(context.Background())

	var count atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, p.Submit(context.Background(), Task{
			Name: "t",
			Run: func(ctx context.Context) error {
				count.Add(1)
				if i == 4 {
					return boom
				}
				return nil
			},
		}))
	}
	p.Close()

	var failed int
	for res := range results {
		if res.Err != nil {
			failed++
			assert.ErrorIs(t, res.Err, boom)
		}
	}
	assert.Equal(t, int32(10), count.Load())
	assert.Equal(t, 1, failed)
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(1, 1)
	p.Close()
	p.Close()
	err := p.Submit(context.Background(), Task{Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPool_SubmitRespectsContext(t *testing.T) {
	p := NewPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Submit(ctx, Task{Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_RateLimit(t *testing.T) {
	p := NewPool(2, 4)
	p.SetRateLimit(1000)
	results := p.Run(context.Background())
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(context.Background(), Task{Run: func(context.Context) error { return nil }}))
	}
	p.Close()
	n := 0
	for range results {
		n++
	}
	assert.Equal(t, 4, n)
	p.SetRateLimit(0)
}

func TestPool_CloseWakesBlockedSubmit(t *testing.T) {
	p := NewPool(1, 1)
	noop := Task{Run: func(context.Context) error { return nil }}
	require.NoError(t, p.Submit(context.Background(), noop))

	submitted := make(chan error, 1)
	go func() { submitted <- p.Submit(context.Background(), noop) }()

	closed := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked behind a pending Submit")
	}
	select {
	case err := <-submitted:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Submit was not released")
	}
}

func TestPool_QueuedTasksRunAfterClose(t *testing.T) {
	p := NewPool(1, 8)
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(context.Background(), Task{Run: func(context.Context) error {
			count.Add(1)
			return nil
		}}))
	}
	p.Close()

	results := p.Run(context.Background())
	n := 0
	for range results {
		n++
	}
	p.Wait()
	assert.Equal(t, 5, n)
	assert.Equal(t, int32(5), count.Load())
}
