package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"careerhub/internal/worker"
)

// fullQueue never accepts a task and reports the context it was handed.
type fullQueue struct {
	deadline bool
}

func (q *fullQueue) Submit(ctx context.Context, _ worker.Task) error {
	_, q.deadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestSubmit_FullQueueGivesUp(t *testing.T) {
	logger, hook := test.NewNullLogger()
	q := &fullQueue{}

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		submit(reqCtx, q, logger, worker.Task{Name: "embed", Run: func(context.Context) error { return nil }})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(submitTimeout + 2*time.Second):
		t.Fatal("submit blocked past its timeout")
	}
	assert.True(t, q.deadline)
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "task not queued", hook.LastEntry().Message)
	}
}
