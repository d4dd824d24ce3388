package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/user"
	"careerhub/internal/worker"
)

// Cache is the subset of the Redis cache the usecases rely on.
type Cache interface {
	Available() bool
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Notifier pushes realtime events to users.
type Notifier func(userIDs []uuid.UUID, eventType string, data any)

func (n Notifier) send(userIDs []uuid.UUID, eventType string, data any) {
	if n != nil {
		n(userIDs, eventType, data)
	}
}

// Tasks runs work in the background.
type Tasks interface {
	Submit(ctx context.Context, t worker.Task) error
}

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func (a Actor) Is(r user.Role) bool { return a.Role == r }

func nopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func orLogger(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return nopLogger()
	}
	return l
}

// submitTimeout bounds how long a request waits for room in the queue.
const submitTimeout = 5 * time.Second

// submit queues t, running it inline when no queue is configured. It
// reports whether the task was accepted.
func submit(ctx context.Context, tasks Tasks, logger *logrus.Logger, t worker.Task) bool {
	if tasks == nil {
		if err := t.Run(context.WithoutCancel(ctx)); err != nil {
			logger.WithError(err).WithField("task", t.Name).Warn("inline task failed")
		}
		return true
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitTimeout)
	defer cancel()
	if err := tasks.Submit(sctx, t); err != nil {
		logger.WithError(err).WithField("task", t.Name).Warn("task not queued")
		return false
	}
	return true
}
