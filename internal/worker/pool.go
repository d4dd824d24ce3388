package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrClosed = errors.New("worker pool closed")

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Result struct {
	Name string
	Err  error
}

type Pool struct {
	workers int
	tasks   chan Task

	wg      sync.WaitGroup
	limiter atomic.Pointer[rate.Limiter]

	// mu guards closed and the registration of in-flight submits; it is
	// never held across a channel send.
	mu      sync.Mutex
	closed  bool
	closing chan struct{}
	sending sync.WaitGroup
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
		closing: make(chan struct{}),
	}
}

// SetRateLimit caps task starts per second across all workers. Zero disables it.
func (p *Pool) SetRateLimit(rps float64) {
	if rps <= 0 {
		p.limiter.Store(nil)
		return
	}
	p.limiter.Store(rate.NewLimiter(rate.Limit(rps), 1))
}

// Submit blocks while the queue is full, until ctx ends or the pool closes.
func (p *Pool) Submit(ctx context.Context, t Task) error {
	if t.Run == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.sending.Add(1)
	p.mu.Unlock()
	defer p.sending.Done()

	select {
	case p.tasks <- t:
		return nil
	case <-p.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and wakes blocked submitters. Tasks already
// queued still run; Wait returns once they have.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.closing)
	p.mu.Unlock()

	p.sending.Wait()
	close(p.tasks)
}

// Run starts the workers. Cancelling ctx stops them without draining the
// queue; call Close and Wait first for a clean shutdown.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers*16)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if lim := p.limiter.Load(); lim != nil {
						if err := lim.Wait(ctx); err != nil {
							return
						}
					}
					err := t.Run(ctx)
					select {
					case out <- Result{Name: t.Name, Err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Drain logs failed results until the channel closes.
func Drain(results <-chan Result, logger *logrus.Logger) {
	for res := range results {
		if res.Err != nil && logger != nil {
			logger.WithError(res.Err).WithField("task", res.Name).Error("background task failed")
		}
	}
}
