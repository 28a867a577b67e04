// Package async runs best-effort background jobs on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/metrics"
)

// Queue hands jobs to a fixed set of workers. Submit never blocks: when the
// buffer is full the job is dropped and counted.
type Queue struct {
	pool      pond.Pool
	timeout   time.Duration
	metrics   *metrics.Metrics
	closeOnce sync.Once
}

func NewQueue(workers, size int, timeout time.Duration, m *metrics.Metrics) *Queue {
	if workers < 1 {
		workers = 1
	}
	// pond treats a zero queue size as unbounded.
	if size < 1 {
		size = 1
	}

	return &Queue{
		pool:    pond.NewPool(workers, pond.WithQueueSize(size), pond.WithNonBlocking(true)),
		timeout: timeout,
		metrics: m,
	}
}

// Submit enqueues fn. It reports false if the job was dropped. The error
// fn returns is logged, never propagated.
func (q *Queue) Submit(name string, fn func(ctx context.Context) error) bool {
	err := q.pool.Go(func() { q.run(name, fn) })
	if err == nil {
		return true
	}

	if errors.Is(err, pond.ErrQueueFull) {
		log.Warn().Str("job", name).Msg("async: queue full, dropping job")
	} else {
		log.Warn().Err(err).Str("job", name).Msg("async: queue closed, dropping job")
	}
	q.metrics.JobDropped()
	return false
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.closeOnce.Do(q.pool.StopAndWait)
}

func (q *Queue) run(name string, fn func(ctx context.Context) error) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job", name).Interface("panic", r).Msg("async: job panicked")
			q.metrics.SideEffectFailed(name)
		}
	}()

	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("job", name).Msg("async: job failed")
		q.metrics.SideEffectFailed(name)
	}
}
