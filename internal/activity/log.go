// Package activity appends case history entries without blocking callers.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

// Submitter schedules background work. *async.Queue implements it.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

type Log struct {
	repo  domain.ActivityRepository
	queue Submitter
	now   func() time.Time
}

func New(repo domain.ActivityRepository, queue Submitter) *Log {
	return &Log{repo: repo, queue: queue, now: time.Now}
}

// Record queues an append. The timestamp is taken now, not when the job
// runs. Failures are logged by the queue and never returned.
func (l *Log) Record(_ context.Context, caseID uuid.UUID, message string, actorID uuid.UUID) {
	entry := &domain.ActivityEntry{
		ID:        uuid.New(),
		CaseID:    caseID,
		ActorID:   actorID,
		Message:   message,
		CreatedAt: l.now(),
	}

	l.queue.Submit("activity", func(ctx context.Context) error {
		if err := l.repo.Record(ctx, entry); err != nil {
			return fmt.Errorf("activity.Log.Record: %w", err)
		}
		return nil
	})
}
