// Package events pushes task changes to subscribers so list views can
// re-query instead of holding live subscriptions.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/domain"
	redisstore "github.com/gosuda/caseflow/internal/store/redis"
)

// Publisher is the subset of the redis pub/sub client used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Submitter schedules background work. *async.Queue implements it.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

type Broadcaster struct {
	pub   Publisher
	queue Submitter
}

func NewBroadcaster(pub Publisher, queue Submitter) *Broadcaster {
	return &Broadcaster{pub: pub, queue: queue}
}

// TaskChanged publishes ev on the case channel and on the assignee's queue
// channel. Publishing happens in the background.
func (b *Broadcaster) TaskChanged(_ context.Context, ev domain.TaskEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("task_id", ev.TaskID.String()).Msg("events: marshal task event")
		return
	}

	b.queue.Submit("events", func(ctx context.Context) error {
		if err := b.pub.Publish(ctx, redisstore.CaseChannel(ev.CaseID), payload); err != nil {
			return fmt.Errorf("events.Broadcaster.TaskChanged: case channel: %w", err)
		}
		if err := b.pub.Publish(ctx, redisstore.QueueChannel(ev.AssignedTo), payload); err != nil {
			return fmt.Errorf("events.Broadcaster.TaskChanged: queue channel: %w", err)
		}
		return nil
	})
}
