package notify

import (
	"context"

	"github.com/google/uuid"
)

// Sender is the blocking delivery the Dispatcher runs in the background.
type Sender interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string) error
}

// Submitter schedules background work. *async.Queue implements it.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

// Dispatcher makes notification delivery fire-and-forget: Notify returns
// immediately and failures only reach the log.
type Dispatcher struct {
	sender Sender
	queue  Submitter
}

func NewDispatcher(sender Sender, queue Submitter) *Dispatcher {
	return &Dispatcher{sender: sender, queue: queue}
}

func (d *Dispatcher) Notify(_ context.Context, userID uuid.UUID, title, message string) {
	d.queue.Submit("notify", func(ctx context.Context) error {
		return d.sender.Notify(ctx, userID, title, message)
	})
}
