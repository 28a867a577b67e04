// Package guard decides whether an actor may act on a task.
package guard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

// Action is a command an actor issues against a task.
type Action string

const (
	ActionStart       Action = "START"
	ActionAcknowledge Action = "ACKNOWLEDGE"
	ActionComplete    Action = "COMPLETE"
	ActionResume      Action = "RESUME"
)

// allowedFrom lists the statuses each action may be issued from.
var allowedFrom = map[Action][]domain.TaskStatus{ //nolint:gochecknoglobals // static table
	ActionStart:       {domain.TaskStatusPending, domain.TaskStatusAcknowledged},
	ActionAcknowledge: {domain.TaskStatusPending},
	ActionComplete:    {domain.TaskStatusStarted},
	ActionResume:      {domain.TaskStatusCompleted},
}

// Authorize returns nil when actorID may perform action on t.
//
// Ownership is checked before status, so a non-owner always gets
// ErrNotOwner whatever state the task is in. It has no side effects.
func Authorize(actorID uuid.UUID, t *domain.Task, action Action) error {
	if actorID == uuid.Nil || t.AssignedTo != actorID {
		return fmt.Errorf("guard.Authorize: %s on task %s: %w", action, t.ID, domain.ErrNotOwner)
	}

	statuses, ok := allowedFrom[action]
	if !ok {
		return fmt.Errorf("guard.Authorize: unknown action %q: %w", action, domain.ErrInvalidState)
	}
	for _, s := range statuses {
		if t.Status == s {
			return nil
		}
	}

	return fmt.Errorf("guard.Authorize: %s not allowed from %s: %w", action, t.Status, domain.ErrInvalidState)
}
