package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/transition"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store and *memory.Store satisfy this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
	Cases() domain.CaseRepository
	Activity() domain.ActivityRepository
	MessengerLinks() domain.MessengerLinkRepository
}

// TaskEngine abstracts task transitions for handler testing.
// *transition.Engine satisfies this interface.
type TaskEngine interface {
	Complete(ctx context.Context, taskID uuid.UUID, actor domain.Actor, payload domain.Payload) (*transition.Result, error)
	Start(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error)
	Acknowledge(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*domain.Task, error)
	Resume(ctx context.Context, taskID uuid.UUID, actor domain.Actor) (*transition.Result, error)
	Originate(ctx context.Context, actor domain.Actor, caseID uuid.UUID, typ domain.TaskType, assignee uuid.UUID) (*domain.Task, error)
}
