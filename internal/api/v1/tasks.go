package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/transition"
)

type OriginateTaskInput struct {
	Body struct {
		CaseID     uuid.UUID  `json:"caseId" doc:"Case ID"`
		Type       string     `json:"type" minLength:"1" doc:"Task type, e.g. SALES_CONTACT"`
		AssignedTo *uuid.UUID `json:"assignedTo,omitempty" doc:"Assignee; defaults to the case role for the type, then the caller"`
	}
}

type TaskOutput struct {
	Body *domain.Task
}

type TaskIDInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type CompleteTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Payload domain.Payload `json:"payload,omitempty" doc:"Type-specific completion fields"`
	}
}

// TransitionResult is the response body of complete and resume.
type TransitionResult struct {
	Completed        *domain.Task `json:"completed"`
	Successor        *domain.Task `json:"successor,omitempty"`
	SuccessorPending bool         `json:"successorPending,omitempty" doc:"The task is completed but its successor could not be created yet; retry with resume"`
}

type TransitionOutput struct {
	Status int
	Body   TransitionResult
}

type MyTasksInput struct {
	Status  []string `query:"status" doc:"Filter by status, comma separated"`
	Overdue bool     `query:"overdue" doc:"Only open tasks past their deadline"`
}

// TaskView is a task as listed in a work queue, with its overdue flag
// evaluated at request time.
type TaskView struct {
	domain.Task
	Overdue bool `json:"overdue"`
}

type MyTasksOutput struct {
	Body []TaskView
}

// RegisterTaskRoutes mounts task commands and the caller's work queue.
// now is the clock used for overdue evaluation.
func RegisterTaskRoutes(api huma.API, store DataStore, engine TaskEngine, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	huma.Register(api, huma.Operation{
		OperationID: "originate-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create the first task of a case",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *OriginateTaskInput) (*TaskOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		var assignee uuid.UUID
		if input.Body.AssignedTo != nil {
			assignee = *input.Body.AssignedTo
		}

		t, err := engine.Originate(ctx, actor, input.Body.CaseID, domain.TaskType(input.Body.Type), assignee)
		if err != nil {
			return nil, transitionError(err, "failed to create task")
		}
		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
		t, err := store.Tasks().Get(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}
		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "start-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/start",
		Summary:     "Start a pending or acknowledged task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}
		t, err := engine.Start(ctx, input.ID, actor)
		if err != nil {
			return nil, transitionError(err, "failed to start task")
		}
		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "acknowledge-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/acknowledge",
		Summary:     "Acknowledge a pending task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}
		t, err := engine.Acknowledge(ctx, input.ID, actor)
		if err != nil {
			return nil, transitionError(err, "failed to acknowledge task")
		}
		return &TaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/complete",
		Summary:     "Complete a started task and hand over to the next role",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CompleteTaskInput) (*TransitionOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}
		res, err := engine.Complete(ctx, input.ID, actor, input.Body.Payload)
		return transitionOutput(res, err, "failed to complete task")
	})

	huma.Register(api, huma.Operation{
		OperationID: "resume-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/resume",
		Summary:     "Create the missing successor of a completed task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskIDInput) (*TransitionOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}
		res, err := engine.Resume(ctx, input.ID, actor)
		return transitionOutput(res, err, "failed to resume task")
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-my-tasks",
		Method:      http.MethodGet,
		Path:        "/me/tasks",
		Summary:     "List tasks assigned to the caller across all cases",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *MyTasksInput) (*MyTasksOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		statuses := make([]domain.TaskStatus, 0, len(input.Status))
		for _, s := range input.Status {
			st := domain.TaskStatus(s)
			if !st.Open() && !st.Terminal() {
				return nil, huma.Error422UnprocessableEntity("unknown task status: " + s)
			}
			statuses = append(statuses, st)
		}

		tasks, err := store.Tasks().ListByAssignee(ctx, actor.ID, statuses...)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		at := now()
		views := make([]TaskView, 0, len(tasks))
		for _, t := range tasks {
			overdue := t.Overdue(at)
			if input.Overdue && !overdue {
				continue
			}
			views = append(views, TaskView{Task: *t, Overdue: overdue})
		}
		return &MyTasksOutput{Body: views}, nil
	})
}

// transitionOutput turns an engine result into a response. A completion
// whose successor is still missing is reported as 202 with the completed
// task, so the client knows to call resume.
func transitionOutput(res *transition.Result, err error, msg string) (*TransitionOutput, error) {
	pending := errors.Is(err, transition.ErrSuccessorPending) && res != nil
	if err != nil && !pending {
		return nil, transitionError(err, msg)
	}

	out := &TransitionOutput{
		Status: http.StatusOK,
		Body:   TransitionResult{Completed: res.Completed, Successor: res.Successor},
	}
	if pending {
		out.Status = http.StatusAccepted
		out.Body.SuccessorPending = true
	}
	return out, nil
}
