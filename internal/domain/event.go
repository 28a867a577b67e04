package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskEventType string

const (
	TaskEventCreated      TaskEventType = "task_created"
	TaskEventAcknowledged TaskEventType = "task_acknowledged"
	TaskEventStarted      TaskEventType = "task_started"
	TaskEventCompleted    TaskEventType = "task_completed"
)

// TaskEvent is pushed to subscribers after a task changes so list views can
// re-query. It carries enough to route, not the full record.
type TaskEvent struct {
	Type       TaskEventType `json:"type"`
	TaskID     uuid.UUID     `json:"task_id"`
	CaseID     uuid.UUID     `json:"case_id"`
	TaskType   TaskType      `json:"task_type"`
	Status     TaskStatus    `json:"status"`
	AssignedTo uuid.UUID     `json:"assigned_to"`
	ActorID    uuid.UUID     `json:"actor_id"`
	At         time.Time     `json:"at"`
}

// NewTaskEvent builds an event describing t's current state.
func NewTaskEvent(kind TaskEventType, t *Task, actorID uuid.UUID, at time.Time) TaskEvent {
	return TaskEvent{
		Type:       kind,
		TaskID:     t.ID,
		CaseID:     t.CaseID,
		TaskType:   t.Type,
		Status:     t.Status,
		AssignedTo: t.AssignedTo,
		ActorID:    actorID,
		At:         at,
	}
}
