package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeSalesContact       TaskType = "SALES_CONTACT"
	TaskTypeSiteInspection     TaskType = "SITE_INSPECTION"
	TaskTypeDrawing            TaskType = "DRAWING_TASK"
	TaskTypeQuotation          TaskType = "QUOTATION_TASK"
	TaskTypeProcurementAudit   TaskType = "PROCUREMENT_AUDIT"
	TaskTypeProcurementBidding TaskType = "PROCUREMENT_BIDDING"
	TaskTypeExecution          TaskType = "EXECUTION_TASK"
)

// Valid reports whether t is one of the known pipeline task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeSalesContact, TaskTypeSiteInspection, TaskTypeDrawing, TaskTypeQuotation,
		TaskTypeProcurementAudit, TaskTypeProcurementBidding, TaskTypeExecution:
		return true
	default:
		return false
	}
}

type TaskStatus string

const (
	TaskStatusPending      TaskStatus = "PENDING"
	TaskStatusAcknowledged TaskStatus = "ACKNOWLEDGED"
	TaskStatusStarted      TaskStatus = "STARTED"
	TaskStatusCompleted    TaskStatus = "COMPLETED"
)

// ValidTransition checks if a task state transition is allowed.
// Allowed: pending->acknowledged, pending->started, acknowledged->started, started->completed.
// Completed is terminal.
func (s TaskStatus) ValidTransition(to TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return to == TaskStatusAcknowledged || to == TaskStatusStarted
	case TaskStatusAcknowledged:
		return to == TaskStatusStarted
	case TaskStatusStarted:
		return to == TaskStatusCompleted
	default:
		return false
	}
}

func (s TaskStatus) Terminal() bool { return s == TaskStatusCompleted }

// Open reports whether the task still counts as outstanding work.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusAcknowledged || s == TaskStatusStarted
}

// Payload carries the type-specific fields supplied at completion.
// Nil pointers mean "not provided".
type Payload struct {
	KmTravelled     *float64 `json:"kmTravelled,omitempty"`
	BOQUploaded     *bool    `json:"boqUploaded,omitempty"`
	DrawingUploaded *bool    `json:"drawingUploaded,omitempty"`
	QuotationAmount *float64 `json:"quotationAmount,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Merge returns p with every field set in other copied over it.
func (p Payload) Merge(other Payload) Payload {
	if other.KmTravelled != nil {
		p.KmTravelled = other.KmTravelled
	}
	if other.BOQUploaded != nil {
		p.BOQUploaded = other.BOQUploaded
	}
	if other.DrawingUploaded != nil {
		p.DrawingUploaded = other.DrawingUploaded
	}
	if other.QuotationAmount != nil {
		p.QuotationAmount = other.QuotationAmount
	}
	if other.Notes != "" {
		p.Notes = other.Notes
	}
	return p
}

type Task struct {
	ID             uuid.UUID  `json:"id"`
	CaseID         uuid.UUID  `json:"caseId"`
	ParentID       *uuid.UUID `json:"parentId,omitempty"` // nullable, predecessor task
	Type           TaskType   `json:"type"`
	Status         TaskStatus `json:"status"`
	AssignedTo     uuid.UUID  `json:"assignedTo"`
	AssignedBy     uuid.UUID  `json:"assignedBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Payload        Payload    `json:"payload"`
}

// Overdue reports whether an open task has passed its deadline at now.
func (t *Task) Overdue(now time.Time) bool {
	if t.Deadline == nil || !t.Status.Open() {
		return false
	}
	return now.After(*t.Deadline)
}

// Clone returns a deep copy so callers never share timestamp or payload pointers.
func (t *Task) Clone() *Task {
	c := *t
	c.ParentID = clonePtr(t.ParentID)
	c.AcknowledgedAt = clonePtr(t.AcknowledgedAt)
	c.StartedAt = clonePtr(t.StartedAt)
	c.CompletedAt = clonePtr(t.CompletedAt)
	c.Deadline = clonePtr(t.Deadline)
	c.Payload.KmTravelled = clonePtr(t.Payload.KmTravelled)
	c.Payload.BOQUploaded = clonePtr(t.Payload.BOQUploaded)
	c.Payload.DrawingUploaded = clonePtr(t.Payload.DrawingUploaded)
	c.Payload.QuotationAmount = clonePtr(t.Payload.QuotationAmount)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var successorNamespace = uuid.MustParse("5b0c6a57-2f7e-4d39-9a58-2c1f3e6d8a41") //nolint:gochecknoglobals // fixed namespace

// SuccessorID derives the id of the task created when parentID completes.
// A completion event therefore names exactly one successor, however often it is replayed.
func SuccessorID(parentID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(successorNamespace, parentID[:])
}

// TaskMutation edits a task copy inside ConditionalUpdate. Implementations
// persist only status, timestamps and payload; identity, type, case and
// assignee are never written back.
type TaskMutation func(t *Task)

type TaskRepository interface {
	// Create inserts a task. Returns ErrConflict when the id, or the successor
	// slot of the same parent, is already taken.
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	// ListByCase and ListByAssignee return every matching task in creation
	// order; results are never truncated.
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Task, error)
	// ListByAssignee spans all cases. An empty statuses list means any status.
	ListByAssignee(ctx context.Context, assignee uuid.UUID, statuses ...TaskStatus) ([]*Task, error)
	// ConditionalUpdate applies mutate only if the stored status still equals
	// expected at write time, otherwise it returns ErrConflict.
	ConditionalUpdate(ctx context.Context, id uuid.UUID, expected TaskStatus, mutate TaskMutation) (*Task, error)
}
