package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseflow/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. TaskStatus.ValidTransition: full 4x4 state-machine matrix.
// ---------------------------------------------------------------------------

func TestTaskStatus_ValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from domain.TaskStatus
		to   domain.TaskStatus
		want bool
	}{
		// From pending.
		{domain.TaskStatusPending, domain.TaskStatusAcknowledged, true},
		{domain.TaskStatusPending, domain.TaskStatusStarted, true},
		{domain.TaskStatusPending, domain.TaskStatusCompleted, false},
		{domain.TaskStatusPending, domain.TaskStatusPending, false},

		// From acknowledged.
		{domain.TaskStatusAcknowledged, domain.TaskStatusStarted, true},
		{domain.TaskStatusAcknowledged, domain.TaskStatusCompleted, false},
		{domain.TaskStatusAcknowledged, domain.TaskStatusPending, false},
		{domain.TaskStatusAcknowledged, domain.TaskStatusAcknowledged, false},

		// From started.
		{domain.TaskStatusStarted, domain.TaskStatusCompleted, true},
		{domain.TaskStatusStarted, domain.TaskStatusPending, false},
		{domain.TaskStatusStarted, domain.TaskStatusAcknowledged, false},
		{domain.TaskStatusStarted, domain.TaskStatusStarted, false},

		// From completed (terminal).
		{domain.TaskStatusCompleted, domain.TaskStatusPending, false},
		{domain.TaskStatusCompleted, domain.TaskStatusAcknowledged, false},
		{domain.TaskStatusCompleted, domain.TaskStatusStarted, false},
		{domain.TaskStatusCompleted, domain.TaskStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()

			got := tt.from.ValidTransition(tt.to)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTaskStatus_ValidTransition_UnknownStatus verifies that an unrecognised
// status always returns false regardless of destination.
func TestTaskStatus_ValidTransition_UnknownStatus(t *testing.T) {
	t.Parallel()

	unknown := domain.TaskStatus("ARCHIVED")
	for _, to := range []domain.TaskStatus{
		domain.TaskStatusPending,
		domain.TaskStatusAcknowledged,
		domain.TaskStatusStarted,
		domain.TaskStatusCompleted,
	} {
		assert.False(t, unknown.ValidTransition(to), "ARCHIVED->%s", to)
	}
}

func TestTaskStatus_OpenTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   domain.TaskStatus
		open     bool
		terminal bool
	}{
		{domain.TaskStatusPending, true, false},
		{domain.TaskStatusAcknowledged, true, false},
		{domain.TaskStatusStarted, true, false},
		{domain.TaskStatusCompleted, false, true},
		{domain.TaskStatus("ARCHIVED"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.open, tt.status.Open())
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

// ---------------------------------------------------------------------------
// 2. Task types and roles.
// ---------------------------------------------------------------------------

func TestTaskType_Valid(t *testing.T) {
	t.Parallel()

	for _, tt := range []domain.TaskType{
		domain.TaskTypeSalesContact,
		domain.TaskTypeSiteInspection,
		domain.TaskTypeDrawing,
		domain.TaskTypeQuotation,
		domain.TaskTypeProcurementAudit,
		domain.TaskTypeProcurementBidding,
		domain.TaskTypeExecution,
	} {
		assert.True(t, tt.Valid(), string(tt))
	}

	assert.False(t, domain.TaskType("").Valid())
	assert.False(t, domain.TaskType("sales_contact").Valid(), "type names are case sensitive")
}

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.RoleSiteEngineer.Valid())
	assert.True(t, domain.RoleProjectManager.Valid())
	assert.False(t, domain.Role("janitor").Valid())
}

// ---------------------------------------------------------------------------
// 3. Task helpers.
// ---------------------------------------------------------------------------

func TestTask_Overdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name     string
		status   domain.TaskStatus
		deadline *time.Time
		want     bool
	}{
		{"no deadline", domain.TaskStatusPending, nil, false},
		{"future deadline", domain.TaskStatusPending, &future, false},
		{"past deadline pending", domain.TaskStatusPending, &past, true},
		{"past deadline started", domain.TaskStatusStarted, &past, true},
		{"past deadline completed", domain.TaskStatusCompleted, &past, false},
		{"exactly at deadline", domain.TaskStatusPending, &now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := &domain.Task{Status: tt.status, Deadline: tt.deadline}
			assert.Equal(t, tt.want, task.Overdue(now))
		})
	}
}

func TestTask_CloneIsDeep(t *testing.T) {
	t.Parallel()

	km := 12.5
	deadline := time.Now()
	orig := &domain.Task{
		ID:       uuid.New(),
		Deadline: &deadline,
		Payload:  domain.Payload{KmTravelled: &km},
	}

	c := orig.Clone()
	*c.Deadline = deadline.Add(time.Hour)
	*c.Payload.KmTravelled = 99

	assert.Equal(t, deadline, *orig.Deadline)
	assert.InDelta(t, 12.5, *orig.Payload.KmTravelled, 0)
	assert.Equal(t, orig.ID, c.ID)
}

func TestPayload_Merge(t *testing.T) {
	t.Parallel()

	km := 7.0
	yes := true
	base := domain.Payload{KmTravelled: &km, Notes: "first visit"}
	merged := base.Merge(domain.Payload{BOQUploaded: &yes})

	require.NotNil(t, merged.KmTravelled)
	assert.InDelta(t, 7.0, *merged.KmTravelled, 0)
	require.NotNil(t, merged.BOQUploaded)
	assert.True(t, *merged.BOQUploaded)
	assert.Equal(t, "first visit", merged.Notes)

	overwritten := base.Merge(domain.Payload{Notes: "second visit"})
	assert.Equal(t, "second visit", overwritten.Notes)
}

func TestSuccessorID(t *testing.T) {
	t.Parallel()

	parent := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	a := domain.SuccessorID(parent)
	b := domain.SuccessorID(parent)
	assert.Equal(t, a, b, "successor id must be deterministic")
	assert.NotEqual(t, parent, a)
	assert.NotEqual(t, a, domain.SuccessorID(uuid.New()))
	assert.Equal(t, uuid.Version(5), a.Version())
}

func TestNewTaskEvent(t *testing.T) {
	t.Parallel()

	at := time.Now()
	actor := uuid.New()
	task := &domain.Task{
		ID:         uuid.New(),
		CaseID:     uuid.New(),
		Type:       domain.TaskTypeDrawing,
		Status:     domain.TaskStatusPending,
		AssignedTo: uuid.New(),
	}

	ev := domain.NewTaskEvent(domain.TaskEventCreated, task, actor, at)
	assert.Equal(t, domain.TaskEventCreated, ev.Type)
	assert.Equal(t, task.ID, ev.TaskID)
	assert.Equal(t, task.CaseID, ev.CaseID)
	assert.Equal(t, task.AssignedTo, ev.AssignedTo)
	assert.Equal(t, actor, ev.ActorID)
	assert.Equal(t, at, ev.At)
}

// ---------------------------------------------------------------------------
// 4. Sentinel errors: identity, distinctness, and wrapping.
// ---------------------------------------------------------------------------

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrNotOwner,
		domain.ErrInvalidState,
		domain.ErrValidation,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b, "sentinel errors must be distinct")
		}
	}
}

func TestSentinelErrors_WrappingPreservesIdentity(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrNotOwner,
		domain.ErrInvalidState,
		domain.ErrValidation,
	} {
		wrapped := fmt.Errorf("outer: %w", sentinel)
		require.ErrorIs(t, wrapped, sentinel)

		doubleWrapped := fmt.Errorf("outer2: %w", wrapped)
		require.ErrorIs(t, doubleWrapped, sentinel)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("transition: %w", &domain.ValidationError{Field: "kmTravelled", Message: "must be greater than zero"})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrConflict)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "kmTravelled", verr.Field)
	assert.Equal(t, "kmTravelled: must be greater than zero", verr.Error())
}

// ---------------------------------------------------------------------------
// 5. Status constants: string value regression guards.
// ---------------------------------------------------------------------------

func TestTaskStatusConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  domain.TaskStatus
		want string
	}{
		{domain.TaskStatusPending, "PENDING"},
		{domain.TaskStatusAcknowledged, "ACKNOWLEDGED"},
		{domain.TaskStatusStarted, "STARTED"},
		{domain.TaskStatusCompleted, "COMPLETED"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(tt.got))
	}
}
