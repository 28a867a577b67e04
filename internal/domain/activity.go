package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEntry is one append-only line of a case's history.
type ActivityEntry struct {
	ID        uuid.UUID  `json:"id"`
	CaseID    uuid.UUID  `json:"caseId"`
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
	ActorID   uuid.UUID  `json:"actorId"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*ActivityEntry, error)
}
