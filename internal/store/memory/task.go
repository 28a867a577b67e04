package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

type TaskRepo struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*domain.Task
	byParent map[uuid.UUID]uuid.UUID
	seq      map[uuid.UUID]uint64 // insertion order, breaks created_at ties
	next     uint64
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{
		tasks:    make(map[uuid.UUID]*domain.Task),
		byParent: make(map[uuid.UUID]uuid.UUID),
		seq:      make(map[uuid.UUID]uint64),
	}
}

func (r *TaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("memory.TaskRepo.Create: task %s: %w", t.ID, domain.ErrConflict)
	}
	if t.ParentID != nil {
		if _, ok := r.byParent[*t.ParentID]; ok {
			return fmt.Errorf("memory.TaskRepo.Create: successor of %s: %w", *t.ParentID, domain.ErrConflict)
		}
		r.byParent[*t.ParentID] = t.ID
	}

	r.tasks[t.ID] = t.Clone()
	r.seq[t.ID] = r.next
	r.next++

	return nil
}

func (r *TaskRepo) Get(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("memory.TaskRepo.Get: %w", domain.ErrNotFound)
	}

	return t.Clone(), nil
}

func (r *TaskRepo) ListByCase(_ context.Context, caseID uuid.UUID) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, t := range r.tasks {
		if t.CaseID == caseID {
			out = append(out, t.Clone())
		}
	}
	r.sortByCreation(out)

	return out, nil
}

func (r *TaskRepo) ListByAssignee(_ context.Context, assignee uuid.UUID, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, t := range r.tasks {
		if t.AssignedTo != assignee {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, t.Status) {
			continue
		}
		out = append(out, t.Clone())
	}
	r.sortByCreation(out)

	return out, nil
}

func (r *TaskRepo) ConditionalUpdate(_ context.Context, id uuid.UUID, expected domain.TaskStatus, mutate domain.TaskMutation) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("memory.TaskRepo.ConditionalUpdate: %w", domain.ErrNotFound)
	}
	if stored.Status != expected {
		return nil, fmt.Errorf("memory.TaskRepo.ConditionalUpdate: status is %s, expected %s: %w", stored.Status, expected, domain.ErrConflict)
	}

	next := stored.Clone()
	mutate(next)

	// Only the mutable columns are written back.
	stored.Status = next.Status
	stored.AcknowledgedAt = next.AcknowledgedAt
	stored.StartedAt = next.StartedAt
	stored.CompletedAt = next.CompletedAt
	stored.Payload = next.Payload

	return stored.Clone(), nil
}

// sortByCreation must be called with r.mu held.
func (r *TaskRepo) sortByCreation(tasks []*domain.Task) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(r.seq[a.ID]) - int(r.seq[b.ID])
	})
}
