package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

type ActivityRepo struct {
	mu      sync.RWMutex
	entries []domain.ActivityEntry
}

var _ domain.ActivityRepository = (*ActivityRepo)(nil)

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{}
}

func (r *ActivityRepo) Record(_ context.Context, entry *domain.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, *entry)
	return nil
}

// ListByCase returns newest entries first.
func (r *ActivityRepo) ListByCase(_ context.Context, caseID uuid.UUID, limit, offset int) ([]*domain.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ActivityEntry
	skipped := 0
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.CaseID != caseID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, &e)
	}

	return out, nil
}
