package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

type caseRoleKey struct {
	caseID uuid.UUID
	role   domain.Role
}

type CaseRepo struct {
	mu          sync.RWMutex
	assignments map[caseRoleKey]domain.CaseRoleAssignment
}

var _ domain.CaseRepository = (*CaseRepo)(nil)

func NewCaseRepo() *CaseRepo {
	return &CaseRepo{assignments: make(map[caseRoleKey]domain.CaseRoleAssignment)}
}

func (r *CaseRepo) GetCaseRoleAssignment(_ context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assignments[caseRoleKey{caseID, role}]
	if !ok {
		return uuid.Nil, fmt.Errorf("memory.CaseRepo.GetCaseRoleAssignment: %s: %w", role, domain.ErrNotFound)
	}

	return a.UserID, nil
}

func (r *CaseRepo) SetCaseRoleAssignment(_ context.Context, a *domain.CaseRoleAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assignments[caseRoleKey{a.CaseID, a.Role}] = *a
	return nil
}

func (r *CaseRepo) ListCaseRoleAssignments(_ context.Context, caseID uuid.UUID) ([]*domain.CaseRoleAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.CaseRoleAssignment
	for k, a := range r.assignments {
		if k.caseID == caseID {
			out = append(out, &a)
		}
	}
	slices.SortFunc(out, func(a, b *domain.CaseRoleAssignment) int {
		if a.Role < b.Role {
			return -1
		}
		if a.Role > b.Role {
			return 1
		}
		return 0
	})

	return out, nil
}
