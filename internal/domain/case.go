package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is an operational role within a case.
type Role string

const (
	RoleSales          Role = "sales"
	RoleSiteEngineer   Role = "site_engineer"
	RoleDesigner       Role = "designer"
	RoleEstimator      Role = "estimator"
	RoleProcurement    Role = "procurement"
	RoleProjectManager Role = "project_manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleSiteEngineer, RoleDesigner, RoleEstimator, RoleProcurement, RoleProjectManager:
		return true
	default:
		return false
	}
}

// CaseRoleAssignment maps a role on a case to the user who fills it.
type CaseRoleAssignment struct {
	CaseID     uuid.UUID `json:"caseId"`
	Role       Role      `json:"role"`
	UserID     uuid.UUID `json:"userId"`
	AssignedBy uuid.UUID `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
}

// CaseRepository is the core's view of the external case entity: only its
// role assignments.
type CaseRepository interface {
	// GetCaseRoleAssignment returns ErrNotFound when the role is unset.
	GetCaseRoleAssignment(ctx context.Context, caseID uuid.UUID, role Role) (uuid.UUID, error)
	SetCaseRoleAssignment(ctx context.Context, a *CaseRoleAssignment) error
	ListCaseRoleAssignments(ctx context.Context, caseID uuid.UUID) ([]*CaseRoleAssignment, error)
}
