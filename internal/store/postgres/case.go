package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/caseflow/internal/domain"
)

type CaseRepo struct {
	pool *pgxpool.Pool
}

var _ domain.CaseRepository = (*CaseRepo)(nil)

func NewCaseRepo(pool *pgxpool.Pool) *CaseRepo {
	return &CaseRepo{pool: pool}
}

func (r *CaseRepo) GetCaseRoleAssignment(ctx context.Context, caseID uuid.UUID, role domain.Role) (uuid.UUID, error) {
	var userID uuid.UUID

	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM case_role_assignments WHERE case_id = $1 AND role = $2`,
		caseID, role,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("caseRepo.GetCaseRoleAssignment: %w", domain.ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("caseRepo.GetCaseRoleAssignment: %w", err)
	}

	return userID, nil
}

func (r *CaseRepo) SetCaseRoleAssignment(ctx context.Context, a *domain.CaseRoleAssignment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO case_role_assignments (case_id, role, user_id, assigned_by, assigned_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (case_id, role) DO UPDATE
		 SET user_id = EXCLUDED.user_id, assigned_by = EXCLUDED.assigned_by, assigned_at = EXCLUDED.assigned_at`,
		a.CaseID, a.Role, a.UserID, a.AssignedBy, a.AssignedAt,
	)
	if err != nil {
		return fmt.Errorf("caseRepo.SetCaseRoleAssignment: %w", err)
	}

	return nil
}

func (r *CaseRepo) ListCaseRoleAssignments(ctx context.Context, caseID uuid.UUID) ([]*domain.CaseRoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT case_id, role, user_id, assigned_by, assigned_at
		 FROM case_role_assignments WHERE case_id = $1
		 ORDER BY role`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("caseRepo.ListCaseRoleAssignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.CaseRoleAssignment
	for rows.Next() {
		var a domain.CaseRoleAssignment
		if err := rows.Scan(&a.CaseID, &a.Role, &a.UserID, &a.AssignedBy, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("caseRepo.ListCaseRoleAssignments: scan: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("caseRepo.ListCaseRoleAssignments: rows: %w", err)
	}

	return out, nil
}
