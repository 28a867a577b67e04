package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/caseflow/internal/domain"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ActivityRepository = (*ActivityRepo)(nil)

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_log (id, case_id, task_id, actor_id, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.CaseID, entry.TaskID, entry.ActorID, entry.Message, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("activityRepo.Record: %w", err)
	}

	return nil
}

func (r *ActivityRepo) ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, task_id, actor_id, message, created_at
		 FROM activity_log WHERE case_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		caseID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.ListByCase: %w", err)
	}
	defer rows.Close()

	return scanActivityEntries(rows, "activityRepo.ListByCase")
}

func scanActivityEntries(rows pgx.Rows, caller string) ([]*domain.ActivityEntry, error) {
	var entries []*domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.TaskID, &e.ActorID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}
