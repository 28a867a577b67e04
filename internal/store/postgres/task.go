package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/caseflow/internal/domain"
)

const taskColumns = `id, case_id, parent_id, type, status, assigned_to, assigned_by,
		        created_at, acknowledged_at, started_at, completed_at, deadline, payload`

type TaskRepo struct {
	pool *pgxpool.Pool
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	payload, err := json.Marshal(t.Payload)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: marshal payload: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO tasks (id, case_id, parent_id, type, status, assigned_to, assigned_by,
		                    created_at, acknowledged_at, started_at, completed_at, deadline, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.CaseID, t.ParentID, t.Type, t.Status, t.AssignedTo, t.AssignedBy,
		t.CreatedAt, t.AcknowledgedAt, t.StartedAt, t.CompletedAt, t.Deadline, payload,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("taskRepo.Create: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.Get: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks WHERE case_id = $1
		 ORDER BY created_at, id`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByCase: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListByCase")
}

func (r *TaskRepo) ListByAssignee(ctx context.Context, assignee uuid.UUID, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = r.pool.Query(ctx,
			`SELECT `+taskColumns+`
			 FROM tasks WHERE assigned_to = $1
			 ORDER BY created_at, id`,
			assignee,
		)
	} else {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		rows, err = r.pool.Query(ctx,
			`SELECT `+taskColumns+`
			 FROM tasks WHERE assigned_to = $1 AND status = ANY($2)
			 ORDER BY created_at, id`,
			assignee, names,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByAssignee: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListByAssignee")
}

// ConditionalUpdate locks the row, checks its status and writes the
// mutated copy in one transaction.
func (r *TaskRepo) ConditionalUpdate(ctx context.Context, id uuid.UUID, expected domain.TaskStatus, mutate domain.TaskMutation) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanTask(tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: read: %w", err)
	}
	if current.Status != expected {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: status is %s, expected %s: %w", current.Status, expected, domain.ErrConflict)
	}

	next := current.Clone()
	mutate(next)

	payload, err := json.Marshal(next.Payload)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: marshal payload: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET status = $1, acknowledged_at = $2, started_at = $3, completed_at = $4, payload = $5
		 WHERE id = $6 AND status = $7`,
		next.Status, next.AcknowledgedAt, next.StartedAt, next.CompletedAt, payload,
		id, expected,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: %w", domain.ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("taskRepo.ConditionalUpdate: commit: %w", err)
	}

	// Only the columns written above change.
	current.Status = next.Status
	current.AcknowledgedAt = next.AcknowledgedAt
	current.StartedAt = next.StartedAt
	current.CompletedAt = next.CompletedAt
	current.Payload = next.Payload

	return current, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t       domain.Task
		payload []byte
	)
	if err := row.Scan(
		&t.ID, &t.CaseID, &t.ParentID, &t.Type, &t.Status, &t.AssignedTo, &t.AssignedBy,
		&t.CreatedAt, &t.AcknowledgedAt, &t.StartedAt, &t.CompletedAt, &t.Deadline, &payload,
	); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &t.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	return &t, nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
