package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/server/middleware"
)

type CaseIDInput struct {
	CaseID uuid.UUID `path:"caseID" doc:"Case ID"`
}

type CaseTasksOutput struct {
	Body []*domain.Task
}

type CaseActivityInput struct {
	CaseID uuid.UUID `path:"caseID" doc:"Case ID"`
	Limit  int       `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Page size"`
	Offset int       `query:"offset" minimum:"0" doc:"Entries to skip"`
}

type CaseActivityOutput struct {
	Body []*domain.ActivityEntry
}

type CaseRolesOutput struct {
	Body []*domain.CaseRoleAssignment
}

type SetCaseRoleInput struct {
	CaseID uuid.UUID `path:"caseID" doc:"Case ID"`
	Role   string    `path:"role" doc:"Operational role, e.g. designer"`
	Body   struct {
		UserID uuid.UUID `json:"userId" doc:"User who fills the role"`
	}
}

type SetCaseRoleOutput struct {
	Body *domain.CaseRoleAssignment
}

func RegisterCaseRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-case-tasks",
		Method:      http.MethodGet,
		Path:        "/cases/{caseID}/tasks",
		Summary:     "List the tasks of a case in creation order",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CaseIDInput) (*CaseTasksOutput, error) {
		tasks, err := store.Tasks().ListByCase(ctx, input.CaseID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}
		return &CaseTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-case-activity",
		Method:      http.MethodGet,
		Path:        "/cases/{caseID}/activity",
		Summary:     "List the activity log of a case, newest first",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CaseActivityInput) (*CaseActivityOutput, error) {
		entries, err := store.Activity().ListByCase(ctx, input.CaseID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list activity", err)
		}
		return &CaseActivityOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-case-roles",
		Method:      http.MethodGet,
		Path:        "/cases/{caseID}/roles",
		Summary:     "List role assignments of a case",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CaseIDInput) (*CaseRolesOutput, error) {
		roles, err := store.Cases().ListCaseRoleAssignments(ctx, input.CaseID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list roles", err)
		}
		return &CaseRolesOutput{Body: roles}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-case-role",
		Method:      http.MethodPut,
		Path:        "/cases/{caseID}/roles/{role}",
		Summary:     "Assign a user to a role on a case",
		Tags:        []string{"Cases"},
		Middlewares: huma.Middlewares{middleware.RequireRole(api, middleware.RoleAdmin, middleware.RoleManager)},
	}, func(ctx context.Context, input *SetCaseRoleInput) (*SetCaseRoleOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		role := domain.Role(input.Role)
		if !role.Valid() {
			return nil, huma.Error422UnprocessableEntity("unknown role: " + input.Role)
		}
		if input.Body.UserID == uuid.Nil {
			return nil, huma.Error422UnprocessableEntity("userId is required")
		}

		a := &domain.CaseRoleAssignment{
			CaseID:     input.CaseID,
			Role:       role,
			UserID:     input.Body.UserID,
			AssignedBy: actor.ID,
			AssignedAt: time.Now(),
		}
		if err := store.Cases().SetCaseRoleAssignment(ctx, a); err != nil {
			return nil, huma.Error500InternalServerError("failed to assign role", err)
		}
		return &SetCaseRoleOutput{Body: a}, nil
	})
}
