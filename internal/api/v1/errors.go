package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/server/middleware"
)

// actorFromContext returns the authenticated actor placed on the request by
// the Auth middleware.
func actorFromContext(ctx context.Context) (domain.Actor, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return domain.Actor{}, huma.Error401Unauthorized("missing user context")
	}
	role, _ := middleware.RoleFromContext(ctx)
	return domain.Actor{ID: userID, Role: role}, nil
}

// transitionError maps engine and repository errors to HTTP problems.
func transitionError(err error, msg string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error422UnprocessableEntity(msg, &huma.ErrorDetail{
			Message:  verr.Message,
			Location: verr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("task not found")
	case errors.Is(err, domain.ErrNotOwner):
		return huma.Error403Forbidden("task is not assigned to you")
	case errors.Is(err, domain.ErrInvalidState):
		return huma.Error409Conflict("action not allowed in the current task status")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("task was modified concurrently")
	default:
		log.Error().Err(err).Msg(msg)
		return huma.Error500InternalServerError(msg)
	}
}
