package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

type CreateMessengerLinkInput struct {
	Body struct {
		Platform   string `json:"platform" enum:"slack" doc:"Chat platform"`
		ExternalID string `json:"externalId" minLength:"1" maxLength:"64" doc:"User ID on the platform"`
	}
}

type MessengerLinkOutput struct {
	Body *domain.MessengerLink
}

type ListMessengerLinksOutput struct {
	Body []*domain.MessengerLink
}

// RegisterMessengerLinkRoutes lets callers choose where assignment alerts
// are delivered.
func RegisterMessengerLinkRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-messenger-link",
		Method:      http.MethodPost,
		Path:        "/me/messenger-links",
		Summary:     "Link a chat account for assignment alerts",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *CreateMessengerLinkInput) (*MessengerLinkOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		link := &domain.MessengerLink{
			ID:         uuid.New(),
			UserID:     actor.ID,
			Platform:   input.Body.Platform,
			ExternalID: input.Body.ExternalID,
			CreatedAt:  time.Now(),
		}
		if err := store.MessengerLinks().CreateMessengerLink(ctx, link); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("a link for this platform already exists")
			}
			return nil, huma.Error500InternalServerError("failed to create link", err)
		}
		return &MessengerLinkOutput{Body: link}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-messenger-links",
		Method:      http.MethodGet,
		Path:        "/me/messenger-links",
		Summary:     "List the caller's chat accounts",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, _ *struct{}) (*ListMessengerLinksOutput, error) {
		actor, err := actorFromContext(ctx)
		if err != nil {
			return nil, err
		}

		links, err := store.MessengerLinks().ListMessengerLinks(ctx, actor.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list links", err)
		}
		return &ListMessengerLinksOutput{Body: links}, nil
	})
}
