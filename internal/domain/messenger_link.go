package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessengerLink ties a user to an account on a chat platform used for
// assignment alerts.
type MessengerLink struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Platform   string    `json:"platform"` // "slack"
	ExternalID string    `json:"externalId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MessengerLinkRepository interface {
	CreateMessengerLink(ctx context.Context, link *MessengerLink) error
	ListMessengerLinks(ctx context.Context, userID uuid.UUID) ([]*MessengerLink, error)
}
