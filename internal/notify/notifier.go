package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/messenger"
)

// ErrPlatformNotFound is returned when a messenger platform is not registered.
var ErrPlatformNotFound = errors.New("notify: platform not found") //nolint:gochecknoglobals // sentinel error

// MessengerRegistry maps platform names to Messenger implementations.
type MessengerRegistry interface {
	Get(platform string) (messenger.Messenger, bool)
}

// UserLinkResolver finds messenger links for a user.
type UserLinkResolver interface {
	ListMessengerLinks(ctx context.Context, userID uuid.UUID) ([]*domain.MessengerLink, error)
}

// Notifier delivers assignment alerts through a user's linked messenger accounts.
type Notifier struct {
	messengers MessengerRegistry
	userLinks  UserLinkResolver
}

func New(messengers MessengerRegistry, userLinks UserLinkResolver) *Notifier {
	return &Notifier{
		messengers: messengers,
		userLinks:  userLinks,
	}
}

// Notify sends to the first messenger link that accepts the message.
// A user without links is logged and not treated as an error.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, title, message string) error {
	links, err := n.userLinks.ListMessengerLinks(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify.Notifier.Notify: list links: %w", err)
	}

	if len(links) == 0 {
		log.Info().Str("user_id", userID.String()).Str("title", title).Str("message", message).Msg("notify: no messenger links")
		return nil
	}

	var lastErr error
	for _, link := range links {
		sendErr := n.NotifyVia(ctx, link.Platform, link.ExternalID, title, message)
		if sendErr == nil {
			return nil
		}
		log.Debug().Err(sendErr).Str("platform", link.Platform).Msg("notify: link failed, trying next")
		lastErr = sendErr
	}

	return fmt.Errorf("notify.Notifier.Notify: all links failed: %w", lastErr)
}

// NotifyVia sends a notification using a specific platform and external ID directly.
func (n *Notifier) NotifyVia(ctx context.Context, platform, externalID, title, message string) error {
	msg, ok := n.messengers.Get(platform)
	if !ok {
		return fmt.Errorf("notify.Notifier.NotifyVia: platform %q: %w", platform, ErrPlatformNotFound)
	}

	if err := msg.SendNotification(ctx, externalID, title, message); err != nil {
		return fmt.Errorf("notify.Notifier.NotifyVia: send: %w", err)
	}

	return nil
}
