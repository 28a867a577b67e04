package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/caseflow/internal/domain"
)

type MessengerLinkRepo struct {
	mu    sync.RWMutex
	links []domain.MessengerLink
}

var _ domain.MessengerLinkRepository = (*MessengerLinkRepo)(nil)

func NewMessengerLinkRepo() *MessengerLinkRepo {
	return &MessengerLinkRepo{}
}

func (r *MessengerLinkRepo) CreateMessengerLink(_ context.Context, link *domain.MessengerLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.links {
		if l.ID == link.ID || (l.UserID == link.UserID && l.Platform == link.Platform) {
			return fmt.Errorf("memory.MessengerLinkRepo.CreateMessengerLink: %w", domain.ErrConflict)
		}
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *MessengerLinkRepo) ListMessengerLinks(_ context.Context, userID uuid.UUID) ([]*domain.MessengerLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.MessengerLink
	for _, l := range r.links {
		if l.UserID == userID {
			out = append(out, &l)
		}
	}

	return out, nil
}
