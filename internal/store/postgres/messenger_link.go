package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/caseflow/internal/domain"
)

type MessengerLinkRepo struct {
	pool *pgxpool.Pool
}

var _ domain.MessengerLinkRepository = (*MessengerLinkRepo)(nil)

func NewMessengerLinkRepo(pool *pgxpool.Pool) *MessengerLinkRepo {
	return &MessengerLinkRepo{pool: pool}
}

func (r *MessengerLinkRepo) CreateMessengerLink(ctx context.Context, link *domain.MessengerLink) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_messenger_links (id, user_id, platform, external_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.UserID, link.Platform, link.ExternalID, link.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("messengerLinkRepo.CreateMessengerLink: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("messengerLinkRepo.CreateMessengerLink: %w", err)
	}

	return nil
}

func (r *MessengerLinkRepo) ListMessengerLinks(ctx context.Context, userID uuid.UUID) ([]*domain.MessengerLink, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, platform, external_id, created_at
		 FROM user_messenger_links WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("messengerLinkRepo.ListMessengerLinks: %w", err)
	}
	defer rows.Close()

	var links []*domain.MessengerLink
	for rows.Next() {
		var l domain.MessengerLink
		if err := rows.Scan(&l.ID, &l.UserID, &l.Platform, &l.ExternalID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("messengerLinkRepo.ListMessengerLinks: scan: %w", err)
		}
		links = append(links, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messengerLinkRepo.ListMessengerLinks: rows: %w", err)
	}

	return links, nil
}
