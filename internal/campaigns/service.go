package campaigns

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reachloop/reachloop/internal/shared"
)

// Service handles campaign business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of campaigns.
func (s *Service) List(ctx context.Context, page, limit int) ([]Campaign, shared.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	items, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, limit, total), nil
}

// Get fetches one campaign.
func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	return s.repo.Get(ctx, id)
}

// Create persists a new draft campaign owned by ownerID.
func (s *Service) Create(ctx context.Context, c Campaign, ownerID string) (*Campaign, error) {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.OwnerID = ownerID
	c.Status = StatusDraft
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update rewrites mutable campaign fields.
func (s *Service) Update(ctx context.Context, c Campaign) (*Campaign, error) {
	return s.repo.Update(ctx, c)
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
