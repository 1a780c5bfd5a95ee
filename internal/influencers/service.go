package influencers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reachloop/reachloop/internal/shared"
)

// Service handles influencer business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of influencers ordered by reach.
func (s *Service) List(ctx context.Context, page, limit int) ([]Influencer, shared.Pagination, error) {
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

// Get fetches one influencer.
func (s *Service) Get(ctx context.Context, id string) (*Influencer, error) {
	return s.repo.Get(ctx, id)
}

// Create persists a new influencer profile.
func (s *Service) Create(ctx context.Context, inf Influencer) (*Influencer, error) {
	now := time.Now().UTC()
	inf.ID = uuid.NewString()
	inf.IsActive = true
	inf.CreatedAt = now
	inf.UpdatedAt = now
	if err := s.repo.Create(ctx, inf); err != nil {
		return nil, err
	}
	return &inf, nil
}

// Update rewrites mutable profile fields.
func (s *Service) Update(ctx context.Context, inf Influencer) (*Influencer, error) {
	return s.repo.Update(ctx, inf)
}

// Delete removes an influencer profile.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
