package users

import (
	"context"

	"github.com/reachloop/reachloop/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	Get(ctx context.Context, id string) (*User, error)
	UpdateName(ctx context.Context, id, name string) (*User, error)
	Deactivate(ctx context.Context, id string) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, page, limit int) ([]User, shared.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	users, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, limit, total), nil
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Rename updates a user's display name.
func (s *Service) Rename(ctx context.Context, id, name string) (*User, error) {
	return s.repo.UpdateName(ctx, id, name)
}

// Deactivate disables an account.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}
