// Package sessions implements the stateful session lifecycle: token
// issuance, validation, listing with masked tokens, revocation and expiry.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reachloop/reachloop/internal/shared"
)

// StatusFilterAll disables the status predicate on listings.
const StatusFilterAll = "all"

// Service orchestrates session operations against the repository. It holds
// no internal state beyond configuration; every call is one unit of work.
type Service struct {
	repo     Repository
	lifetime time.Duration
	throttle *ActivityThrottle
}

// NewService constructs a Service. A non-positive lifetime falls back to
// DefaultLifetime. The throttle is optional.
func NewService(repo Repository, lifetime time.Duration, throttle *ActivityThrottle) *Service {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Service{repo: repo, lifetime: lifetime, throttle: throttle}
}

// Lifetime exposes the configured session validity window.
func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}

// Create allocates and persists a new active session. The returned record
// carries the raw token; this is the only time it leaves the store, so the
// caller must transmit it to the client immediately.
func (s *Service) Create(ctx context.Context, userID string, meta Metadata) (*Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Token:        token,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		DeviceInfo:   meta.DeviceInfo,
		Status:       StatusActive,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.lifetime),
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Validate resolves a raw token to its live session joined with the owner's
// role. Missing, revoked, expired-by-status and expired-by-clock tokens all
// come back as nil without error; absence is a normal outcome here. The
// expiry check is logical, independent of the stored status column.
func (s *Service) Validate(ctx context.Context, token string) (*OwnedSession, error) {
	if token == "" {
		return nil, nil
	}
	owned, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if owned.Status != StatusActive {
		return nil, nil
	}
	if !owned.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	return owned, nil
}

// List returns one page of a user's sessions, newest activity first, tokens
// masked. An empty status filters to active; StatusFilterAll disables the
// filter.
func (s *Service) List(ctx context.Context, userID, status string, page, limit int) ([]Session, shared.Pagination, error) {
	var filter Status
	switch status {
	case "", string(StatusActive):
		filter = StatusActive
	case StatusFilterAll:
		filter = ""
	default:
		filter = Status(status)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	rows, total, err := s.repo.ListByUser(ctx, userID, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	for i := range rows {
		rows[i].Token = MaskToken(rows[i].Token)
	}
	return rows, shared.NewPagination(page, limit, total), nil
}

// GetByID fetches one session scoped to its owner, token masked. Sessions of
// other users are invisible: nil, not an authorization error.
func (s *Service) GetByID(ctx context.Context, sessionID, userID string) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sess.Token = MaskToken(sess.Token)
	return sess, nil
}

// TouchActivity stamps last_active_at. Best-effort: when the redis throttle
// says the session was touched recently the write is skipped entirely.
func (s *Service) TouchActivity(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if s.throttle != nil && !s.throttle.Allow(ctx, sessionID) {
		return nil
	}
	return s.repo.Touch(ctx, sessionID, time.Now().UTC())
}

// Revoke transitions one owned active session to revoked. False means not
// found, not owned or already non-active; callers cannot tell these apart.
func (s *Service) Revoke(ctx context.Context, sessionID, userID string) (bool, error) {
	return s.repo.Revoke(ctx, sessionID, userID, time.Now().UTC())
}

// RevokeAll revokes every active session of a user. A non-empty
// excludeSessionID spares the caller's current session ("log out other
// devices"). Returns the number of sessions affected.
func (s *Service) RevokeAll(ctx context.Context, userID, excludeSessionID string) (int64, error) {
	return s.repo.RevokeAll(ctx, userID, excludeSessionID, time.Now().UTC())
}

// RevokeByDeviceType revokes a user's active sessions matching one stored
// device tag.
func (s *Service) RevokeByDeviceType(ctx context.Context, userID, deviceType string) (int64, error) {
	return s.repo.RevokeByDeviceType(ctx, userID, deviceType, time.Now().UTC())
}

// CleanupExpired marks every time-expired active session as expired. This is
// the only writer of the expired status; validation treats stale rows as
// invalid without rewriting them.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.MarkExpired(ctx, time.Now().UTC())
}

// CountActive counts sessions active by both status and clock.
func (s *Service) CountActive(ctx context.Context, userID string) (int, error) {
	return s.repo.CountActive(ctx, userID, time.Now().UTC())
}
