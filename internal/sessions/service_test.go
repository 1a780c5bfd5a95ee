package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachloop/reachloop/internal/shared"
	_ "github.com/reachloop/reachloop/testing"
)

// mockRepository is an in-memory Repository mirroring the SQL behavior:
// conditional transitions only ever touch active rows, and owner scoping
// collapses "someone else's session" into not found.
type mockRepository struct {
	sessions map[string]Session
	roles    map[string]string
	findErr  error
	calls    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[string]Session),
		roles:    map[string]string{"u1": "user", "u2": "moderator"},
	}
}

func (m *mockRepository) Insert(_ context.Context, s Session) error {
	for _, existing := range m.sessions {
		if existing.Token == s.Token {
			return shared.ErrDuplicate
		}
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRepository) FindByToken(_ context.Context, token string) (*OwnedSession, error) {
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, s := range m.sessions {
		if s.Token == token {
			return &OwnedSession{Session: s, OwnerRole: m.roles[s.UserID]}, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) ListByUser(_ context.Context, userID string, status Status, limit, offset int) ([]Session, int, error) {
	var matched []Session
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		matched = append(matched, s)
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *mockRepository) GetByID(_ context.Context, sessionID, userID string) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (m *mockRepository) Touch(_ context.Context, sessionID string, at time.Time) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.LastActiveAt = at
		m.sessions[sessionID] = s
	}
	return nil
}

func (m *mockRepository) Revoke(_ context.Context, sessionID, userID string, at time.Time) (bool, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID || s.Status != StatusActive {
		return false, nil
	}
	s.Status = StatusRevoked
	s.RevokedAt = &at
	m.sessions[sessionID] = s
	return true, nil
}

func (m *mockRepository) RevokeAll(_ context.Context, userID, excludeSessionID string, at time.Time) (int64, error) {
	var affected int64
	for id, s := range m.sessions {
		if s.UserID != userID || s.Status != StatusActive || id == excludeSessionID {
			continue
		}
		s.Status = StatusRevoked
		s.RevokedAt = &at
		m.sessions[id] = s
		affected++
	}
	return affected, nil
}

func (m *mockRepository) RevokeByDeviceType(_ context.Context, userID, deviceType string, at time.Time) (int64, error) {
	var affected int64
	for id, s := range m.sessions {
		if s.UserID != userID || s.DeviceInfo != deviceType || s.Status != StatusActive {
			continue
		}
		s.Status = StatusRevoked
		s.RevokedAt = &at
		m.sessions[id] = s
		affected++
	}
	return affected, nil
}

func (m *mockRepository) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	var affected int64
	for id, s := range m.sessions {
		if s.Status != StatusActive || s.ExpiresAt.After(now) {
			continue
		}
		s.Status = StatusExpired
		m.sessions[id] = s
		affected++
	}
	return affected, nil
}

func (m *mockRepository) CountActive(_ context.Context, userID string, now time.Time) (int, error) {
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.Status == StatusActive && s.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

var _ Repository = (*mockRepository)(nil)

func TestCreateThenValidate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	sess, err := svc.Create(context.Background(), "u1", Metadata{IPAddress: "203.0.113.9", UserAgent: "cli", DeviceInfo: "desktop"})
	require.NoError(t, err)
	assert.Len(t, sess.Token, TokenLength)
	assert.Equal(t, StatusActive, sess.Status)
	assert.Equal(t, "203.0.113.9", sess.IPAddress)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), sess.ExpiresAt, time.Minute)

	owned, err := svc.Validate(context.Background(), sess.Token)
	require.NoError(t, err)
	require.NotNil(t, owned)
	assert.Equal(t, sess.ID, owned.ID)
	assert.Equal(t, "u1", owned.UserID)
	assert.Equal(t, "user", owned.OwnerRole)
}

func TestValidateEmptyTokenSkipsLookup(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	owned, err := svc.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, owned)
	assert.Zero(t, repo.calls, "empty token must not hit the repository")
}

func TestValidateUnknownToken(t *testing.T) {
	svc := NewService(newMockRepository(), time.Hour, nil)

	owned, err := svc.Validate(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Nil(t, owned)
}

func TestValidateRejectsTimeExpiredActiveRow(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	// Sweep hasn't run yet: the row still says active but the clock has passed.
	repo.sessions["s1"] = Session{
		ID: "s1", UserID: "u1", Token: "stale-token", Status: StatusActive,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	owned, err := svc.Validate(context.Background(), "stale-token")
	require.NoError(t, err)
	assert.Nil(t, owned)
	// Validation never rewrites the row; only the sweep does.
	assert.Equal(t, StatusActive, repo.sessions["s1"].Status)
}

func TestRevokeThenValidate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	sess, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)

	ok, err := svc.Revoke(context.Background(), sess.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	owned, err := svc.Validate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Nil(t, owned)

	// Second revoke finds nothing active to change.
	ok, err = svc.Revoke(context.Background(), sess.ID, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokeWrongOwnerLeavesSessionActive(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	sess, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)

	ok, err := svc.Revoke(context.Background(), sess.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StatusActive, repo.sessions[sess.ID].Status)
}

func TestRevokeAllSparesCurrentSession(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	var current *Session
	for i := 0; i < 3; i++ {
		sess, err := svc.Create(context.Background(), "u1", Metadata{})
		require.NoError(t, err)
		current = sess
	}
	other, err := svc.Create(context.Background(), "u2", Metadata{})
	require.NoError(t, err)

	affected, err := svc.RevokeAll(context.Background(), "u1", current.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	count, err := svc.CountActive(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Another user's sessions are untouched.
	assert.Equal(t, StatusActive, repo.sessions[other.ID].Status)
}

func TestRevokeByDeviceType(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	_, err := svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "mobile"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "mobile"})
	require.NoError(t, err)
	desktop, err := svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "desktop"})
	require.NoError(t, err)

	affected, err := svc.RevokeByDeviceType(context.Background(), "u1", "mobile")
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)
	assert.Equal(t, StatusActive, repo.sessions[desktop.ID].Status)
}

func TestListMasksTokens(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	sess, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)

	rows, page, err := svc.List(context.Background(), "u1", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, MaskToken(sess.Token), rows[0].Token)
	assert.Len(t, rows[0].Token, 19)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	// The stored row keeps the raw token; only the view is masked.
	assert.Len(t, repo.sessions[sess.ID].Token, TokenLength)
}

func TestListStatusFilter(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	active, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)
	revoked, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)
	_, err = svc.Revoke(context.Background(), revoked.ID, "u1")
	require.NoError(t, err)

	rows, _, err := svc.List(context.Background(), "u1", "", 1, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1, "default filter shows active only")
	assert.Equal(t, active.ID, rows[0].ID)

	rows, page, err := svc.List(context.Background(), "u1", StatusFilterAll, 1, 20)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, page.Total)

	rows, _, err = svc.List(context.Background(), "u1", string(StatusRevoked), 1, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, revoked.ID, rows[0].ID)
}

func TestGetByIDOwnerScoped(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	sess, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), sess.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, MaskToken(sess.Token), got.Token)

	// A different owner sees nothing, not an error.
	got, err = svc.GetByID(context.Background(), sess.ID, "u2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCleanupExpired(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)

	now := time.Now().UTC()
	repo.sessions["old"] = Session{ID: "old", UserID: "u1", Token: "t-old", Status: StatusActive, ExpiresAt: now.Add(-time.Hour)}
	repo.sessions["live"] = Session{ID: "live", UserID: "u1", Token: "t-live", Status: StatusActive, ExpiresAt: now.Add(time.Hour)}
	revokedAt := now.Add(-2 * time.Hour)
	repo.sessions["gone"] = Session{ID: "gone", UserID: "u1", Token: "t-gone", Status: StatusRevoked, RevokedAt: &revokedAt, ExpiresAt: now.Add(-time.Hour)}

	affected, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	assert.Equal(t, StatusExpired, repo.sessions["old"].Status)
	assert.Equal(t, StatusActive, repo.sessions["live"].Status)
	// Revoked stays revoked: terminal states never transition.
	assert.Equal(t, StatusRevoked, repo.sessions["gone"].Status)

	// Idempotent.
	affected, err = svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestNewServiceDefaultsLifetime(t *testing.T) {
	svc := NewService(newMockRepository(), 0, nil)
	assert.Equal(t, DefaultLifetime, svc.Lifetime())
}
