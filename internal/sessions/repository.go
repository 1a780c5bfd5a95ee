package sessions

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reachloop/reachloop/internal/shared"
)

// Repository defines persistence operations for session rows. All mutation
// is row-scoped; per-row atomicity comes from conditional UPDATEs, so no
// operation holds a lock across statements.
type Repository interface {
	Insert(ctx context.Context, s Session) error
	FindByToken(ctx context.Context, token string) (*OwnedSession, error)
	ListByUser(ctx context.Context, userID string, status Status, limit, offset int) ([]Session, int, error)
	GetByID(ctx context.Context, sessionID, userID string) (*Session, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	Revoke(ctx context.Context, sessionID, userID string, at time.Time) (bool, error)
	RevokeAll(ctx context.Context, userID, excludeSessionID string, at time.Time) (int64, error)
	RevokeByDeviceType(ctx context.Context, userID, deviceType string, at time.Time) (int64, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	CountActive(ctx context.Context, userID string, now time.Time) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const sessionColumns = `id, user_id, session_token, ip_address, user_agent, device_info, status, created_at, last_active_at, expires_at, revoked_at`

// Insert persists a freshly created session. A duplicate token trips the
// unique index and surfaces as shared.ErrDuplicate.
func (r *PGRepository) Insert(ctx context.Context, s Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, session_token, ip_address, user_agent, device_info, status, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.Token, nullable(s.IPAddress), nullable(s.UserAgent), nullable(s.DeviceInfo),
		string(s.Status), s.CreatedAt, s.LastActiveAt, s.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByToken fetches a session by raw token joined with the owning user.
// The row is returned regardless of stored status; the service layer decides
// validity so a time-expired row still marked active is never honored.
func (r *PGRepository) FindByToken(ctx context.Context, token string) (*OwnedSession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.session_token, s.ip_address, s.user_agent, s.device_info,
		       s.status, s.created_at, s.last_active_at, s.expires_at, s.revoked_at, u.role
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1`,
		token,
	)
	var (
		out        OwnedSession
		ip, ua, di *string
		status     string
	)
	if err := row.Scan(&out.ID, &out.UserID, &out.Token, &ip, &ua, &di,
		&status, &out.CreatedAt, &out.LastActiveAt, &out.ExpiresAt, &out.RevokedAt, &out.OwnerRole); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	out.IPAddress = deref(ip)
	out.UserAgent = deref(ua)
	out.DeviceInfo = deref(di)
	out.Status = Status(status)
	return &out, nil
}

// ListByUser returns one page of a user's sessions ordered by most recent
// activity, plus the unfiltered total for the same status predicate.
func (r *PGRepository) ListByUser(ctx context.Context, userID string, status Status, limit, offset int) ([]Session, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, string(status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_sessions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + sessionColumns + ` FROM user_sessions ` + where +
		` ORDER BY last_active_at DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// GetByID fetches one session scoped to its owner. A session belonging to a
// different user is indistinguishable from a missing one.
func (r *PGRepository) GetByID(ctx context.Context, sessionID, userID string) (*Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM user_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Touch stamps last_active_at.
func (r *PGRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE user_sessions SET last_active_at = $2 WHERE id = $1`, sessionID, at)
	return err
}

// Revoke transitions one owned, still-active session to revoked. Reports
// whether a row actually changed.
func (r *PGRepository) Revoke(ctx context.Context, sessionID, userID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET status = 'revoked', revoked_at = $3
		WHERE id = $1 AND user_id = $2 AND status = 'active'`,
		sessionID, userID, at,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeAll revokes every active session of a user, optionally sparing one.
func (r *PGRepository) RevokeAll(ctx context.Context, userID, excludeSessionID string, at time.Time) (int64, error) {
	query := `UPDATE user_sessions SET status = 'revoked', revoked_at = $2 WHERE user_id = $1 AND status = 'active'`
	args := []any{userID, at}
	if excludeSessionID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeSessionID)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RevokeByDeviceType revokes a user's active sessions for one device tag.
func (r *PGRepository) RevokeByDeviceType(ctx context.Context, userID, deviceType string, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET status = 'revoked', revoked_at = $3
		WHERE user_id = $1 AND device_info = $2 AND status = 'active'`,
		userID, deviceType, at,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkExpired batch-transitions active sessions past their expiry. Idempotent
// and safe to run concurrently with validation: validators check expires_at
// themselves, never the stored status alone.
func (r *PGRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_sessions SET status = 'expired' WHERE status = 'active' AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountActive counts sessions that are active both by status and by clock.
func (r *PGRepository) CountActive(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_sessions WHERE user_id = $1 AND status = 'active' AND expires_at > $2`,
		userID, now).Scan(&count)
	return count, err
}

func scanSession(row pgx.Row) (Session, error) {
	var (
		s          Session
		ip, ua, di *string
		status     string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &ip, &ua, &di,
		&status, &s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt, &s.RevokedAt); err != nil {
		return Session{}, err
	}
	s.IPAddress = deref(ip)
	s.UserAgent = deref(ua)
	s.DeviceInfo = deref(di)
	s.Status = Status(status)
	return s, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

var _ Repository = (*PGRepository)(nil)
