package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/shared"
)

// Notifier delivers security notifications out of band (e.g. a login-alert
// email queued through the job broker). Failures must not block login.
type Notifier interface {
	LoginAlert(ctx context.Context, email, ipAddress, userAgent string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	sessions *sessions.Service
	tokens   *TokenIssuer
	notifier Notifier
}

// NewService constructs a new Service. notifier may be nil.
func NewService(repo Repository, sessionSvc *sessions.Service, tokens *TokenIssuer, notifier Notifier) *Service {
	return &Service{repo: repo, sessions: sessionSvc, tokens: tokens, notifier: notifier}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// LoginResult bundles everything issued by a successful login. The session
// token appears here raw, once; afterwards the store only ever serves it
// masked.
type LoginResult struct {
	User        *User
	Session     *sessions.Session
	AccessToken string
}

// Login authenticates credentials, creates a session and mints an access
// token. A login-alert notification is queued best-effort.
func (s *Service) Login(ctx context.Context, email, password string, meta sessions.Metadata) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		_ = s.notifier.LoginAlert(ctx, user.Email, meta.IPAddress, meta.UserAgent)
	}
	return &LoginResult{User: user, Session: sess, AccessToken: access}, nil
}

// Logout revokes the caller's current session.
func (s *Service) Logout(ctx context.Context, sessionID, userID string) error {
	_, err := s.sessions.Revoke(ctx, sessionID, userID)
	return err
}
