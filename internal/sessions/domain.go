package sessions

import "time"

// Status tracks the session lifecycle. Both non-active states are terminal;
// a revoked or expired token is permanently dead.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// DefaultLifetime is the session validity window applied when no explicit
// lifetime is configured.
const DefaultLifetime = 7 * 24 * time.Hour

// Session represents one authenticated device/client binding.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Token        string     `json:"session_token"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	DeviceInfo   string     `json:"device_info,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// Metadata carries optional provenance recorded at session creation and
// never mutated afterwards.
type Metadata struct {
	IPAddress  string
	UserAgent  string
	DeviceInfo string
}

// OwnedSession pairs a session row with its owner's role, as produced by the
// token lookup join. The role feeds the authenticated principal.
type OwnedSession struct {
	Session
	OwnerRole string `json:"-"`
}
