package influencers

import "time"

// Influencer is a creator profile managed by the platform.
type Influencer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle"`
	Platform  string    `json:"platform"`
	Followers int64     `json:"followers"`
	Niche     string    `json:"niche,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
