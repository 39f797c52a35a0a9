package domain

import "time"

// DefaultSessionTTL is the lifetime of a session credential.
const DefaultSessionTTL = time.Hour

// Credential holds the verified claims of a session token.
// The token itself is the whole session state; nothing is kept server side.
type Credential struct {
	// Identity is the principal, an email address.
	Identity  string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the credential has expired at now.
func (c *Credential) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// RemainingTTL returns the time left before expiry, never negative.
func (c *Credential) RemainingTTL(now time.Time) time.Duration {
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
