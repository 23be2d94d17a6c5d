package token

import "time"

// Credentials is the persisted credential record: the short-lived access
// token, the long-lived refresh token and the time the pair was issued.
// The refresh token may rotate on every refresh; whatever the
// authorization server returned last is what gets stored.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the record satisfies the storage invariant:
// both tokens non-empty and a usable issue timestamp. Records failing
// this are treated as absent.
func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != "" && c.RefreshToken != "" && !c.CreatedAt.IsZero()
}

// Age returns how long ago the record was issued.
func (c *Credentials) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}
