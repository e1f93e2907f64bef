package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes single-use login links from session credentials
type TokenType string

const (
	TokenTypeMagicLink TokenType = "magic_link"
	TokenTypeSession   TokenType = "session"
)

// AuthToken is a stored credential. Only the SHA-256 of the raw token is
// persisted; the raw value lives in the email link or the session cookie.
type AuthToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	TokenHash  string     `json:"-" db:"token_hash"`
	TokenType  TokenType  `json:"token_type" db:"token_type"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt     *time.Time `json:"used_at" db:"used_at"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token is past its expiry at now
func (t *AuthToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsed reports whether a magic link was already consumed
func (t *AuthToken) IsUsed() bool {
	return t.UsedAt != nil
}

// RequestMeta describes the client that issued a request
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
