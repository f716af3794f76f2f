package model

import "time"

// AccessClaims is the decoded identity attached to authenticated requests.
type AccessClaims struct {
	UID  string
	Role string
}

// TokenManager signs and verifies access and refresh tokens. It never
// touches the store; registry bookkeeping lives in the token service.
type TokenManager interface {
	GenerateAccessToken(uid, role string) (string, error)
	// GenerateRefreshToken mints a fresh jti and embeds it in the token.
	GenerateRefreshToken(uid string) (token string, jti string, err error)
	// ParseAccessToken fails with ErrTokenExpired, ErrTokenMalformed or
	// ErrBadSignature. Claims missing a uid are rejected as malformed.
	ParseAccessToken(token string) (AccessClaims, error)
	// ParseRefreshToken checks signature and expiry only; it does not
	// consult the store.
	ParseRefreshToken(token string) (uid string, jti string, err error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
