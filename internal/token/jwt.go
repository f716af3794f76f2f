package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wallboard/wallboard-server/internal/model"
)

// accessClaims carries the identity embedded in short-lived access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid"`
	Role string `json:"role"`
}

// refreshClaims carries the identity embedded in rotating refresh tokens.
// The jti lives in RegisteredClaims.ID.
type refreshClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// JWT implements model.TokenManager backed by symmetric HMAC with separate
// secrets for access and refresh tokens.
type JWT struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWT creates a new JWT token manager.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWT {
	return &JWT{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateAccessToken creates a short-lived access token embedding uid and role.
func (j *JWT) GenerateAccessToken(uid, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UID:  uid,
		Role: role,
	})

	tokenString, err := token.SignedString([]byte(j.accessSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token and returns its jti.
func (j *JWT) GenerateRefreshToken(uid string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		UID: uid,
	})

	tokenString, err := token.SignedString([]byte(j.refreshSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, jti, nil
}

// ParseAccessToken validates signature and expiry and extracts the claims.
// A decoded token missing the uid is rejected as malformed.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessClaims, error) {
	claims := &accessClaims{}
	if err := j.parse(tokenString, claims, j.accessSecret); err != nil {
		return model.AccessClaims{}, err
	}
	if claims.UID == "" {
		return model.AccessClaims{}, model.ErrTokenMalformed
	}
	return model.AccessClaims{UID: claims.UID, Role: claims.Role}, nil
}

// ParseRefreshToken validates signature and expiry and extracts uid and jti.
// It does not consult the store.
func (j *JWT) ParseRefreshToken(tokenString string) (string, string, error) {
	claims := &refreshClaims{}
	if err := j.parse(tokenString, claims, j.refreshSecret); err != nil {
		return "", "", err
	}
	if claims.UID == "" || claims.ID == "" {
		return "", "", model.ErrTokenMalformed
	}
	return claims.UID, claims.ID, nil
}

// AccessTTL returns the configured access token lifetime.
func (j *JWT) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

func (j *JWT) parse(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return model.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return model.ErrBadSignature
		default:
			return fmt.Errorf("%w: %w", model.ErrTokenMalformed, err)
		}
	}
	if !token.Valid {
		return model.ErrTokenMalformed
	}
	return nil
}
