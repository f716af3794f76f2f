package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrStoreUnavailable signals an I/O failure of the key-value backend.
	// Token rotation and revocation must fail the request when they hit it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrKeyNotFound is returned by the key-value store for absent string keys.
	ErrKeyNotFound = errors.New("key not found")

	ErrNotFound = errors.New("record not found")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNoToken      = errors.New("missing bearer token")
	ErrBadToken     = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenRevoked = errors.New("refresh token revoked")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = message
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
