package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

const (
	jtiKeyPrefix    = "rt:jti:"
	uidSetKeyPrefix = "rt:uidset:"
)

func jtiKey(jti string) string {
	return jtiKeyPrefix + jti
}

func uidSetKey(uid string) string {
	return uidSetKeyPrefix + uid
}

// TokenPair is the response payload for login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	AccessTTL    int64  `json:"accessTTL"`
	RefreshToken string `json:"refreshToken"`
	RefreshTTL   int64  `json:"refreshTTL"`
}

// TokenService issues, rotates and revokes token pairs. A refresh token is
// live only while its jti record exists in the store; deleting records is
// the single revocation primitive, so revocation holds across sessions and
// degrades with the store itself.
type TokenService struct {
	manager   model.TokenManager
	store     model.KeyValue
	users     model.UserStore
	logger    *logger.Logger
	rotations singleflight.Group
}

func NewTokenService(manager model.TokenManager, store model.KeyValue, users model.UserStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, users: users, logger: logger}
}

// Issue mints a new access/refresh pair and registers the refresh jti.
func (s *TokenService) Issue(ctx context.Context, uid, role string) (TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(uid, role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(uid)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.allowJTI(ctx, uid, jti); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		AccessTTL:    int64(s.manager.AccessTTL().Seconds()),
		RefreshToken: refresh,
		RefreshTTL:   int64(s.manager.RefreshTTL().Seconds()),
	}, nil
}

// allowJTI records jti as live for uid. The record write and the per-user
// set write are not atomic; the record is written first so a crash between
// the two leaves a rotatable token that merely escapes bulk revocation
// until it expires.
func (s *TokenService) allowJTI(ctx context.Context, uid, jti string) error {
	if err := s.store.SetString(ctx, jtiKey(jti), uid, s.manager.RefreshTTL()); err != nil {
		return fmt.Errorf("register refresh jti: %w", err)
	}
	if _, err := s.store.AddToSet(ctx, uidSetKey(uid), jti); err != nil {
		return fmt.Errorf("index refresh jti: %w", err)
	}
	return nil
}

// Rotate exchanges a live refresh token for a new pair and retires the old
// jti. Concurrent rotations of the same presented token are collapsed into
// one store transaction; every caller gets the same new pair.
func (s *TokenService) Rotate(ctx context.Context, presentedRefresh string) (TokenPair, error) {
	v, err, _ := s.rotations.Do(presentedRefresh, func() (interface{}, error) {
		return s.rotate(ctx, presentedRefresh)
	})
	if err != nil {
		return TokenPair{}, err
	}
	return v.(TokenPair), nil
}

func (s *TokenService) rotate(ctx context.Context, presentedRefresh string) (TokenPair, error) {
	uid, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	storedUID, err := s.store.GetString(ctx, jtiKey(jti))
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			// Unknown jti on a validly signed token means it was already
			// rotated or revoked. Treat as theft, not as a retryable miss.
			return TokenPair{}, model.ErrTokenRevoked
		}
		return TokenPair{}, err
	}
	if storedUID != uid {
		return TokenPair{}, model.ErrTokenRevoked
	}

	// The delete must land even if the caller gives up mid-rotation,
	// otherwise a cancelled request strands a half-rotated registry.
	opCtx := context.WithoutCancel(ctx)

	// Delete-if-present picks exactly one winner when two requests carry
	// the same token past the read above. The loser sees count zero and is
	// told the token is gone.
	deleted, err := s.store.DeleteKeys(opCtx, jtiKey(jti))
	if err != nil {
		return TokenPair{}, err
	}
	if deleted == 0 {
		return TokenPair{}, model.ErrTokenRevoked
	}

	if _, err := s.store.RemoveFromSet(opCtx, uidSetKey(uid), jti); err != nil {
		s.logger.Error("failed to unindex rotated jti", "uid", uid, "error", err)
	}

	role := model.DefaultRole
	user, err := s.users.Get(opCtx, uid)
	if err == nil {
		role = user.Role
	} else if !errors.Is(err, model.ErrNotFound) {
		return TokenPair{}, err
	}

	return s.Issue(opCtx, uid, role)
}

// RevokeJTI retires a single jti. It is idempotent: revoking an unknown or
// already-revoked jti is a no-op.
func (s *TokenService) RevokeJTI(ctx context.Context, jti string) error {
	uid, err := s.store.GetString(ctx, jtiKey(jti))
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.store.RemoveFromSet(ctx, uidSetKey(uid), jti); err != nil {
		s.logger.Error("failed to unindex revoked jti", "uid", uid, "error", err)
	}

	if _, err := s.store.DeleteKeys(ctx, jtiKey(jti)); err != nil {
		return err
	}
	return nil
}

// RevokeByToken parses the presented refresh token and retires its jti.
// Tokens that fail to parse are already dead, so the call succeeds.
func (s *TokenService) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	_, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return nil
	}
	return s.RevokeJTI(ctx, jti)
}

// RevokeAllForUID retires every live refresh token of uid.
func (s *TokenService) RevokeAllForUID(ctx context.Context, uid string) error {
	jtis, err := s.store.SetMembers(ctx, uidSetKey(uid))
	if err != nil {
		return fmt.Errorf("list refresh jtis: %w", err)
	}

	if len(jtis) > 0 {
		keys := make([]string, len(jtis))
		for i, jti := range jtis {
			keys[i] = jtiKey(jti)
		}
		if _, err := s.store.DeleteKeys(ctx, keys...); err != nil {
			return fmt.Errorf("delete refresh jtis: %w", err)
		}
	}

	if _, err := s.store.DeleteKeys(ctx, uidSetKey(uid)); err != nil {
		return fmt.Errorf("delete refresh jti index: %w", err)
	}
	return nil
}
