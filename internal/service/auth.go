package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

const minPasswordLength = 6

// Auth implements registration, login and logout on top of the user store
// and the token service.
type Auth struct {
	users        model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(users model.UserStore, hasher model.PasswordHasher, tokenService *TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		users:        users,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// normalizeEmail lowercases and trims the address; it doubles as the uid.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	var verr *model.ValidationError
	if email == "" || !strings.Contains(email, "@") {
		verr = model.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		if verr == nil {
			verr = model.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
		} else {
			verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
		}
	}
	if verr != nil {
		return verr
	}
	return nil
}

// Register creates a new user with the default role.
func (a *Auth) Register(ctx context.Context, email, password string) error {
	uid := normalizeEmail(email)
	a.logger.Debug("Auth service: registering user", "uid", uid)

	if err := validateCredentials(uid, password); err != nil {
		return err
	}

	exists, err := a.users.Exists(ctx, uid)
	if err != nil {
		a.logger.Error("Auth service: failed to check user existence",
			"uid", uid,
			"error", err.Error())
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		a.logger.Info("Auth service: user already exists", "uid", uid)
		return model.ErrUserExists
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = a.users.Put(ctx, model.User{
		UID:          uid,
		PasswordHash: hash,
		Role:         model.DefaultRole,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		a.logger.Error("Auth service: failed to store user",
			"uid", uid,
			"error", err.Error())
		return fmt.Errorf("failed to store user: %w", err)
	}

	a.logger.Info("Auth service: user registered", "uid", uid)
	return nil
}

// Login verifies the credentials and issues a token pair. Unknown users and
// wrong passwords return the same error.
func (a *Auth) Login(ctx context.Context, email, password string) (TokenPair, error) {
	uid := normalizeEmail(email)
	a.logger.Debug("Auth service: logging in user", "uid", uid)

	user, err := a.users.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to get user",
			"uid", uid,
			"error", err.Error())
		return TokenPair{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !a.hasher.Compare(password, user.PasswordHash) {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := a.tokenService.Issue(ctx, uid, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user logged in", "uid", uid)
	return pair, nil
}

// Refresh rotates the presented refresh token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	return a.tokenService.Rotate(ctx, refreshToken)
}

// Logout revokes the presented refresh token. It is idempotent and succeeds
// for tokens that no longer parse.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, refreshToken)
}

// LogoutAll revokes every live refresh token of uid.
func (a *Auth) LogoutAll(ctx context.Context, uid string) error {
	a.logger.Info("Auth service: revoking all sessions", "uid", uid)
	return a.tokenService.RevokeAllForUID(ctx, normalizeEmail(uid))
}
