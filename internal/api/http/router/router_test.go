package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallboard/wallboard-server/internal/api/http/handler"
	"github.com/wallboard/wallboard-server/internal/api/http/middleware"
	"github.com/wallboard/wallboard-server/internal/cache"
	"github.com/wallboard/wallboard-server/internal/kv"
	"github.com/wallboard/wallboard-server/internal/model"
	"github.com/wallboard/wallboard-server/internal/repository/kvstore"
	"github.com/wallboard/wallboard-server/internal/security"
	"github.com/wallboard/wallboard-server/internal/service"
	"github.com/wallboard/wallboard-server/internal/testutil"
	"github.com/wallboard/wallboard-server/internal/token"
)

// memoryMessages is an in-process MessageStore for end-to-end tests.
type memoryMessages struct {
	items []model.Message
}

func (s *memoryMessages) Insert(_ context.Context, message model.Message) error {
	s.items = append(s.items, message)
	return nil
}

func (s *memoryMessages) ScanRecent(_ context.Context, limit int) ([]model.Message, error) {
	out := make([]model.Message, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

type testEnv struct {
	mux   http.Handler
	users model.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := kv.NewMemory()
	users := kvstore.NewUserRepository(store)
	log := testutil.MakeNoopLogger()
	manager := token.NewJWT("access-secret", "refresh-secret", time.Minute, time.Hour)

	tokenService := service.NewTokenService(manager, store, users, log)
	authService := service.NewAuth(users, security.NewBcrypt(4), tokenService, log)
	queryCache := cache.NewQueryCache(store, log)
	historyService := service.NewHistory(&memoryMessages{}, queryCache, time.Minute, log)

	authLimiter, apiLimiter := NewLimiters(store, 1000, 1000, log)

	mux := New(Deps{
		Auth:         handler.NewAuth(authService, log),
		History:      handler.NewHistory(historyService, log),
		Files:        handler.NewFiles(nil, log),
		Health:       handler.NewHealth(model.BackendMemory),
		Authenticate: middleware.NewAuthenticate(manager, log),
		AuthLimiter:  authLimiter,
		APILimiter:   apiLimiter,
		CORSOrigins:  []string{"http://localhost:5173"},
		Logger:       log,
	})

	return &testEnv{mux: mux, users: users}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodePair(t *testing.T, rec *httptest.ResponseRecorder) service.TokenPair {
	t.Helper()
	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

func TestAuthFlow_EndToEnd(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/login", credentials("a@b.com", "secret1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	t1 := decodePair(t, rec)
	require.NotEmpty(t, t1.AccessToken)
	require.NotEmpty(t, t1.RefreshToken)

	rec = env.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": t1.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	t2 := decodePair(t, rec)
	assert.NotEqual(t, t1.AccessToken, t2.AccessToken)
	assert.NotEqual(t, t1.RefreshToken, t2.RefreshToken)

	// The rotated-out token is permanently dead.
	rec = env.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": t1.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_TOKEN_REVOKED")

	// The replacement still rotates.
	rec = env.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": t2.RefreshToken}, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_USER_EXISTS")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", credentials("not-an-email", "x"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_VALIDATION")
	assert.Contains(t, rec.Body.String(), "email")
	assert.Contains(t, rec.Body.String(), "password")
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", credentials("a@b.com", "wrong-pass"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BAD_CREDENTIALS")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	pair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("a@b.com", "secret1"), nil))

	rec := env.do(t, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing header is the only failure mode.
	rec = env.do(t, http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A dead token still logs out fine.
	rec = env.do(t, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + pair.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutAll_AdminOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/register", credentials("user@b.com", "secret1"), nil)
	userPair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("user@b.com", "secret1"), nil))

	// Promote a second account to admin directly in the store.
	env.do(t, http.MethodPost, "/auth/register", credentials("root@b.com", "secret1"), nil)
	admin, err := env.users.Get(ctx, "root@b.com")
	require.NoError(t, err)
	admin.Role = model.RoleAdmin
	require.NoError(t, env.users.Put(ctx, admin))
	adminPair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("root@b.com", "secret1"), nil))

	body := map[string]string{"uid": "user@b.com"}

	rec := env.do(t, http.MethodPost, "/auth/logout-all", body, map[string]string{
		"Authorization": "Bearer " + userPair.AccessToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/logout-all", body, map[string]string{
		"Authorization": "Bearer " + adminPair.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": userPair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/logout-all", map[string]string{"uid": ""}, map[string]string{
		"Authorization": "Bearer " + adminPair.AccessToken,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_CacheHeader(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	pair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("a@b.com", "secret1"), nil))

	rec := env.do(t, http.MethodPost, "/api/submit", map[string]string{"text": "hello wall"}, map[string]string{
		"Authorization": "Bearer " + pair.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "hello wall")

	rec = env.do(t, http.MethodGet, "/api/history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	// A new submission flushes the cache.
	rec = env.do(t, http.MethodPost, "/api/submit", map[string]string{"text": "another"}, map[string]string{
		"Authorization": "Bearer " + pair.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/history", nil, nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestHistory_InvalidDateRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/history?start=2025-06-02T00:00:00Z&end=2025-06-01T00:00:00Z", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start")
}

func TestHistory_PageOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/history?page=9223372036854775807", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_VALIDATION")
	assert.Contains(t, rec.Body.String(), "page")
}

func TestSubmit_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/submit", map[string]string{"text": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NO_TOKEN")
}

func TestClearHistory_AdminOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/register", credentials("root@b.com", "secret1"), nil)
	admin, err := env.users.Get(ctx, "root@b.com")
	require.NoError(t, err)
	admin.Role = model.RoleAdmin
	require.NoError(t, env.users.Put(ctx, admin))
	pair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("root@b.com", "secret1"), nil))

	rec := env.do(t, http.MethodDelete, "/api/history", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/history", nil, map[string]string{
		"Authorization": "Bearer " + pair.AccessToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPresign_UnconfiguredStorage(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/auth/register", credentials("a@b.com", "secret1"), nil)
	pair := decodePair(t, env.do(t, http.MethodPost, "/auth/login", credentials("a@b.com", "secret1"), nil))

	rec := env.do(t, http.MethodPost, "/file/presign", map[string]string{"filename": "a.png"}, map[string]string{
		"Authorization": "Bearer " + pair.AccessToken,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK      bool   `json:"ok"`
		Backend string `json:"backend"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, string(model.BackendMemory), body.Backend)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
}

func TestRateLimit_AuthEndpoints(t *testing.T) {
	store := kv.NewMemory()
	users := kvstore.NewUserRepository(store)
	log := testutil.MakeNoopLogger()
	manager := token.NewJWT("access-secret", "refresh-secret", time.Minute, time.Hour)
	tokenService := service.NewTokenService(manager, store, users, log)
	authService := service.NewAuth(users, security.NewBcrypt(4), tokenService, log)
	queryCache := cache.NewQueryCache(store, log)
	historyService := service.NewHistory(&memoryMessages{}, queryCache, time.Minute, log)
	authLimiter, apiLimiter := NewLimiters(store, 2, 1000, log)

	env := &testEnv{users: users, mux: New(Deps{
		Auth:         handler.NewAuth(authService, log),
		History:      handler.NewHistory(historyService, log),
		Files:        handler.NewFiles(nil, log),
		Health:       handler.NewHealth(model.BackendMemory),
		Authenticate: middleware.NewAuthenticate(manager, log),
		AuthLimiter:  authLimiter,
		APILimiter:   apiLimiter,
		CORSOrigins:  []string{"http://localhost:5173"},
		Logger:       log,
	})}

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/auth/login", credentials(fmt.Sprintf("u%d@b.com", i), "secret1"), nil)
		assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/auth/login", credentials("u@b.com", "secret1"), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
