package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
	"github.com/wallboard/wallboard-server/internal/service"
)

// Auth exposes registration, login and the token lifecycle endpoints.
type Auth struct {
	service *service.Auth
	logger  *logger.Logger
}

func NewAuth(service *service.Auth, logger *logger.Logger) *Auth {
	return &Auth{service: service, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutAllRequest struct {
	UID string `json:"uid"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("body", "must be valid JSON")
	}
	return nil
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.Register(r.Context(), req.Email, req.Password); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Registered"})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if req.RefreshToken == "" {
		WriteError(w, r, h.logger, model.NewValidationError("refreshToken", "must not be empty"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Logout revokes the refresh token presented in the Authorization header.
// It succeeds for tokens that are already dead.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		WriteError(w, r, h.logger, model.NewValidationError("authorization", "must carry the refresh token as Bearer"))
		return
	}

	if err := h.service.Logout(r.Context(), strings.TrimPrefix(raw, "Bearer ")); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Auth) LogoutAll(w http.ResponseWriter, r *http.Request) {
	var req logoutAllRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	uid := strings.ToLower(strings.TrimSpace(req.UID))
	if uid == "" {
		WriteError(w, r, h.logger, model.NewValidationError("uid", "must not be empty"))
		return
	}

	if err := h.service.LogoutAll(r.Context(), uid); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "All refresh tokens revoked for " + uid})
}
