package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// WriteError maps a service error onto an HTTP status and the error
// envelope. Unrecognized errors become an opaque 500; the detail is logged
// with the request id, never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "ERR_VALIDATION",
			Message: "Invalid request",
			Fields:  verr.Fields,
		}})
		return
	}

	var status int
	var code, message string

	switch {
	case errors.Is(err, model.ErrUserExists):
		status, code, message = http.StatusConflict, "ERR_USER_EXISTS", "User exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status, code, message = http.StatusBadRequest, "ERR_BAD_CREDENTIALS", "Invalid credentials"
	case errors.Is(err, model.ErrNoToken):
		status, code, message = http.StatusUnauthorized, "ERR_NO_TOKEN", "Missing Bearer token"
	case errors.Is(err, model.ErrTokenRevoked):
		status, code, message = http.StatusUnauthorized, "ERR_TOKEN_REVOKED", "Refresh token revoked"
	case errors.Is(err, model.ErrBadToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMalformed),
		errors.Is(err, model.ErrBadSignature):
		status, code, message = http.StatusUnauthorized, "ERR_BAD_TOKEN", "Invalid or expired token"
	case errors.Is(err, model.ErrForbidden):
		status, code, message = http.StatusForbidden, "ERR_FORBIDDEN", "Forbidden"
	case errors.Is(err, model.ErrNotFound):
		status, code, message = http.StatusNotFound, "ERR_NOT_FOUND", "Not Found"
	case errors.Is(err, model.ErrStoreUnavailable):
		status, code, message = http.StatusServiceUnavailable, "ERR_STORE_UNAVAILABLE", "Service temporarily unavailable"
	default:
		status, code, message = http.StatusInternalServerError, "ERR_GENERIC", "Internal Server Error"
		log.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err.Error())
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// NotFound is the fallback handler for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{
		Code:    "ERR_NOT_FOUND",
		Message: "Not Found",
	}})
}
