package handler

import (
	"net/http"

	"github.com/wallboard/wallboard-server/internal/api/http/middleware"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

// Files hands out presigned upload URLs. The storage may be nil when no
// bucket is configured; the endpoint then answers 503.
type Files struct {
	storage model.ObjectStorage
	logger  *logger.Logger
}

func NewFiles(storage model.ObjectStorage, logger *logger.Logger) *Files {
	return &Files{storage: storage, logger: logger}
}

type presignRequest struct {
	Filename string `json:"filename"`
}

type presignResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (h *Files) Presign(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		WriteError(w, r, h.logger, model.ErrStoreUnavailable)
		return
	}

	var req presignRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}
	if req.Filename == "" {
		WriteError(w, r, h.logger, model.NewValidationError("filename", "must not be empty"))
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())

	url, key, err := h.storage.PresignUpload(r.Context(), claims.UID, req.Filename)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, presignResponse{URL: url, Key: key})
}
