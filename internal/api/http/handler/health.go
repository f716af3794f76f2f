package handler

import (
	"net/http"
	"time"

	"github.com/wallboard/wallboard-server/internal/model"
)

// Health reports liveness and which key-value backend is in use.
type Health struct {
	backend model.BackendKind
}

func NewHealth(backend model.BackendKind) *Health {
	return &Health{backend: backend}
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend"`
	Time    string `json:"time"`
}

func (h *Health) Check(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Backend: string(h.backend),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
