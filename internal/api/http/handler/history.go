package handler

import (
	"net/http"
	"strconv"

	"github.com/wallboard/wallboard-server/internal/api/http/middleware"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
	"github.com/wallboard/wallboard-server/internal/service"
)

const (
	maxPage     = 10000
	maxPageSize = 500
)

// History exposes the message wall: cached listing, submission and the
// admin cache reset.
type History struct {
	service *service.History
	logger  *logger.Logger
}

func NewHistory(service *service.History, logger *logger.Logger) *History {
	return &History{service: service, logger: logger}
}

func parsePositiveInt(raw, field string, verr **model.ValidationError) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		addFieldIssue(verr, field, "must be a positive integer")
		return 0
	}
	return n
}

func addFieldIssue(verr **model.ValidationError, field, message string) {
	if *verr == nil {
		*verr = model.NewValidationError(field, message)
	} else {
		(*verr).Add(field, message)
	}
}

func (h *History) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var verr *model.ValidationError
	page := parsePositiveInt(query.Get("page"), "page", &verr)
	pageSize := parsePositiveInt(query.Get("pageSize"), "pageSize", &verr)
	if pageSize == 0 {
		pageSize = parsePositiveInt(query.Get("limit"), "limit", &verr)
	}
	if page > maxPage {
		addFieldIssue(&verr, "page", "must be at most 10000")
	}
	if pageSize > maxPageSize {
		addFieldIssue(&verr, "pageSize", "must be at most 500")
	}
	if verr != nil {
		WriteError(w, r, h.logger, verr)
		return
	}

	payload, hit, err := h.service.List(r.Context(), service.HistoryQuery{
		Page:     page,
		PageSize: pageSize,
		Since:    query.Get("since"),
		Start:    query.Get("start"),
		End:      query.Get("end"),
		Keyword:  query.Get("keyword"),
	})
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, payload)
}

type submitRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	Message string        `json:"message"`
	Item    model.Message `json:"item"`
}

func (h *History) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())

	item, err := h.service.Submit(r.Context(), claims.UID, clientAddr(r), r.UserAgent(), req.Text)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{Message: "Received", Item: item})
}

// Clear drops the cached history payloads. Stored messages stay.
func (h *History) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "History cache cleared"})
}
