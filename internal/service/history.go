package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wallboard/wallboard-server/internal/cache"
	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

const maxMessageLength = 500

// HistoryQuery is a validated history request.
type HistoryQuery struct {
	Page     int
	PageSize int
	Since    string
	Start    string
	End      string
	Keyword  string
}

// HistoryPayload is the cached response shape of a history query.
type HistoryPayload struct {
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Count    int             `json:"count"`
	Items    []model.Message `json:"items"`
}

// History serves filtered, paginated message history through the query
// cache, and invalidates the cache on every write.
type History struct {
	messages model.MessageStore
	cache    *cache.QueryCache
	ttl      time.Duration
	logger   *logger.Logger
}

func NewHistory(messages model.MessageStore, queryCache *cache.QueryCache, ttl time.Duration, logger *logger.Logger) *History {
	return &History{messages: messages, cache: queryCache, ttl: ttl, logger: logger}
}

// List answers the query, read-through. The bool result reports whether the
// payload came from the cache. Cache write failures are logged and the
// response is served anyway.
func (h *History) List(ctx context.Context, q HistoryQuery) (HistoryPayload, bool, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 100
	}

	bounds, err := parseBounds(q)
	if err != nil {
		return HistoryPayload{}, false, err
	}

	key := cache.Fingerprint(cache.Params{
		Page:     strconv.Itoa(q.Page),
		PageSize: strconv.Itoa(q.PageSize),
		Since:    q.Since,
		Start:    q.Start,
		End:      q.End,
		Keyword:  q.Keyword,
	})

	if cached, found, err := h.cache.Get(ctx, key); err != nil {
		h.logger.Error("failed to read history cache", "key", key, "error", err)
	} else if found {
		var payload HistoryPayload
		decodeErr := json.Unmarshal([]byte(cached), &payload)
		if decodeErr == nil {
			return payload, true, nil
		}
		h.logger.Error("failed to decode cached history payload", "key", key, "error", decodeErr)
	}

	// Over-fetch so filters still leave enough rows for the requested page.
	list, err := h.messages.ScanRecent(ctx, q.Page*q.PageSize*3)
	if err != nil {
		return HistoryPayload{}, false, fmt.Errorf("failed to scan messages: %w", err)
	}

	list = filterMessages(list, bounds, q.Keyword)

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	// Keep the last page*pageSize entries, then serve the final pageSize of
	// that window. Page 1 is always the most recent slice.
	window := q.Page * q.PageSize
	if len(list) > window {
		list = list[len(list)-window:]
	}
	start := len(list) - q.PageSize
	if start < 0 {
		start = 0
	}
	items := list[start:]

	payload := HistoryPayload{
		Page:     q.Page,
		PageSize: q.PageSize,
		Count:    len(items),
		Items:    items,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return HistoryPayload{}, false, fmt.Errorf("failed to encode history payload: %w", err)
	}
	if err := h.cache.Put(ctx, key, string(encoded), h.ttl); err != nil {
		h.logger.Error("failed to cache history payload", "key", key, "error", err)
	}

	return payload, false, nil
}

// Submit stores a new message and drops the cache namespace.
func (h *History) Submit(ctx context.Context, uid, ip, userAgent, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, model.NewValidationError("text", "must not be empty")
	}
	if len([]rune(text)) > maxMessageLength {
		return model.Message{}, model.NewValidationError("text", fmt.Sprintf("must be at most %d characters", maxMessageLength))
	}
	if uid == "" {
		uid = "anonymous"
	}

	message := model.Message{
		ID:        uuid.New(),
		Text:      text,
		IP:        ip,
		UserAgent: userAgent,
		UID:       uid,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.messages.Insert(ctx, message); err != nil {
		return model.Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.logger.Error("failed to invalidate history cache after submit", "error", err)
	}

	return message, nil
}

// Clear drops every cached history payload. Stored messages are untouched.
func (h *History) Clear(ctx context.Context) error {
	return h.cache.InvalidateAll(ctx)
}

type timeBounds struct {
	since time.Time
	start time.Time
	end   time.Time
}

func parseBounds(q HistoryQuery) (timeBounds, error) {
	var b timeBounds
	var verr *model.ValidationError

	addIssue := func(field, message string) {
		if verr == nil {
			verr = model.NewValidationError(field, message)
		} else {
			verr.Add(field, message)
		}
	}

	parse := func(raw, field string) time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return time.Time{}
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			addIssue(field, "must be an RFC 3339 timestamp")
			return time.Time{}
		}
		return ts
	}

	b.since = parse(q.Since, "since")
	b.start = parse(q.Start, "start")
	b.end = parse(q.End, "end")

	if !b.start.IsZero() && !b.end.IsZero() && b.start.After(b.end) {
		addIssue("start", "must not be after end")
	}

	if verr != nil {
		return timeBounds{}, verr
	}
	return b, nil
}

func filterMessages(list []model.Message, b timeBounds, keyword string) []model.Message {
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	filtered := make([]model.Message, 0, len(list))
	for _, m := range list {
		if !b.since.IsZero() && m.CreatedAt.Before(b.since) {
			continue
		}
		if !b.start.IsZero() && m.CreatedAt.Before(b.start) {
			continue
		}
		if !b.end.IsZero() && m.CreatedAt.After(b.end) {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(m.Text), keyword) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
