package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/history"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/response"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type historyService interface {
	List(ctx context.Context, uid string, q dto.HistoryQuery) (dto.HistoryPage, error)
	Summary(ctx context.Context, uid, period string) (dto.HistorySummary, error)
	Export(ctx context.Context, uid string, q dto.HistoryQuery, w io.Writer) error
	RecentTransfers(ctx context.Context, uid string) (dto.TransferActivity, error)
}

type historyHandlers struct {
	ResponseHandler response.ResponseHandler
	HistorySvc      historyService
	clockNow        func() time.Time
}

func NewHistoryHandlers(deps *Deps) *historyHandlers {
	return &historyHandlers{
		ResponseHandler: deps.ResponseHandler,
		HistorySvc:      deps.HistorySvc,
		clockNow:        time.Now,
	}
}

func (h *historyHandlers) HistoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
	r.Get("/export", h.Export)
	return r
}

func (h *historyHandlers) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	page, err := h.HistorySvc.List(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, page)
}

func (h *historyHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	summary, err := h.HistorySvc.Summary(r.Context(), uid, r.URL.Query().Get("period"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, summary)
}

// Export streams the filtered history as a CSV attachment. Errors found
// before the first byte is written still get a JSON error response.
func (h *historyHandlers) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())

	cw := &lazyCSVWriter{w: w, filename: fmt.Sprintf("transactions-%s.csv", h.clockNow().UTC().Format("2006-01-02"))}
	if err := h.HistorySvc.Export(r.Context(), uid, q, cw); err != nil {
		if cw.started {
			logger.FromContext(r.Context()).Error("csv export interrupted", "error", err)
			return
		}
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if !cw.started {
		cw.writeHeader()
	}
}

func (h *historyHandlers) RecentTransfers(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	activity, err := h.HistorySvc.RecentTransfers(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, activity)
}

// lazyCSVWriter sends the attachment headers on first write.
type lazyCSVWriter struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (c *lazyCSVWriter) writeHeader() {
	c.started = true
	c.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	c.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.filename))
	c.w.WriteHeader(http.StatusOK)
}

func (c *lazyCSVWriter) Write(p []byte) (int, error) {
	if !c.started {
		c.writeHeader()
	}
	return c.w.Write(p)
}

func parseHistoryQuery(v url.Values) (dto.HistoryQuery, error) {
	q := dto.HistoryQuery{
		Search:   v.Get("search"),
		Type:     v.Get("type"),
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
	}
	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, errs.NewValidationError("limit must be a positive number")
		}
		q.Limit = n
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		raw := strings.TrimSpace(v.Get(p.key))
		if raw == "" {
			continue
		}
		t, ok := history.ParseDate(raw)
		if !ok {
			return q, errs.NewValidationError(p.key + " must be a date (YYYY-MM-DD)")
		}
		*p.dst = &t
	}
	return q, nil
}
