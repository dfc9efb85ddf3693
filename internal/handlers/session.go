package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type sessionService interface {
	Current(ctx context.Context, p dto.Principal) (*models.User, error)
	Stream(ctx context.Context, p dto.Principal, emit func(dto.SessionState) error) error
}

type sessionHandlers struct {
	ResponseHandler response.ResponseHandler
	SessionSvc      sessionService
}

func NewSessionHandlers(deps *Deps) *sessionHandlers {
	return &sessionHandlers{
		ResponseHandler: deps.ResponseHandler,
		SessionSvc:      deps.SessionSvc,
	}
}

func (h *sessionHandlers) SessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Current)
	r.Get("/stream", h.Stream)
	return r
}

func (h *sessionHandlers) Current(w http.ResponseWriter, r *http.Request) {
	user, err := h.SessionSvc.Current(r.Context(), middleware.Principal(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.SessionState{User: user, IsAdmin: user.IsAdmin()})
}

// Stream pushes one server-sent event per session change until the client
// goes away.
func (h *sessionHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.ResponseHandler.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.SessionSvc.Stream(r.Context(), middleware.Principal(r.Context()), func(state dto.SessionState) error {
		b, err := json.Marshal(state)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && r.Context().Err() == nil {
		logger.FromContext(r.Context()).Warn("session stream ended", "error", err)
	}
}
