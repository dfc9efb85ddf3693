package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/response"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
)

type transactionService interface {
	ListActions() []*workflow.Action
	Start(ctx context.Context, uid string, req dto.StartTransactionRequest) (dto.TransactionIntentResponse, error)
	Confirm(ctx context.Context, uid, intentID, pin string) (dto.TransactionOutcome, error)
	Cancel(ctx context.Context, uid, intentID string) error
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionSvc  transactionService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionSvc:  deps.TransactionSvc,
	}
}

// IntentRoutes is mounted at /transactions/intents.
func (h *transactionHandlers) IntentRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Post("/{intentId}/confirm", h.Confirm)
	r.Delete("/{intentId}", h.Cancel)
	return r
}

func (h *transactionHandlers) ListActions(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.TransactionSvc.ListActions())
}

func (h *transactionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	intent, err := h.TransactionSvc.Start(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, intent)
}

func (h *transactionHandlers) Confirm(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "intentId")
	var req dto.ConfirmTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	outcome, err := h.TransactionSvc.Confirm(r.Context(), uid, intentID, req.PIN)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, outcome)
}

func (h *transactionHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "intentId")
	uid := middleware.UID(r.Context())
	if err := h.TransactionSvc.Cancel(r.Context(), uid, intentID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
