package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
)

type bankService interface {
	ListBanks(ctx context.Context) []models.Bank
	VerifyRecipient(ctx context.Context, req dto.VerifyRecipientRequest) (dto.VerifiedRecipient, error)
}

type bankHandlers struct {
	ResponseHandler response.ResponseHandler
	BankSvc         bankService
}

func NewBankHandlers(deps *Deps) *bankHandlers {
	return &bankHandlers{
		ResponseHandler: deps.ResponseHandler,
		BankSvc:         deps.BankSvc,
	}
}

func (h *bankHandlers) BankRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBanks)
	r.Post("/verify", h.VerifyRecipient)
	return r
}

func (h *bankHandlers) ListBanks(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.BankSvc.ListBanks(r.Context()))
}

func (h *bankHandlers) VerifyRecipient(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	recipient, err := h.BankSvc.VerifyRecipient(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, recipient)
}
