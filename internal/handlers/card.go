package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
)

type cardService interface {
	ListCards(ctx context.Context, uid string) ([]models.Card, error)
	GetCard(ctx context.Context, uid, cardID string) (models.Card, error)
	RequestCard(ctx context.Context, uid string, req dto.CardRequest) (models.Card, error)
	ToggleBlock(ctx context.Context, uid string) (models.Card, error)
	SetPIN(ctx context.Context, uid string, req dto.CardPINRequest) (models.Card, error)
	SetLimits(ctx context.Context, uid string, req dto.CardLimitsRequest) (models.Card, error)
}

type cardHandlers struct {
	ResponseHandler response.ResponseHandler
	CardSvc         cardService
}

func NewCardHandlers(deps *Deps) *cardHandlers {
	return &cardHandlers{
		ResponseHandler: deps.ResponseHandler,
		CardSvc:         deps.CardSvc,
	}
}

func (h *cardHandlers) CardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCards)
	r.Post("/", h.RequestCard)
	r.Post("/active/block", h.ToggleBlock)
	r.Put("/active/pin", h.SetPIN)
	r.Put("/active/limits", h.SetLimits)
	r.Get("/{cardId}", h.GetCard)
	return r
}

func (h *cardHandlers) ListCards(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	cards, err := h.CardSvc.ListCards(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cards)
}

func (h *cardHandlers) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")
	uid := middleware.UID(r.Context())
	card, err := h.CardSvc.GetCard(r.Context(), uid, cardID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *cardHandlers) RequestCard(w http.ResponseWriter, r *http.Request) {
	var req dto.CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	card, err := h.CardSvc.RequestCard(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, card)
}

func (h *cardHandlers) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	card, err := h.CardSvc.ToggleBlock(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *cardHandlers) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req dto.CardPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	card, err := h.CardSvc.SetPIN(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *cardHandlers) SetLimits(w http.ResponseWriter, r *http.Request) {
	var req dto.CardLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	card, err := h.CardSvc.SetLimits(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}
