package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
)

type adminService interface {
	ListUsers(ctx context.Context, q dto.UserListQuery) (dto.UserPage, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	CreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, uid string, req dto.AdminUpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, uid string) error
	AddCard(ctx context.Context, uid string, req dto.AdminCardRequest) (models.Card, error)
	UpdateCard(ctx context.Context, uid, cardID string, req dto.AdminCardRequest) (models.Card, error)
	DeleteCard(ctx context.Context, uid, cardID string) error
	AddTransaction(ctx context.Context, uid string, req dto.AdminTransactionRequest) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, uid, txID string, req dto.AdminTransactionRequest) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, uid, txID string) error
}

type adminHandlers struct {
	ResponseHandler response.ResponseHandler
	AdminSvc        adminService
}

func NewAdminHandlers(deps *Deps) *adminHandlers {
	return &adminHandlers{
		ResponseHandler: deps.ResponseHandler,
		AdminSvc:        deps.AdminSvc,
	}
}

// AdminRoutes is mounted at /admin/users behind the role gate.
func (h *adminHandlers) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Route("/{uid}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Put("/", h.UpdateUser)
		r.Delete("/", h.DeleteUser)
		r.Post("/cards", h.AddCard)
		r.Put("/cards/{cardId}", h.UpdateCard)
		r.Delete("/cards/{cardId}", h.DeleteCard)
		r.Post("/transactions", h.AddTransaction)
		r.Put("/transactions/{txId}", h.UpdateTransaction)
		r.Delete("/transactions/{txId}", h.DeleteTransaction)
	})
	return r
}

func (h *adminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	page, err := h.AdminSvc.ListUsers(r.Context(), dto.UserListQuery{
		Search:    v.Get("search"),
		SortField: v.Get("sort"),
		SortDesc:  strings.EqualFold(v.Get("order"), "desc"),
		Page:      ParsePage(v.Get("page")),
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, page)
}

func (h *adminHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.AdminSvc.GetUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *adminHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	user, err := h.AdminSvc.CreateUser(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, user)
}

func (h *adminHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	user, err := h.AdminSvc.UpdateUser(r.Context(), chi.URLParam(r, "uid"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}

func (h *adminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.AdminSvc.DeleteUser(r.Context(), chi.URLParam(r, "uid")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *adminHandlers) AddCard(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	card, err := h.AdminSvc.AddCard(r.Context(), chi.URLParam(r, "uid"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, card)
}

func (h *adminHandlers) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	card, err := h.AdminSvc.UpdateCard(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "cardId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, card)
}

func (h *adminHandlers) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.AdminSvc.DeleteCard(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "cardId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *adminHandlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tx, err := h.AdminSvc.AddTransaction(r.Context(), chi.URLParam(r, "uid"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, tx)
}

func (h *adminHandlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tx, err := h.AdminSvc.UpdateTransaction(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "txId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func (h *adminHandlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.AdminSvc.DeleteTransaction(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "txId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
