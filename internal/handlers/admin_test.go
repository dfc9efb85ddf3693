package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

// --- Stub service ---

type stubAdminService struct {
	err        error
	lastQuery  dto.UserListQuery
	lastUID    string
	lastCardID string
	lastTxID   string
	lastCreate dto.AdminCreateUserRequest
	lastUpdate dto.AdminUpdateUserRequest
	lastCard   dto.AdminCardRequest
	lastTx     dto.AdminTransactionRequest
	deleted    []string
}

func (s *stubAdminService) ListUsers(_ context.Context, q dto.UserListQuery) (dto.UserPage, error) {
	s.lastQuery = q
	return dto.UserPage{Page: q.Page}, s.err
}

func (s *stubAdminService) GetUser(_ context.Context, uid string) (*models.User, error) {
	s.lastUID = uid
	return &models.User{UID: uid}, s.err
}

func (s *stubAdminService) CreateUser(_ context.Context, req dto.AdminCreateUserRequest) (*models.User, error) {
	s.lastCreate = req
	return &models.User{UID: "new"}, s.err
}

func (s *stubAdminService) UpdateUser(_ context.Context, uid string, req dto.AdminUpdateUserRequest) (*models.User, error) {
	s.lastUID = uid
	s.lastUpdate = req
	return &models.User{UID: uid}, s.err
}

func (s *stubAdminService) DeleteUser(_ context.Context, uid string) error {
	s.deleted = append(s.deleted, "user:"+uid)
	return s.err
}

func (s *stubAdminService) AddCard(_ context.Context, uid string, req dto.AdminCardRequest) (models.Card, error) {
	s.lastUID = uid
	s.lastCard = req
	return models.Card{ID: "c1"}, s.err
}

func (s *stubAdminService) UpdateCard(_ context.Context, uid, cardID string, req dto.AdminCardRequest) (models.Card, error) {
	s.lastUID, s.lastCardID, s.lastCard = uid, cardID, req
	return models.Card{ID: cardID}, s.err
}

func (s *stubAdminService) DeleteCard(_ context.Context, uid, cardID string) error {
	s.deleted = append(s.deleted, "card:"+uid+"/"+cardID)
	return s.err
}

func (s *stubAdminService) AddTransaction(_ context.Context, uid string, req dto.AdminTransactionRequest) (models.Transaction, error) {
	s.lastUID = uid
	s.lastTx = req
	return models.Transaction{ID: "t1"}, s.err
}

func (s *stubAdminService) UpdateTransaction(_ context.Context, uid, txID string, req dto.AdminTransactionRequest) (models.Transaction, error) {
	s.lastUID, s.lastTxID, s.lastTx = uid, txID, req
	return models.Transaction{ID: txID}, s.err
}

func (s *stubAdminService) DeleteTransaction(_ context.Context, uid, txID string) error {
	s.deleted = append(s.deleted, "tx:"+uid+"/"+txID)
	return s.err
}

// --- Tests ---

func TestAdminListUsers_ParsesQuery(t *testing.T) {
	svc := &stubAdminService{}
	resp := &stubResponseHandler{}
	h := NewAdminHandlers(&Deps{ResponseHandler: resp, AdminSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/admin/users?search=jane&sort=balance&order=DESC&page=2", nil)
	h.ListUsers(httptest.NewRecorder(), req)

	q := svc.lastQuery
	if q.Search != "jane" || q.SortField != "balance" || !q.SortDesc || q.Page != 2 {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestAdminCreateUser(t *testing.T) {
	svc := &stubAdminService{}
	resp := &stubResponseHandler{}
	h := NewAdminHandlers(&Deps{ResponseHandler: resp, AdminSvc: svc})

	body := `{"email":"ops@example.com","password":"secret1","firstName":"Op","lastName":"Erator","balance":"10.00"}`
	h.CreateUser(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body)))

	if resp.writeSuccessStatus != http.StatusCreated || svc.lastCreate.Balance != "10.00" {
		t.Fatalf("unexpected result: %d %+v", resp.writeSuccessStatus, svc.lastCreate)
	}
}

func TestAdminUpdateUser_PartialBody(t *testing.T) {
	svc := &stubAdminService{}
	resp := &stubResponseHandler{}
	h := NewAdminHandlers(&Deps{ResponseHandler: resp, AdminSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/admin/users/u1", strings.NewReader(`{"balance":12.5}`))
	h.UpdateUser(httptest.NewRecorder(), withChiParam(req, "uid", "u1"))

	if svc.lastUID != "u1" || svc.lastUpdate.Balance == nil || *svc.lastUpdate.Balance != 12.5 || svc.lastUpdate.FirstName != nil {
		t.Fatalf("unexpected update: %+v", svc.lastUpdate)
	}
}

func TestAdminNestedRoutes_UseBothParams(t *testing.T) {
	svc := &stubAdminService{}
	resp := &stubResponseHandler{}
	h := NewAdminHandlers(&Deps{ResponseHandler: resp, AdminSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/admin/users/u1/cards/c9", strings.NewReader(`{"status":"Approved"}`))
	h.UpdateCard(httptest.NewRecorder(), withChiParam(req, "uid", "u1", "cardId", "c9"))
	if svc.lastUID != "u1" || svc.lastCardID != "c9" || svc.lastCard.Status != "Approved" {
		t.Fatalf("unexpected card update: uid=%s card=%s", svc.lastUID, svc.lastCardID)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/users/u1/transactions/t3", nil)
	h.DeleteTransaction(httptest.NewRecorder(), withChiParam(req, "uid", "u1", "txId", "t3"))
	if len(svc.deleted) != 1 || svc.deleted[0] != "tx:u1/t3" {
		t.Fatalf("unexpected deletes: %v", svc.deleted)
	}
}

func TestAdminTransaction_ServiceError(t *testing.T) {
	svc := &stubAdminService{err: errs.NewValidationError("Missing required transaction fields")}
	resp := &stubResponseHandler{}
	h := NewAdminHandlers(&Deps{ResponseHandler: resp, AdminSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/admin/users/u1/transactions", strings.NewReader(`{"type":"manual"}`))
	h.AddTransaction(httptest.NewRecorder(), withChiParam(req, "uid", "u1"))

	if !resp.handleErrorCalled || resp.writeSuccessCalled {
		t.Fatalf("expected error response only")
	}
}
