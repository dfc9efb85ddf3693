package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
)

// --- Stub service ---

type stubTransactionService struct {
	startResp   dto.TransactionIntentResponse
	startErr    error
	outcome     dto.TransactionOutcome
	confirmErr  error
	cancelErr   error
	lastUID     string
	lastStart   dto.StartTransactionRequest
	lastIntent  string
	lastPIN     string
	cancelledID string
}

func (s *stubTransactionService) ListActions() []*workflow.Action {
	return workflow.Actions()
}

func (s *stubTransactionService) Start(_ context.Context, uid string, req dto.StartTransactionRequest) (dto.TransactionIntentResponse, error) {
	s.lastUID = uid
	s.lastStart = req
	return s.startResp, s.startErr
}

func (s *stubTransactionService) Confirm(_ context.Context, uid, intentID, pin string) (dto.TransactionOutcome, error) {
	s.lastUID = uid
	s.lastIntent = intentID
	s.lastPIN = pin
	return s.outcome, s.confirmErr
}

func (s *stubTransactionService) Cancel(_ context.Context, _, intentID string) error {
	s.cancelledID = intentID
	return s.cancelErr
}

// --- Tests ---

func TestStartTransaction_OK(t *testing.T) {
	svc := &stubTransactionService{startResp: dto.TransactionIntentResponse{IntentID: "i1", State: "PinPending"}}
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc})

	body := `{"action":"wire_transfer","details":{"amount":"100","recipientName":"Jane Smith"}}`
	req := withUID(httptest.NewRequest(http.MethodPost, "/transactions/intents", strings.NewReader(body)), "uid1")
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.writeSuccessStatus)
	}
	if svc.lastUID != "uid1" || svc.lastStart.Action != "wire_transfer" || svc.lastStart.Details["amount"] != "100" {
		t.Fatalf("service received wrong request: uid=%s req=%+v", svc.lastUID, svc.lastStart)
	}
}

func TestStartTransaction_InvalidJSON(t *testing.T) {
	svc := &stubTransactionService{}
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/transactions/intents", strings.NewReader("{")), "uid1")
	h.Start(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || svc.lastUID != "" {
		t.Fatalf("expected decode error before reaching service")
	}
}

func TestConfirmTransaction_PassesIntentAndPIN(t *testing.T) {
	svc := &stubTransactionService{outcome: dto.TransactionOutcome{IntentID: "i1", State: "Approved", Balance: 400}}
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/transactions/intents/i1/confirm", strings.NewReader(`{"pin":"4456"}`))
	req = withChiParam(withUID(req, "uid1"), "intentId", "i1")
	h.Confirm(httptest.NewRecorder(), req)

	if svc.lastIntent != "i1" || svc.lastPIN != "4456" {
		t.Fatalf("unexpected confirm args: intent=%s pin=%s", svc.lastIntent, svc.lastPIN)
	}
	if resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.writeSuccessStatus)
	}
}

func TestConfirmTransaction_IncorrectPIN(t *testing.T) {
	svc := &stubTransactionService{confirmErr: errs.NewValidationError("Incorrect PIN. Please try again.")}
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/transactions/intents/i1/confirm", strings.NewReader(`{"pin":"0000"}`))
	req = withChiParam(withUID(req, "uid1"), "intentId", "i1")
	h.Confirm(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || resp.writeSuccessCalled {
		t.Fatalf("expected error response only")
	}
}

func TestCancelTransaction(t *testing.T) {
	svc := &stubTransactionService{}
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc})

	req := withChiParam(withUID(httptest.NewRequest(http.MethodDelete, "/transactions/intents/i9", nil), "uid1"), "intentId", "i9")
	h.Cancel(httptest.NewRecorder(), req)

	if svc.cancelledID != "i9" || !resp.writeSuccessCalled {
		t.Fatalf("expected intent i9 cancelled")
	}
}

func TestListActions(t *testing.T) {
	resp := &stubResponseHandler{}
	h := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: &stubTransactionService{}})

	h.ListActions(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/actions", nil))

	actions, ok := resp.writeSuccessData.([]*workflow.Action)
	if !ok || len(actions) != 5 {
		t.Fatalf("expected five actions, got %v", resp.writeSuccessData)
	}
}
