package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

// --- Stub services ---

type stubSessionService struct {
	user      *models.User
	err       error
	states    []dto.SessionState
	principal dto.Principal
}

func (s *stubSessionService) Current(_ context.Context, p dto.Principal) (*models.User, error) {
	s.principal = p
	return s.user, s.err
}

func (s *stubSessionService) Stream(_ context.Context, p dto.Principal, emit func(dto.SessionState) error) error {
	s.principal = p
	for _, st := range s.states {
		if err := emit(st); err != nil {
			return err
		}
	}
	return nil
}

type stubOTPService struct {
	token   dto.StepUpToken
	err     error
	lastUID string
	code    string
}

func (s *stubOTPService) Verify(_ context.Context, uid, code string) (dto.StepUpToken, error) {
	s.lastUID, s.code = uid, code
	return s.token, s.err
}

// --- Tests ---

func TestSessionCurrent(t *testing.T) {
	svc := &stubSessionService{user: &models.User{UID: "uid1", Role: models.RoleAdmin}}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req = req.WithContext(context.WithValue(withUID(req, "uid1").Context(), middleware.EmailKey, "jane@example.com"))
	h.Current(httptest.NewRecorder(), req)

	if svc.principal.UID != "uid1" || svc.principal.Email != "jane@example.com" {
		t.Fatalf("unexpected principal: %+v", svc.principal)
	}
	state := resp.writeSuccessData.(dto.SessionState)
	if !state.IsAdmin || state.Loading {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestSessionStreamWritesEvents(t *testing.T) {
	svc := &stubSessionService{states: []dto.SessionState{
		{Loading: true},
		{User: &models.User{UID: "uid1"}},
	}}
	resp := &stubResponseHandler{}
	h := NewSessionHandlers(&Deps{ResponseHandler: resp, SessionSvc: svc})

	rr := httptest.NewRecorder()
	h.Stream(rr, withUID(httptest.NewRequest(http.MethodGet, "/session/stream", nil), "uid1"))

	if rr.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", rr.Header().Get("Content-Type"))
	}
	body := rr.Body.String()
	if strings.Count(body, "event: session\n") != 2 || !strings.Contains(body, `"loading":true`) || !strings.Contains(body, `"uid":"uid1"`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
	if !rr.Flushed {
		t.Fatalf("expected events to be flushed")
	}
}

func TestOTPVerify(t *testing.T) {
	svc := &stubOTPService{token: dto.StepUpToken{Token: "signed"}}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	h.Verify(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodPost, "/auth/otp/verify", strings.NewReader(`{"code":"6578"}`)), "uid1"))

	if svc.lastUID != "uid1" || svc.code != "6578" || resp.writeSuccessData.(dto.StepUpToken).Token != "signed" {
		t.Fatalf("unexpected verify call: uid=%s code=%s", svc.lastUID, svc.code)
	}
}

func TestOTPVerify_Invalid(t *testing.T) {
	svc := &stubOTPService{err: errs.NewValidationError("Invalid OTP. Please try again.")}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	h.Verify(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodPost, "/auth/otp/verify", strings.NewReader(`{"code":"1111"}`)), "uid1"))

	if !resp.handleErrorCalled {
		t.Fatalf("expected error to be handled")
	}
}
