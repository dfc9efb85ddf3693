package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
)

// --- Stub service ---

type stubDashboardService struct {
	overview dto.DashboardOverview
	err      error
	lastUID  string
}

func (s *stubDashboardService) Overview(_ context.Context, uid string) (dto.DashboardOverview, error) {
	s.lastUID = uid
	return s.overview, s.err
}

// withUID injects a UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParam injects chi URL parameters into the request context.
func withChiParam(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- Tests ---

func TestGetDashboard_OK(t *testing.T) {
	svc := &stubDashboardService{overview: dto.DashboardOverview{DisplayName: "Jane Doe", Balance: 250}}
	resp := &stubResponseHandler{}
	h := NewDashboardHandlers(&Deps{ResponseHandler: resp, DashboardSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "uid1")
	rr := httptest.NewRecorder()
	h.GetDashboard(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastUID != "uid1" {
		t.Fatalf("expected uid1, got %s", svc.lastUID)
	}
	if o := resp.writeSuccessData.(dto.DashboardOverview); o.DisplayName != "Jane Doe" {
		t.Fatalf("unexpected payload: %+v", o)
	}
}

func TestGetDashboard_ServiceError(t *testing.T) {
	svc := &stubDashboardService{err: errors.New("db failure")}
	resp := &stubResponseHandler{}
	h := NewDashboardHandlers(&Deps{ResponseHandler: resp, DashboardSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "uid1")
	rr := httptest.NewRecorder()
	h.GetDashboard(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}
