package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

func newHandler() *responseHandler {
	return New(logger.New("error", logger.NewTestHandler))
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	newHandler().WriteSuccess(rr, req, http.StatusCreated, map[string]int{"balance": 400})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store, got %q", rr.Header().Get("Cache-Control"))
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["balance"] != 400 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestWriteSuccessNoContentHasNoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)

	newHandler().WriteSuccess(rr, req, http.StatusNoContent, nil)

	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHandleErrorCarriesRedirect(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cards", nil)

	newHandler().HandleError(rr, req, errs.NewUnauthorizedError("One-time code verification required", "/otp-verification"))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Redirect != "/otp-verification" || body.Code != "unauthorized" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleErrorRateLimitedSetsRetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	newHandler().HandleError(rr, req, errs.NewRateLimitedError("Too many incorrect PIN attempts", 90*time.Second))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("expected Retry-After 90, got %q", got)
	}
}

func TestHandleErrorMalformedJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	var v map[string]any
	err := json.NewDecoder(strings.NewReader("{not-json")).Decode(&v)
	newHandler().HandleError(rr, req, err)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandleErrorHidesInternalCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	newHandler().HandleError(rr, req, errors.New("firestore: connection reset"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "firestore") {
		t.Fatalf("internal cause leaked: %s", rr.Body.String())
	}
}
