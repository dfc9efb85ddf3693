package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/response"
)

type otpService interface {
	Verify(ctx context.Context, uid, code string) (dto.StepUpToken, error)
}

type otpHandlers struct {
	ResponseHandler response.ResponseHandler
	OTPSvc          otpService
}

func NewOTPHandlers(deps *Deps) *otpHandlers {
	return &otpHandlers{
		ResponseHandler: deps.ResponseHandler,
		OTPSvc:          deps.OTPSvc,
	}
}

func (h *otpHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	token, err := h.OTPSvc.Verify(r.Context(), middleware.UID(r.Context()), req.Code)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, token)
}
