package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/ratelimit"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

const (
	ScopeOTP = "otp"

	msgOTPIncomplete = "Please enter a complete 4-digit OTP."
	msgOTPInvalid    = "Invalid OTP. Please try again."
	msgTooManyOTP    = "Too many attempts. Please try again later."
)

type codeChecker interface {
	Verify(code string) bool
}

type attemptLimiter interface {
	Check(ctx context.Context, scope, subject string) (ratelimit.Status, error)
	Fail(ctx context.Context, scope, subject string) (ratelimit.Status, error)
	Reset(ctx context.Context, scope, subject string) error
}

type stepUpIssuer interface {
	Issue(uid string) (string, time.Time, error)
}

type attemptRecorder interface {
	FailedAttempt(scope string)
}

type otpService struct {
	code    codeChecker
	limiter attemptLimiter
	signer  stepUpIssuer
	metrics attemptRecorder
}

func NewOTPService(code codeChecker, limiter attemptLimiter, signer stepUpIssuer, metrics attemptRecorder) *otpService {
	return &otpService{
		code:    code,
		limiter: limiter,
		signer:  signer,
		metrics: metrics,
	}
}

// Verify checks the one-time code and issues the step-up claim for uid.
func (s *otpService) Verify(ctx context.Context, uid, code string) (dto.StepUpToken, error) {
	log := logger.FromContext(ctx)

	code = strings.TrimSpace(code)
	if len(code) != 4 || !digitsOnly(code) {
		return dto.StepUpToken{}, errs.NewValidationError(msgOTPIncomplete)
	}

	st, err := s.limiter.Check(ctx, ScopeOTP, uid)
	if err != nil {
		return dto.StepUpToken{}, err
	}
	if st.Locked {
		return dto.StepUpToken{}, errs.NewRateLimitedError(msgTooManyOTP, st.RetryAfter)
	}

	if !s.code.Verify(code) {
		s.metrics.FailedAttempt(ScopeOTP)
		st, err := s.limiter.Fail(ctx, ScopeOTP, uid)
		if err != nil {
			return dto.StepUpToken{}, err
		}
		log.Warn("otp rejected", "failures", st.Failures)
		if st.Locked {
			return dto.StepUpToken{}, errs.NewRateLimitedError(msgTooManyOTP, st.RetryAfter)
		}
		return dto.StepUpToken{}, errs.NewValidationError(msgOTPInvalid)
	}

	if err := s.limiter.Reset(ctx, ScopeOTP, uid); err != nil {
		log.Warn("failed to reset otp attempts", "error", err)
	}

	token, expires, err := s.signer.Issue(uid)
	if err != nil {
		return dto.StepUpToken{}, err
	}
	log.Info("step-up verified")
	return dto.StepUpToken{Token: token, ExpiresAt: expires}, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
