package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/guard"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/response"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

const StepUpHeader = "X-Step-Up-Token"

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (dto.Principal, error)
}

type stepUpVerifier interface {
	Verify(token, uid string) error
}

type roleReader interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type Middleware struct {
	Verifier        tokenVerifier
	StepUp          stepUpVerifier
	Users           roleReader
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(verifier tokenVerifier, stepUp stepUpVerifier, users roleReader, rh response.ResponseHandler) *Middleware {
	return &Middleware{
		Verifier:        verifier,
		StepUp:          stepUp,
		Users:           users,
		ResponseHandler: rh,
	}
}

// context key
type contextKey string

const (
	UIDKey   contextKey = "uid"
	EmailKey contextKey = "email"
)

// FirebaseAuth verifies the bearer ID token and stores the principal in the
// request context.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.deny(w, r, guard.Decision{Outcome: guard.Redirect, Route: guard.RouteEntry}, "Missing Authorization header")
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.deny(w, r, guard.Decision{Outcome: guard.Redirect, Route: guard.RouteEntry}, "Invalid Authorization header")
			return
		}

		p, err := m.Verifier.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			m.ResponseHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, p.UID)
		ctx = context.WithValue(ctx, EmailKey, p.Email)
		_, ctx = logger.With(ctx, "uid", p.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStepUp admits callers holding a valid one-time-code claim for the
// authenticated uid.
func (m *Middleware) RequireStepUp(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := UID(r.Context())
		token := strings.TrimSpace(r.Header.Get(StepUpHeader))
		verified := token != "" && m.StepUp.Verify(token, uid) == nil

		d := guard.StepUp(guard.Input{Authenticated: uid != "", StepUpVerified: verified})
		if d.Outcome != guard.Allow {
			m.deny(w, r, d, "One-time code verification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits callers whose user document carries the admin role.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := UID(r.Context())
		var role string
		if uid != "" {
			u, err := m.Users.GetUser(r.Context(), uid)
			if err != nil && !errs.IsNotFound(err) {
				m.ResponseHandler.HandleError(w, r, err)
				return
			}
			if u != nil {
				role = u.Role
			}
		}

		d := guard.Admin(guard.Input{Authenticated: uid != "", Role: role})
		if d.Outcome != guard.Allow {
			m.deny(w, r, d, "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request, d guard.Decision, message string) {
	if d.Route == guard.RouteDashboard {
		m.ResponseHandler.HandleError(w, r, errs.NewForbiddenError(message, d.Route))
		return
	}
	m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError(message, d.Route))
}

// UID returns the authenticated uid, or "".
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// Principal rebuilds the verified identity from the request context.
func Principal(ctx context.Context) dto.Principal {
	return dto.Principal{UID: UID(ctx), Email: Email(ctx)}
}
