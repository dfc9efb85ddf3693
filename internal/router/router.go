package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GregMSThompson/banking-backend/internal/handlers"
	"github.com/GregMSThompson/banking-backend/internal/metrics"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
)

type Options struct {
	Auth        *middleware.Middleware
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(opts.Metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.StepUpHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	ush := handlers.NewUserHandlers(deps)
	ssh := handlers.NewSessionHandlers(deps)
	oth := handlers.NewOTPHandlers(deps)
	txh := handlers.NewTransactionHandlers(deps)
	hsh := handlers.NewHistoryHandlers(deps)
	cdh := handlers.NewCardHandlers(deps)
	adh := handlers.NewAdminHandlers(deps)
	bkh := handlers.NewBankHandlers(deps)
	dsh := handlers.NewDashboardHandlers(deps)

	// public
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		deps.ResponseHandler.WriteSuccess(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", opts.Metrics.Handler())
	r.Mount("/users", ush.UserRoutes(opts.Auth.FirebaseAuth, opts.Auth.RequireStepUp))

	// signed in
	r.Group(func(r chi.Router) {
		r.Use(opts.Auth.FirebaseAuth)
		r.Mount("/session", ssh.SessionRoutes())
		r.Post("/auth/otp/verify", oth.Verify)

		// signed in and past the one-time code
		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.RequireStepUp)
			r.Get("/dashboard", dsh.GetDashboard)
			r.Get("/actions", txh.ListActions)
			r.Mount("/transactions/intents", txh.IntentRoutes())
			r.Mount("/transactions", hsh.HistoryRoutes())
			r.Get("/transfers/recent", hsh.RecentTransfers)
			r.Mount("/cards", cdh.CardRoutes())
			r.Mount("/banks", bkh.BankRoutes())
		})

		// administrators
		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.RequireAdmin)
			r.Mount("/admin/users", adh.AdminRoutes())
		})
	})

	return r
}
