package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/bootstrap"
	identityclient "github.com/GregMSThompson/banking-backend/internal/client/identity"
	"github.com/GregMSThompson/banking-backend/internal/client/objectstore"
	"github.com/GregMSThompson/banking-backend/internal/config"
	"github.com/GregMSThompson/banking-backend/internal/crypto"
	"github.com/GregMSThompson/banking-backend/internal/handlers"
	"github.com/GregMSThompson/banking-backend/internal/metrics"
	"github.com/GregMSThompson/banking-backend/internal/middleware"
	"github.com/GregMSThompson/banking-backend/internal/ratelimit"
	"github.com/GregMSThompson/banking-backend/internal/response"
	"github.com/GregMSThompson/banking-backend/internal/router"
	"github.com/GregMSThompson/banking-backend/internal/services"
	"github.com/GregMSThompson/banking-backend/internal/stepup"
	"github.com/GregMSThompson/banking-backend/internal/store"
)

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	bs.ExitOnError("bootstrap failed", err)
	ctx := context.Background()

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	identity := identityclient.NewAdapter(bs.Firebase)
	images := objectstore.NewAdapter(bs.Storage, cfg.StorageBucket)
	mtr := metrics.New()

	signingKey := cfg.StepUpSigningKey
	if cfg.StepUpSecretName != "" {
		signingKey, err = store.NewSecretsStore(bs.Secrets, cfg.ProjectID).GetSecret(ctx, cfg.StepUpSecretName)
		bs.ExitOnError("failed to load step-up signing key", err)
	}
	signer, err := stepup.NewSigner([]byte(signingKey), cfg.StepUpTTL)
	bs.ExitOnError("invalid step-up signing key", err)

	pin, err := crypto.NewPINVerifier(cfg.TransactionPIN)
	bs.ExitOnError("failed to hash transaction pin", err)
	otp, err := crypto.NewPINVerifier(cfg.OTPCode)
	bs.ExitOnError("failed to hash otp code", err)

	policy := ratelimit.Policy{MaxFailures: cfg.PINMaxAttempts, Window: cfg.PINAttemptWindow}
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(policy)
	if bs.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(bs.Redis, "banking:attempts", policy)
	} else {
		bs.Log.Warn("REDISURL not set, attempt limits are per instance")
	}
	if cfg.DeclineSimulation() {
		bs.Log.Warn("decline simulation enabled, every confirmed transaction will be declined")
	}

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)

	// services
	userv := services.NewUserService(ustore, identity, images, kmsHelper)
	sserv := services.NewSessionService(ustore, identity)
	oserv := services.NewOTPService(otp, limiter, signer, mtr)
	txserv := services.NewTransactionService(ustore, tstore, pin, limiter, mtr, services.TransactionOptions{
		Decline:      cfg.DeclineSimulation(),
		DeclineDelay: cfg.DeclineDelay,
		ResetAfter:   cfg.ResetAfter,
	})
	hserv := services.NewHistoryService(ustore)
	cserv := services.NewCardService(ustore)
	aserv := services.NewAdminService(ustore, identity, kmsHelper)
	bserv := services.NewBankService()
	dserv := services.NewDashboardService(ustore, identity)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.UserSvc = userv
	deps.SessionSvc = sserv
	deps.OTPSvc = oserv
	deps.TransactionSvc = txserv
	deps.HistorySvc = hserv
	deps.CardSvc = cserv
	deps.AdminSvc = aserv
	deps.BankSvc = bserv
	deps.DashboardSvc = dserv

	// router
	r := router.NewRouter(deps, router.Options{
		Auth:        middleware.NewMiddleware(identity, signer, ustore, rh),
		Metrics:     mtr,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-stop.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("graceful shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	bs.ExitOnError("server start failed", err)

	if err := bs.Close(); err != nil {
		bs.Log.Error("failed to close clients", "error", err)
	}
}
