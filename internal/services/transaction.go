package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

const (
	ScopeTransactionPIN = "txpin"

	intentExpired = "Expired"

	msgAlreadyProcessed = "This transaction has already been processed"
	msgIntentExpired    = "This transaction has expired. Please start again."
	msgTooManyPIN       = "Too many incorrect PIN attempts. Please try again later."
)

type userTSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type intentTSStore interface {
	CreateIntent(ctx context.Context, intent *models.Intent) error
	GetIntent(ctx context.Context, uid, id string) (*models.Intent, error)
	SetIntentState(ctx context.Context, uid, id, state string) error
	DeleteIntent(ctx context.Context, uid, id string) error
	Ledger(uid, intentID string) workflow.Ledger
}

type outcomeRecorder interface {
	WorkflowOutcome(action, outcome string)
	FailedAttempt(scope string)
}

// TransactionOptions are the workflow settings taken from config.
type TransactionOptions struct {
	Decline      bool
	DeclineDelay time.Duration
	ResetAfter   time.Duration
	IntentTTL    time.Duration
}

type transactionService struct {
	users   userTSStore
	intents intentTSStore
	pin     workflow.PINChecker
	limiter attemptLimiter
	metrics outcomeRecorder
	opts    TransactionOptions

	clockNow func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewTransactionService(users userTSStore, intents intentTSStore, pin workflow.PINChecker, limiter attemptLimiter, metrics outcomeRecorder, opts TransactionOptions) *transactionService {
	if opts.IntentTTL <= 0 {
		opts.IntentTTL = 15 * time.Minute
	}
	return &transactionService{
		users:    users,
		intents:  intents,
		pin:      pin,
		limiter:  limiter,
		metrics:  metrics,
		opts:     opts,
		clockNow: time.Now,
		sleep:    sleepCtx,
	}
}

func (s *transactionService) ListActions() []*workflow.Action {
	return workflow.Actions()
}

// Start runs selection and validation against the current balance and
// persists the submission as a pending intent awaiting its PIN.
func (s *transactionService) Start(ctx context.Context, uid string, req dto.StartTransactionRequest) (dto.TransactionIntentResponse, error) {
	log := logger.FromContext(ctx)

	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return dto.TransactionIntentResponse{}, err
	}

	flow := workflow.NewFlow(s.pin)
	if err := flow.Select(req.Action); err != nil {
		return dto.TransactionIntentResponse{}, err
	}
	if err := flow.Submit(workflow.Details(req.Details), decimal.NewFromFloat(u.Balance)); err != nil {
		s.metrics.WorkflowOutcome(req.Action, "rejected")
		log.Info("transaction details rejected", "action", req.Action, "reason", err.Error())
		return dto.TransactionIntentResponse{}, err
	}

	now := s.clockNow().UTC()
	details := flow.Details()
	details["amount"] = flow.Amount().String()
	intent := &models.Intent{
		ID:        uuid.NewString(),
		UID:       uid,
		Action:    flow.Action().ID,
		Details:   details,
		Amount:    flow.Amount().InexactFloat64(),
		State:     string(flow.State()),
		ExpiresAt: now.Add(s.opts.IntentTTL),
	}
	if err := s.intents.CreateIntent(ctx, intent); err != nil {
		return dto.TransactionIntentResponse{}, err
	}

	log.Info("transaction intent created", "intent_id", intent.ID, "action", intent.Action)
	return dto.TransactionIntentResponse{
		IntentID:    intent.ID,
		Action:      intent.Action,
		ActionName:  flow.Action().Name,
		State:       intent.State,
		Amount:      intent.Amount,
		Description: flow.Action().Describe(details),
		PINRequired: true,
		ExpiresAt:   intent.ExpiresAt,
	}, nil
}

// Confirm answers the PIN challenge for a pending intent and commits it.
func (s *transactionService) Confirm(ctx context.Context, uid, intentID, pin string) (dto.TransactionOutcome, error) {
	log := logger.FromContext(ctx).With("intent_id", intentID)

	intent, err := s.intents.GetIntent(ctx, uid, intentID)
	if err != nil {
		return dto.TransactionOutcome{}, err
	}
	if intent.State != string(workflow.StatePinPending) {
		return dto.TransactionOutcome{}, errs.NewValidationError(msgAlreadyProcessed)
	}
	if !intent.ExpiresAt.IsZero() && s.clockNow().After(intent.ExpiresAt) {
		if err := s.intents.SetIntentState(ctx, uid, intentID, intentExpired); err != nil {
			log.Warn("failed to expire intent", "error", err)
		}
		return dto.TransactionOutcome{}, errs.NewValidationError(msgIntentExpired)
	}

	st, err := s.limiter.Check(ctx, ScopeTransactionPIN, uid)
	if err != nil {
		return dto.TransactionOutcome{}, err
	}
	if st.Locked {
		return dto.TransactionOutcome{}, errs.NewRateLimitedError(msgTooManyPIN, st.RetryAfter)
	}

	action, ok := workflow.Lookup(intent.Action)
	if !ok {
		return dto.TransactionOutcome{}, errs.NewValidationError("Unknown transaction type")
	}
	amount, err := workflow.ParseAmount(intent.Details["amount"])
	if err != nil {
		amount = decimal.NewFromFloat(intent.Amount)
	}
	flow := workflow.Resume(intent.ID, action, workflow.Details(intent.Details), amount, s.pin)

	out, err := flow.Confirm(ctx, pin, s.intents.Ledger(uid, intent.ID), s.opts.Decline)
	if err != nil {
		return dto.TransactionOutcome{}, s.confirmFailed(ctx, uid, intent, err)
	}
	if err := s.limiter.Reset(ctx, ScopeTransactionPIN, uid); err != nil {
		log.Warn("failed to reset pin attempts", "error", err)
	}

	if out.State == workflow.StateDeclined {
		if err := s.sleep(ctx, s.opts.DeclineDelay); err != nil {
			return dto.TransactionOutcome{}, err
		}
		if err := s.intents.SetIntentState(ctx, uid, intent.ID, string(workflow.StateDeclined)); err != nil {
			log.Warn("failed to record declined intent", "error", err)
		}
		s.metrics.WorkflowOutcome(intent.Action, "declined")
		log.Info("transaction declined")

		result := dto.TransactionOutcome{
			IntentID:     intent.ID,
			State:        string(out.State),
			Message:      out.Message,
			ResetAfterMs: s.opts.ResetAfter.Milliseconds(),
		}
		if u, err := s.users.GetUser(ctx, uid); err == nil {
			result.Balance = u.Balance
		}
		return result, nil
	}

	outcome := "approved"
	if !out.Commit.AffectsBalance {
		outcome = "scheduled"
	}
	s.metrics.WorkflowOutcome(intent.Action, outcome)
	log.Info("transaction committed", "transaction_id", out.Commit.Transaction.ID, "outcome", outcome)

	tx := out.Commit.Transaction
	return dto.TransactionOutcome{
		IntentID:     intent.ID,
		State:        string(out.State),
		Message:      out.Message,
		Transaction:  &tx,
		Balance:      out.Commit.NewBalance.InexactFloat64(),
		ResetAfterMs: s.opts.ResetAfter.Milliseconds(),
	}, nil
}

func (s *transactionService) confirmFailed(ctx context.Context, uid string, intent *models.Intent, err error) error {
	log := logger.FromContext(ctx).With("intent_id", intent.ID)

	if errors.Is(err, workflow.ErrIncorrectPIN) {
		s.metrics.FailedAttempt(ScopeTransactionPIN)
		st, lerr := s.limiter.Fail(ctx, ScopeTransactionPIN, uid)
		if lerr != nil {
			return lerr
		}
		log.Warn("incorrect transaction pin", "failures", st.Failures)
		if st.Locked {
			return errs.NewRateLimitedError(msgTooManyPIN, st.RetryAfter)
		}
		return err
	}

	var failed *errs.OperationFailedError
	if errors.As(err, &failed) {
		// intent stays PinPending so the user can resubmit
		s.metrics.WorkflowOutcome(intent.Action, "failed")
		log.Error("transaction commit failed", "error", failed.Err)
		return err
	}

	var ve *errs.ValidationError
	if errors.As(err, &ve) && ve.Message != msgAlreadyProcessed {
		if serr := s.intents.SetIntentState(ctx, uid, intent.ID, string(workflow.StateActionSelected)); serr != nil {
			log.Warn("failed to reopen intent", "error", serr)
		}
		s.metrics.WorkflowOutcome(intent.Action, "rejected")
	}
	return err
}

// Cancel abandons a pending intent.
func (s *transactionService) Cancel(ctx context.Context, uid, intentID string) error {
	intent, err := s.intents.GetIntent(ctx, uid, intentID)
	if err != nil {
		return err
	}
	if intent.State == string(workflow.StateApproved) {
		return errs.NewValidationError(msgAlreadyProcessed)
	}
	if err := s.intents.DeleteIntent(ctx, uid, intentID); err != nil {
		return err
	}
	s.metrics.WorkflowOutcome(intent.Action, "cancelled")
	logger.FromContext(ctx).Info("transaction intent cancelled", "intent_id", intentID)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
