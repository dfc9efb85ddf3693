package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/errs"
)

type State string

const (
	StateIdle           State = "Idle"
	StateActionSelected State = "ActionSelected"
	StateDetailsEntered State = "DetailsEntered"
	StatePinPending     State = "PinPending"
	StateApproved       State = "Approved"
	StateDeclined       State = "Declined"
)

// ErrIncorrectPIN is returned by Confirm for a wrong PIN. The flow stays in
// PinPending.
var ErrIncorrectPIN = errs.NewValidationError(MsgIncorrectPIN)

// PINChecker verifies the transaction PIN.
type PINChecker interface {
	Verify(pin string) bool
}

// Ledger applies a planned commit atomically. plan is called with the
// balance read inside the same transaction as the write and may be called
// more than once if the store retries on contention.
type Ledger interface {
	Apply(ctx context.Context, plan func(balance decimal.Decimal) (Commit, error)) (Commit, error)
}

// Outcome is the terminal result of Confirm.
type Outcome struct {
	State   State
	Message string
	Commit  *Commit
}

// Flow is one invocation of the state machine.
type Flow struct {
	ID string

	state   State
	action  *Action
	details Details
	amount  decimal.Decimal
	balance decimal.Decimal

	pin      PINChecker
	clockNow func() time.Time
	newTxID  func() string
}

func NewFlow(pin PINChecker) *Flow {
	return &Flow{
		state:    StateIdle,
		pin:      pin,
		clockNow: time.Now,
		newTxID:  uuid.NewString,
	}
}

// Resume rebuilds a flow that was persisted in PinPending.
func Resume(id string, action *Action, details Details, amount decimal.Decimal, pin PINChecker) *Flow {
	f := NewFlow(pin)
	f.ID = id
	f.state = StatePinPending
	f.action = action
	f.details = details
	f.amount = amount
	return f
}

func (f *Flow) State() State            { return f.state }
func (f *Flow) Action() *Action         { return f.action }
func (f *Flow) Details() Details        { return f.details }
func (f *Flow) Amount() decimal.Decimal { return f.amount }

func (f *Flow) expect(want State) error {
	if f.state != want {
		return errs.NewValidationError(fmt.Sprintf("transaction is %s, expected %s", f.state, want))
	}
	return nil
}

// Select picks the action to run.
func (f *Flow) Select(actionID string) error {
	if err := f.expect(StateIdle); err != nil {
		return err
	}
	a, ok := Lookup(actionID)
	if !ok {
		return errs.NewValidationError("Unknown transaction type")
	}
	f.action = a
	f.state = StateActionSelected
	return nil
}

// Submit validates the entered details against balance. On failure the
// flow returns to ActionSelected so the form can be corrected.
func (f *Flow) Submit(d Details, balance decimal.Decimal) error {
	if err := f.expect(StateActionSelected); err != nil {
		return err
	}
	f.state = StateDetailsEntered

	amount, enriched, err := f.action.Validate(d, balance, f.clockNow())
	if err != nil {
		f.state = StateActionSelected
		return err
	}
	f.amount = amount
	f.details = enriched
	f.balance = balance
	f.state = StatePinPending
	return nil
}

// Confirm answers the PIN challenge. With decline set the commit is skipped
// and the flow ends Declined without touching the ledger.
func (f *Flow) Confirm(ctx context.Context, pin string, ledger Ledger, decline bool) (Outcome, error) {
	if err := f.expect(StatePinPending); err != nil {
		return Outcome{}, err
	}
	if !f.pin.Verify(pin) {
		return Outcome{}, ErrIncorrectPIN
	}

	if decline {
		f.state = StateDeclined
		return Outcome{State: StateDeclined, Message: MsgDeclined}, nil
	}

	txID := f.newTxID()
	c, err := ledger.Apply(ctx, func(balance decimal.Decimal) (Commit, error) {
		return f.action.Plan(f.amount, f.details, balance, txID, f.ID, f.clockNow())
	})
	if err != nil {
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			f.state = StateActionSelected
			return Outcome{}, err
		}
		return Outcome{}, errs.NewOperationFailedError(MsgCommitFailed, err)
	}

	f.state = StateApproved
	msg := MsgApproved
	if !c.AffectsBalance {
		msg = MsgScheduled
	}
	return Outcome{State: StateApproved, Message: msg, Commit: &c}, nil
}

// Reset returns to Idle after a terminal state or a cancellation.
func (f *Flow) Reset() {
	f.state = StateIdle
	f.action = nil
	f.details = nil
	f.amount = decimal.Zero
}
