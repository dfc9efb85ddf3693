// Package workflow runs the transaction submission flow shared by every
// money-moving action: select an action, enter details, pass the amount and
// field checks, answer the PIN challenge, then commit or decline.
package workflow

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

const (
	MsgInvalidAmount     = "Please enter a valid amount"
	MsgInsufficientFunds = "Insufficient funds"
	MsgIncorrectPIN      = "Incorrect PIN. Please try again."
	MsgCommitFailed      = "Transaction failed. Please try again."
	MsgApproved          = "Transaction Successful"
	MsgScheduled         = "Transfer Scheduled"
	MsgDeclined          = "Transaction Declined"
)

// Details are the submitted form fields, including "amount".
type Details map[string]string

func (d Details) Get(key string) string {
	return strings.TrimSpace(d[key])
}

func (d Details) clone() Details {
	out := make(Details, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Field describes one input of an action's form.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// Action is the declarative descriptor the engine is parameterized by.
type Action struct {
	ID     string
	Name   string
	TxType string
	Min    decimal.Decimal
	Max    decimal.Decimal
	Credit bool
	Fields []Field

	// check validates action-specific fields and may enrich the details
	// (for example with a verified recipient).
	check func(d Details, now time.Time) (Details, error)
	// describe formats the history description.
	describe func(d Details) string
	// extras are type-specific values stored on the transaction.
	extras func(d Details, amount decimal.Decimal) map[string]any
	// scheduled entries are recorded without moving the balance.
	scheduled func(d Details) bool
}

func (a *Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		MinAmount float64 `json:"minAmount"`
		MaxAmount float64 `json:"maxAmount"`
		Credit    bool    `json:"credit"`
		Fields    []Field `json:"fields"`
	}{a.ID, a.Name, a.Min.InexactFloat64(), a.Max.InexactFloat64(), a.Credit, a.Fields})
}

// Validate applies the submission rules in order and returns the first
// failure: amount, minimum, maximum, funds (debits only), then fields.
func (a *Action) Validate(d Details, balance decimal.Decimal, now time.Time) (decimal.Decimal, Details, error) {
	amount, err := ParseAmount(d.Get("amount"))
	if err != nil || !amount.IsPositive() || !wholeCents(amount) {
		return decimal.Zero, nil, errs.NewValidationError(MsgInvalidAmount)
	}
	if amount.LessThan(a.Min) {
		return decimal.Zero, nil, errs.NewValidationError("Minimum amount is $" + a.Min.String())
	}
	if amount.GreaterThan(a.Max) {
		return decimal.Zero, nil, errs.NewValidationError("Maximum amount is $" + a.Max.String())
	}
	if !a.Credit && amount.GreaterThan(balance) {
		return decimal.Zero, nil, errs.NewValidationError(MsgInsufficientFunds)
	}

	enriched := d.clone()
	if a.check != nil {
		if enriched, err = a.check(enriched, now); err != nil {
			return decimal.Zero, nil, err
		}
	}
	return amount, enriched, nil
}

// Delta is the signed amount applied to the balance.
func (a *Action) Delta(amount decimal.Decimal) decimal.Decimal {
	if a.Credit {
		return amount
	}
	return amount.Neg()
}

func (a *Action) IsScheduled(d Details) bool {
	return a.scheduled != nil && a.scheduled(d)
}

func (a *Action) Describe(d Details) string {
	if a.describe == nil {
		return a.Name
	}
	return a.describe(d)
}

// Commit is the planned effect of one approved submission.
type Commit struct {
	Delta          decimal.Decimal
	OldBalance     decimal.Decimal
	NewBalance     decimal.Decimal
	AffectsBalance bool
	Transaction    models.Transaction
}

// Plan computes the commit against a freshly read balance. Funds are
// re-checked here so a stale submission cannot overdraw.
func (a *Action) Plan(amount decimal.Decimal, d Details, balance decimal.Decimal, txID, intentID string, now time.Time) (Commit, error) {
	if !a.Credit && amount.GreaterThan(balance) {
		return Commit{}, errs.NewValidationError(MsgInsufficientFunds)
	}

	delta := a.Delta(amount).Round(2)
	scheduled := a.IsScheduled(d)

	tx := models.Transaction{
		ID:               txID,
		Date:             now.UTC().Format(time.RFC3339),
		Type:             a.TxType,
		Description:      a.Describe(d),
		Amount:           delta.InexactFloat64(),
		Status:           models.TxCompleted,
		RecipientName:    d.Get("recipientName"),
		RecipientBank:    d.Get("recipientBank"),
		RecipientAccount: d.Get("recipientAccount"),
		Reference:        d.Get("reference"),
		Note:             d.Get("note"),
		IntentID:         intentID,
	}
	if a.extras != nil {
		tx.Details = a.extras(d, amount)
	}

	c := Commit{
		Delta:          delta,
		OldBalance:     balance,
		NewBalance:     balance,
		AffectsBalance: !scheduled,
		Transaction:    tx,
	}
	if scheduled {
		c.Transaction.Status = models.TxScheduled
		c.Transaction.ScheduledDate = d.Get("scheduledDate")
	} else {
		c.NewBalance = balance.Add(delta).Round(2)
	}
	return c, nil
}
