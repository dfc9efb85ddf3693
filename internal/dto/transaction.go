package dto

import (
	"time"

	"github.com/GregMSThompson/banking-backend/internal/models"
)

// StartTransactionRequest submits an action with its form fields. Details
// always carries "amount" next to the action-specific fields.
type StartTransactionRequest struct {
	Action  string            `json:"action"`
	Details map[string]string `json:"details"`
}

type ConfirmTransactionRequest struct {
	PIN string `json:"pin"`
}

type TransactionIntentResponse struct {
	IntentID    string    `json:"intentId"`
	Action      string    `json:"action"`
	ActionName  string    `json:"actionName"`
	State       string    `json:"state"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	PINRequired bool      `json:"pinRequired"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type TransactionOutcome struct {
	IntentID     string              `json:"intentId"`
	State        string              `json:"state"`
	Message      string              `json:"message"`
	Transaction  *models.Transaction `json:"transaction,omitempty"`
	Balance      float64             `json:"balance"`
	ResetAfterMs int64               `json:"resetAfterMs"`
}
