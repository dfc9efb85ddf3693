package models

const (
	TxCompleted = "Completed"
	TxPending   = "Pending"
	TxFailed    = "Failed"
	TxScheduled = "Scheduled"
)

// Transaction is one entry in a user's history array. Amount is signed:
// negative for debits, positive for credits.
type Transaction struct {
	ID               string         `firestore:"id" json:"id"`
	Date             string         `firestore:"date" json:"date"` // RFC3339
	Type             string         `firestore:"type" json:"type"`
	Description      string         `firestore:"description" json:"description"`
	Amount           float64        `firestore:"amount" json:"amount"`
	Status           string         `firestore:"status" json:"status"`
	Category         string         `firestore:"category,omitempty" json:"category,omitempty"`
	RecipientName    string         `firestore:"recipientName,omitempty" json:"recipientName,omitempty"`
	RecipientBank    string         `firestore:"recipientBank,omitempty" json:"recipientBank,omitempty"`
	RecipientAccount string         `firestore:"recipientAccount,omitempty" json:"recipientAccount,omitempty"`
	Reference        string         `firestore:"reference,omitempty" json:"reference,omitempty"`
	Note             string         `firestore:"note,omitempty" json:"note,omitempty"`
	ScheduledDate    string         `firestore:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	IntentID         string         `firestore:"intentId,omitempty" json:"intentId,omitempty"`
	Details          map[string]any `firestore:"details,omitempty" json:"details,omitempty"`
}
