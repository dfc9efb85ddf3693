package models

import "time"

// Intent is a submitted, validated transaction waiting for its PIN
// challenge. Its ID is the idempotency key of the submission: it commits at
// most once.
type Intent struct {
	ID            string            `firestore:"id" json:"id"`
	UID           string            `firestore:"uid" json:"-"`
	Action        string            `firestore:"action" json:"action"`
	Details       map[string]string `firestore:"details" json:"details"`
	Amount        float64           `firestore:"amount" json:"amount"`
	State         string            `firestore:"state" json:"state"`
	TransactionID string            `firestore:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time         `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `firestore:"updatedAt" json:"updatedAt"`
	ExpiresAt     time.Time         `firestore:"expiresAt" json:"expiresAt"`
}
