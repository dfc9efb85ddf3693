package models

import "time"

const (
	CardPending  = "Pending"
	CardApproved = "Approved"
	CardRejected = "Rejected"
)

var CardTypes = []string{
	"Standard Debit Card",
	"Premium Debit Card",
	"Platinum Debit Card",
	"Virtual Debit Card",
	"Credit Card",
}

// Card is one entry in a user's cards array. The full card number and PIN
// are only ever stored encrypted/hashed; CVV is never stored.
type Card struct {
	ID                   string     `firestore:"id" json:"id"`
	CardType             string     `firestore:"cardType" json:"cardType"`
	Status               string     `firestore:"status" json:"status"`
	RequestDate          time.Time  `firestore:"requestDate" json:"requestDate"`
	DeliveryAddress      string     `firestore:"deliveryAddress" json:"deliveryAddress"`
	ContactNumber        string     `firestore:"contactNumber" json:"contactNumber"`
	CardNumberLast4      string     `firestore:"cardNumberLast4,omitempty" json:"cardNumberLast4,omitempty"`
	CardNumberEncrypted  string     `firestore:"cardNumberEncrypted,omitempty" json:"-"`
	ExpiryDate           string     `firestore:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	DailySpendingLimit   int        `firestore:"dailySpendingLimit,omitempty" json:"dailySpendingLimit,omitempty"`
	DailyWithdrawalLimit int        `firestore:"dailyWithdrawalLimit,omitempty" json:"dailyWithdrawalLimit,omitempty"`
	IsBlocked            bool       `firestore:"isBlocked" json:"isBlocked"`
	BlockUpdatedAt       *time.Time `firestore:"blockUpdatedAt,omitempty" json:"blockUpdatedAt,omitempty"`
	PINHash              string     `firestore:"pinHash,omitempty" json:"-"`
	PINUpdatedAt         *time.Time `firestore:"pinUpdatedAt,omitempty" json:"pinUpdatedAt,omitempty"`
	LimitsUpdatedAt      *time.Time `firestore:"limitsUpdatedAt,omitempty" json:"limitsUpdatedAt,omitempty"`
}

func (c Card) HasPIN() bool { return c.PINHash != "" }
