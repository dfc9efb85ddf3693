package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	AccountActive    = "Active"
	AccountInactive  = "Inactive"
	AccountSuspended = "Suspended"

	// CurrentSchemaVersion is the shape every user document is migrated to:
	// balance, cards and transactions are always present.
	CurrentSchemaVersion = 1
)

type User struct {
	UID           string `firestore:"uid" json:"uid"`
	Email         string `firestore:"email" json:"email"`
	Role          string `firestore:"role" json:"role"`
	AccountNumber string `firestore:"accountNumber" json:"accountNumber"`
	AccountType   string `firestore:"accountType" json:"accountType"`
	AccountStatus string `firestore:"accountStatus" json:"accountStatus"`

	FirstName    string `firestore:"firstName" json:"firstName"`
	LastName     string `firestore:"lastName" json:"lastName"`
	PhoneNumber  string `firestore:"phoneNumber" json:"phoneNumber"`
	DateOfBirth  string `firestore:"dateOfBirth" json:"dateOfBirth"`
	Address      string `firestore:"address" json:"address"`
	City         string `firestore:"city" json:"city"`
	State        string `firestore:"state" json:"state"`
	ZipCode      string `firestore:"zipCode" json:"zipCode"`
	SSNEncrypted string `firestore:"ssnEncrypted,omitempty" json:"-"`
	SSNLast4     string `firestore:"ssnLast4,omitempty" json:"ssnLast4,omitempty"`
	Image        string `firestore:"image,omitempty" json:"image,omitempty"`

	Balance      float64       `firestore:"balance" json:"balance"`
	Transactions []Transaction `firestore:"transactions" json:"transactions"`
	Cards        []Card        `firestore:"cards" json:"cards"`

	SchemaVersion int       `firestore:"schemaVersion" json:"schemaVersion"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`

	// LastLogin comes from identity-provider metadata and is never stored.
	LastLogin *time.Time `firestore:"-" json:"lastLogin,omitempty"`
}

// Normalize fills the defaults older or partial documents may lack.
func (u *User) Normalize() {
	if u.Transactions == nil {
		u.Transactions = []Transaction{}
	}
	if u.Cards == nil {
		u.Cards = []Card{}
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ActiveCard returns the index of the first Approved card, or -1.
func (u *User) ActiveCard() int {
	for i := range u.Cards {
		if u.Cards[i].Status == CardApproved {
			return i
		}
	}
	return -1
}
