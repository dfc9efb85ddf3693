package dto

import (
	"time"

	"github.com/GregMSThompson/banking-backend/internal/models"
)

// Principal is the identity the auth provider vouches for.
type Principal struct {
	UID       string
	Email     string
	LastLogin *time.Time
}

// SessionState mirrors what every page consumes: the live user, whether the
// first snapshot is still pending, and the listener error if any.
type SessionState struct {
	User    *models.User `json:"user"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	IsAdmin bool         `json:"isAdmin"`
}
