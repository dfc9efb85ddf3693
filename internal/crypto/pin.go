package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/GregMSThompson/banking-backend/internal/errs"
)

// HashPIN returns a bcrypt hash of a PIN.
func HashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.NewEncryptionError("hash pin", err)
	}
	return string(b), nil
}

// ComparePIN reports whether pin matches hash.
func ComparePIN(hash, pin string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// PINVerifier checks a PIN against a single stored hash.
type PINVerifier struct {
	hash string
}

// NewPINVerifier hashes pin once so the plaintext is not kept in memory
// after startup.
func NewPINVerifier(pin string) (*PINVerifier, error) {
	hash, err := HashPIN(pin)
	if err != nil {
		return nil, err
	}
	return &PINVerifier{hash: hash}, nil
}

func (v *PINVerifier) Verify(pin string) bool {
	return ComparePIN(v.hash, pin)
}
