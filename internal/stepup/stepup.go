// Package stepup issues and verifies the signed claim proving a user passed
// the one-time-code check after signing in.
package stepup

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const purposeOTP = "otp"

var ErrInvalidClaim = errors.New("step-up claim invalid or expired")

type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type Signer struct {
	key      []byte
	ttl      time.Duration
	issuer   string
	clockNow func() time.Time
}

func NewSigner(key []byte, ttl time.Duration) (*Signer, error) {
	if len(key) < 32 {
		return nil, errors.New("step-up signing key must be at least 32 bytes")
	}
	return &Signer{key: key, ttl: ttl, issuer: "banking-api", clockNow: time.Now}, nil
}

// Issue signs a claim bound to uid.
func (s *Signer) Issue(uid string) (string, time.Time, error) {
	now := s.clockNow()
	expires := now.Add(s.ttl)
	claims := Claims{
		Purpose: purposeOTP,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify checks signature, expiry, purpose and that the claim belongs to uid.
func (s *Signer) Verify(tokenString, uid string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.clockNow), jwt.WithExpirationRequired())
	if err != nil {
		return ErrInvalidClaim
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purposeOTP || claims.Subject != uid {
		return ErrInvalidClaim
	}
	return nil
}
