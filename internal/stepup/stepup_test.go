package stepup

import (
	"strings"
	"testing"
	"time"
)

var testKey = []byte(strings.Repeat("k", 32))

func TestIssueAndVerify(t *testing.T) {
	s, err := NewSigner(testKey, time.Hour)
	if err != nil {
		t.Fatalf("NewSigner returned error: %v", err)
	}

	token, expires, err := s.Issue("uid-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %s", expires)
	}
	if err := s.Verify(token, "uid-1"); err != nil {
		t.Fatalf("expected claim to verify: %v", err)
	}
}

func TestVerifyRejectsOtherSubject(t *testing.T) {
	s, _ := NewSigner(testKey, time.Hour)
	token, _, _ := s.Issue("uid-1")

	if err := s.Verify(token, "uid-2"); err != ErrInvalidClaim {
		t.Fatalf("expected ErrInvalidClaim for foreign uid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s, _ := NewSigner(testKey, time.Minute)
	issued := time.Now().Add(-2 * time.Minute)
	s.clockNow = func() time.Time { return issued }
	token, _, _ := s.Issue("uid-1")

	s.clockNow = time.Now
	if err := s.Verify(token, "uid-1"); err != ErrInvalidClaim {
		t.Fatalf("expected expired claim to be rejected, got %v", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	s, _ := NewSigner(testKey, time.Hour)
	other, _ := NewSigner([]byte(strings.Repeat("x", 32)), time.Hour)
	token, _, _ := other.Issue("uid-1")

	if err := s.Verify(token, "uid-1"); err != ErrInvalidClaim {
		t.Fatalf("expected signature mismatch to be rejected, got %v", err)
	}
	if err := s.Verify("not-a-token", "uid-1"); err != ErrInvalidClaim {
		t.Fatalf("expected garbage to be rejected, got %v", err)
	}
}

func TestNewSignerRejectsShortKey(t *testing.T) {
	if _, err := NewSigner([]byte("short"), time.Hour); err == nil {
		t.Fatalf("expected short key to be rejected")
	}
}
