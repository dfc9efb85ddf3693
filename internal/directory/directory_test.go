package directory

import (
	"testing"

	"github.com/GregMSThompson/banking-backend/internal/errs"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		bank    string
		routing string
		account string
		wantErr string
		holder  string
	}{
		{"missing bank", "", "021000021", "12345678", "Please select a bank", ""},
		{"short routing", "Chase Bank", "0210", "12345678", "Please enter a valid routing number (9 digits)", ""},
		{"non-digit routing", "Chase Bank", "02100002X", "12345678", "Please enter a valid routing number (9 digits)", ""},
		{"short account", "Chase Bank", "021000021", "1234567", "Please enter a valid account number (at least 8 digits)", ""},
		{"unknown bank", "Nowhere Bank", "021000021", "12345678", "Bank details could not be verified. Please check and try again.", ""},
		{"case-insensitive match", " chase bank ", "021000021", "12345678", "", "Jane Smith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Verify(tt.bank, tt.routing, tt.account)
			if tt.wantErr != "" {
				if _, ok := err.(*errs.ValidationError); !ok || err.Error() != tt.wantErr {
					t.Fatalf("expected validation error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.HolderName != tt.holder {
				t.Fatalf("expected holder %s, got %s", tt.holder, b.HolderName)
			}
		})
	}
}

func TestBanksReturnsCopy(t *testing.T) {
	list := Banks()
	if len(list) != 22 {
		t.Fatalf("expected 22 banks, got %d", len(list))
	}
	list[0].Name = "mutated"
	if Banks()[0].Name == "mutated" {
		t.Fatalf("Banks must not expose the backing array")
	}
}
