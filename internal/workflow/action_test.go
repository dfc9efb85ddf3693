package workflow

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func mustAction(t *testing.T, id string) *Action {
	t.Helper()
	a, ok := Lookup(id)
	if !ok {
		t.Fatalf("missing action %s", id)
	}
	return a
}

func TestValidateRuleOrder(t *testing.T) {
	wire := mustAction(t, ActionWireTransfer)

	tests := []struct {
		name    string
		details Details
		balance string
		want    string
	}{
		{"empty amount", Details{}, "500", "Please enter a valid amount"},
		{"non-numeric", Details{"amount": "abc"}, "500", "Please enter a valid amount"},
		{"zero", Details{"amount": "0"}, "500", "Please enter a valid amount"},
		{"negative", Details{"amount": "-5"}, "500", "Please enter a valid amount"},
		{"huge exponent", Details{"amount": "1e30000000"}, "500", "Please enter a valid amount"},
		{"sub-cent", Details{"amount": "100.005"}, "500", "Please enter a valid amount"},
		// band checks run before the funds check
		{"below minimum with no funds", Details{"amount": "50"}, "0", "Minimum amount is $100"},
		{"above maximum", Details{"amount": "50000.01"}, "1000000", "Maximum amount is $50000"},
		// funds before fields
		{"insufficient before fields", Details{"amount": "600"}, "500", "Insufficient funds"},
		{"fields last", Details{"amount": "100"}, "500", "Recipient name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := wire.Validate(tt.details, dec(tt.balance), now)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"250", "250", true},
		{" 99.99 ", "99.99", true},
		{"-12.5", "-12.5", true},
		{"+3", "3", true},
		{"1e3", "", false},
		{"1E30000000", "", false},
		{"0x10", "", false},
		{"1,000", "", false},
		{".5", "", false},
		{"1234567890123456", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.ok != (err == nil) {
			t.Fatalf("ParseAmount(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
		}
		if tt.ok && !got.Equal(dec(tt.want)) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidateAcceptsWholeCents(t *testing.T) {
	a := mustAction(t, ActionPayBills)
	d := validDetails(ActionPayBills)
	d["amount"] = "100.10"
	amount, _, err := a.Validate(d, dec("500"), now)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !amount.Equal(dec("100.1")) {
		t.Fatalf("expected 100.1, got %s", amount)
	}
}

func TestValidateBandEdgesInclusive(t *testing.T) {
	for _, a := range Actions() {
		for _, amount := range []string{a.Min.String(), a.Max.String()} {
			d := validDetails(a.ID)
			d["amount"] = amount
			if _, _, err := a.Validate(d, dec("1000000"), now); err != nil {
				t.Fatalf("%s amount %s: unexpected error %v", a.ID, amount, err)
			}
		}
	}
}

func validDetails(id string) Details {
	switch id {
	case ActionWireTransfer:
		return wireDetails("100")
	case ActionPayBills:
		return Details{"billType": "Utility Bills", "provider": "Electric Company", "accountNumber": "998877"}
	case ActionBuyCrypto:
		return Details{"cryptoType": "btc", "walletAddress": "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"}
	case ActionDeposit:
		return Details{"depositMethod": "ACH Transfer", "bankName": "Chase Bank", "accountNumber": "12345678", "routingNumber": "021000021"}
	default:
		return Details{"bankName": "Wells Fargo", "routingNumber": "121000248", "accountNumber": "55555555"}
	}
}

func TestFieldChecks(t *testing.T) {
	tests := []struct {
		action string
		mutate func(Details)
		want   string
	}{
		{ActionWireTransfer, func(d Details) { d["recipientAccount"] = "1234567" }, "Please enter a valid account number"},
		{ActionWireTransfer, func(d Details) { d["routingNumber"] = "0210000210" }, "Please enter a valid 9-digit routing number"},
		{ActionWireTransfer, func(d Details) { d["recipientBank"] = " " }, "Please select a bank"},
		{ActionPayBills, func(d Details) { d["billType"] = "" }, "Please select a bill type"},
		{ActionPayBills, func(d Details) { d["provider"] = "" }, "Please select a provider"},
		{ActionPayBills, func(d Details) { d["accountNumber"] = "" }, "Account number is required"},
		{ActionBuyCrypto, func(d Details) { d["cryptoType"] = "LTC" }, "Please select a cryptocurrency"},
		{ActionBuyCrypto, func(d Details) { d["walletAddress"] = "" }, "Wallet address is required"},
		{ActionDeposit, func(d Details) { d["depositMethod"] = "Barter" }, "Please select a deposit method"},
		{ActionDeposit, func(d Details) { d["routingNumber"] = "" }, "Routing number is required"},
		{ActionBankTransfer, func(d Details) { d["bankName"] = "Unknown Bank" }, "Bank details could not be verified. Please check and try again."},
		{ActionBankTransfer, func(d Details) { d["transferType"] = "scheduled"; d["scheduledDate"] = "2024-01-01" }, "Please select a future date for scheduled transfer"},
	}
	for _, tt := range tests {
		t.Run(tt.action+"/"+tt.want, func(t *testing.T) {
			a := mustAction(t, tt.action)
			d := validDetails(tt.action)
			d["amount"] = a.Min.String()
			tt.mutate(d)
			_, _, err := a.Validate(d, dec("1000000"), now)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckDepositSkipsBankFields(t *testing.T) {
	a := mustAction(t, ActionDeposit)
	if _, _, err := a.Validate(Details{"amount": "10", "depositMethod": "Check Deposit"}, dec("0"), now); err != nil {
		t.Fatalf("check deposit should not need bank details: %v", err)
	}
}

func TestCryptoExtras(t *testing.T) {
	a := mustAction(t, ActionBuyCrypto)
	d := validDetails(ActionBuyCrypto)
	d["amount"] = "215"

	amount, enriched, err := a.Validate(d, dec("1000"), now)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	c, err := a.Plan(amount, enriched, dec("1000"), "tx", "intent", now)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if c.Transaction.Description != "Crypto Purchase - BTC" {
		t.Fatalf("unexpected description %q", c.Transaction.Description)
	}
	if c.Transaction.Details["cryptoAmount"] != "0.00500000" || c.Transaction.Details["exchangeRate"] != 43000.0 {
		t.Fatalf("unexpected extras: %v", c.Transaction.Details)
	}
	if !c.NewBalance.Equal(dec("785")) {
		t.Fatalf("expected 785, got %s", c.NewBalance)
	}
}

func TestPlanRoundsToCents(t *testing.T) {
	a := mustAction(t, ActionPayBills)
	c, err := a.Plan(dec("10.10"), validDetails(ActionPayBills), dec("0.30"), "tx", "", now)
	if err == nil {
		t.Fatalf("expected insufficient funds, got %+v", c)
	}

	c, err = a.Plan(dec("10.10"), validDetails(ActionPayBills), dec("20.20"), "tx", "", now)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if c.Transaction.Amount != -10.1 || !c.NewBalance.Equal(dec("10.10")) {
		t.Fatalf("unexpected arithmetic: amount=%v balance=%s", c.Transaction.Amount, c.NewBalance)
	}
	if c.Transaction.Description != "Bill Payment - Utility Bills" || c.Transaction.RecipientName != "" {
		t.Fatalf("unexpected bill transaction: %+v", c.Transaction)
	}
}

func TestActionDescriptorJSON(t *testing.T) {
	b, err := json.Marshal(Actions())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"id":"wire_transfer"`, `"minAmount":100`, `"maxAmount":100000`, `"credit":true`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %s", want, s)
		}
	}
}
