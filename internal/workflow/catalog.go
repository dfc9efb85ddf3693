package workflow

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/directory"
	"github.com/GregMSThompson/banking-backend/internal/errs"
)

const (
	ActionWireTransfer = "wire_transfer"
	ActionPayBills     = "pay_bills"
	ActionBuyCrypto    = "buy_crypto"
	ActionDeposit      = "deposit_funds"
	ActionBankTransfer = "bank_transfer"
)

var cryptoRates = map[string]decimal.Decimal{
	"BTC":  decimal.NewFromInt(43000),
	"ETH":  decimal.NewFromInt(2200),
	"SOL":  decimal.NewFromInt(100),
	"DOGE": decimal.RequireFromString("0.08"),
	"XRP":  decimal.RequireFromString("0.50"),
}

var depositMethods = []string{"ACH Transfer", "Wire Transfer", "Check Deposit", "Cash Deposit"}

var billTypes = []string{"Utility Bills", "Phone/Internet", "Insurance", "Credit Card"}

var catalog = []*Action{
	{
		ID:     ActionWireTransfer,
		Name:   "Wire Transfer",
		TxType: ActionWireTransfer,
		Min:    decimal.NewFromInt(100),
		Max:    decimal.NewFromInt(50000),
		Fields: []Field{
			{Name: "recipientName", Label: "Recipient Name", Required: true},
			{Name: "recipientBank", Label: "Recipient Bank", Required: true},
			{Name: "recipientAccount", Label: "Account Number", Required: true},
			{Name: "routingNumber", Label: "Routing Number", Required: true},
			{Name: "reference", Label: "Reference"},
		},
		check: func(d Details, _ time.Time) (Details, error) {
			switch {
			case d.Get("recipientName") == "":
				return nil, errs.NewValidationError("Recipient name is required")
			case d.Get("recipientBank") == "":
				return nil, errs.NewValidationError("Please select a bank")
			case len(d.Get("recipientAccount")) < 8 || !isDigits(d.Get("recipientAccount")):
				return nil, errs.NewValidationError("Please enter a valid account number")
			case len(d.Get("routingNumber")) != 9 || !isDigits(d.Get("routingNumber")):
				return nil, errs.NewValidationError("Please enter a valid 9-digit routing number")
			}
			return d, nil
		},
		describe: func(d Details) string { return "Wire Transfer to " + d.Get("recipientName") },
	},
	{
		ID:     ActionPayBills,
		Name:   "Pay Bills",
		TxType: ActionPayBills,
		Min:    decimal.NewFromInt(10),
		Max:    decimal.NewFromInt(10000),
		Fields: []Field{
			{Name: "billType", Label: "Bill Type", Required: true, Options: billTypes},
			{Name: "provider", Label: "Provider", Required: true},
			{Name: "accountNumber", Label: "Account Number", Required: true},
			{Name: "reference", Label: "Reference"},
		},
		check: func(d Details, _ time.Time) (Details, error) {
			switch {
			case d.Get("billType") == "":
				return nil, errs.NewValidationError("Please select a bill type")
			case d.Get("provider") == "":
				return nil, errs.NewValidationError("Please select a provider")
			case d.Get("accountNumber") == "":
				return nil, errs.NewValidationError("Account number is required")
			}
			d["recipientName"] = d.Get("provider")
			d["recipientAccount"] = d.Get("accountNumber")
			return d, nil
		},
		describe: func(d Details) string { return "Bill Payment - " + d.Get("billType") },
	},
	{
		ID:     ActionBuyCrypto,
		Name:   "Buy Crypto",
		TxType: ActionBuyCrypto,
		Min:    decimal.NewFromInt(50),
		Max:    decimal.NewFromInt(25000),
		Fields: []Field{
			{Name: "cryptoType", Label: "Cryptocurrency", Required: true, Options: cryptoSymbols()},
			{Name: "walletAddress", Label: "Wallet Address", Required: true},
			{Name: "reference", Label: "Reference"},
		},
		check: func(d Details, _ time.Time) (Details, error) {
			symbol := strings.ToUpper(d.Get("cryptoType"))
			if _, ok := cryptoRates[symbol]; !ok {
				return nil, errs.NewValidationError("Please select a cryptocurrency")
			}
			if d.Get("walletAddress") == "" {
				return nil, errs.NewValidationError("Wallet address is required")
			}
			d["cryptoType"] = symbol
			return d, nil
		},
		describe: func(d Details) string { return "Crypto Purchase - " + d.Get("cryptoType") },
		extras: func(d Details, amount decimal.Decimal) map[string]any {
			rate := cryptoRates[d.Get("cryptoType")]
			return map[string]any{
				"cryptoType":    d.Get("cryptoType"),
				"exchangeRate":  rate.InexactFloat64(),
				"cryptoAmount":  amount.DivRound(rate, 8).StringFixed(8),
				"walletAddress": d.Get("walletAddress"),
			}
		},
	},
	{
		ID:     ActionDeposit,
		Name:   "Deposit Funds",
		TxType: ActionDeposit,
		Min:    decimal.NewFromInt(10),
		Max:    decimal.NewFromInt(100000),
		Credit: true,
		Fields: []Field{
			{Name: "depositMethod", Label: "Deposit Method", Required: true, Options: depositMethods},
			{Name: "bankName", Label: "Bank"},
			{Name: "accountNumber", Label: "Account Number"},
			{Name: "routingNumber", Label: "Routing Number"},
			{Name: "reference", Label: "Reference"},
		},
		check: func(d Details, _ time.Time) (Details, error) {
			method := d.Get("depositMethod")
			if !contains(depositMethods, method) {
				return nil, errs.NewValidationError("Please select a deposit method")
			}
			if method == "ACH Transfer" || method == "Wire Transfer" {
				switch {
				case d.Get("bankName") == "":
					return nil, errs.NewValidationError("Please select a bank")
				case d.Get("accountNumber") == "":
					return nil, errs.NewValidationError("Account number is required")
				case d.Get("routingNumber") == "":
					return nil, errs.NewValidationError("Routing number is required")
				}
				d["recipientBank"] = d.Get("bankName")
			}
			return d, nil
		},
		describe: func(d Details) string { return "Deposit via " + d.Get("depositMethod") },
		extras: func(d Details, _ decimal.Decimal) map[string]any {
			return map[string]any{"depositMethod": d.Get("depositMethod")}
		},
	},
	{
		ID:     ActionBankTransfer,
		Name:   "Bank Transfer",
		TxType: "transfer",
		Min:    decimal.NewFromInt(1),
		Max:    decimal.NewFromInt(50000),
		Fields: []Field{
			{Name: "bankName", Label: "Bank", Required: true},
			{Name: "routingNumber", Label: "Routing Number", Required: true},
			{Name: "accountNumber", Label: "Account Number", Required: true},
			{Name: "transferType", Label: "Transfer Type", Options: []string{"immediate", "scheduled"}},
			{Name: "scheduledDate", Label: "Scheduled Date"},
			{Name: "note", Label: "Note"},
		},
		check: func(d Details, now time.Time) (Details, error) {
			bank, err := directory.Verify(d.Get("bankName"), d.Get("routingNumber"), d.Get("accountNumber"))
			if err != nil {
				return nil, err
			}
			if d.Get("transferType") == "scheduled" {
				when, ok := parseDate(d.Get("scheduledDate"))
				if !ok || !when.After(now) {
					return nil, errs.NewValidationError("Please select a future date for scheduled transfer")
				}
				d["scheduledDate"] = when.UTC().Format(time.RFC3339)
			}
			d["recipientName"] = bank.HolderName
			d["recipientBank"] = bank.Name
			d["recipientAccount"] = bank.AccountNumber
			return d, nil
		},
		describe: func(d Details) string {
			if d.Get("transferType") == "scheduled" {
				return "Scheduled Bank Transfer"
			}
			return "Bank Transfer"
		},
		scheduled: func(d Details) bool { return d.Get("transferType") == "scheduled" },
	},
}

var byID = func() map[string]*Action {
	m := make(map[string]*Action, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// Actions lists every action in display order.
func Actions() []*Action {
	out := make([]*Action, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the action with the given id.
func Lookup(id string) (*Action, bool) {
	a, ok := byID[id]
	return a, ok
}

func cryptoSymbols() []string {
	out := make([]string, 0, len(cryptoRates))
	for s := range cryptoRates {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
