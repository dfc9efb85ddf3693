// Package history derives the read-side views over a user's transaction
// array: categorization, filtering, paging, period summaries, CSV export
// and transfer activity. Everything here is a pure function of its inputs.
package history

import (
	"strings"

	"github.com/GregMSThompson/banking-backend/internal/models"
)

const (
	CategoryIncome        = "Income"
	CategoryTransfers     = "Transfers"
	CategoryBills         = "Bills & Utilities"
	CategoryInvestments   = "Investments"
	CategoryFood          = "Food & Dining"
	CategoryShopping      = "Shopping"
	CategoryTransport     = "Transportation"
	CategoryEntertainment = "Entertainment"
	CategoryHealth        = "Healthcare"
	CategoryOther         = "Other"
)

type rule struct {
	category string
	keywords []string
}

// Checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{CategoryIncome, []string{"deposit", "salary", "payroll", "refund", "interest", "dividend"}},
	{CategoryInvestments, []string{"crypto", "bitcoin", "stock", "brokerage", "investment"}},
	{CategoryBills, []string{"bill", "utility", "electric", "water", "internet", "phone", "insurance", "rent", "mortgage"}},
	{CategoryTransfers, []string{"transfer", "wire", "zelle", "venmo"}},
	{CategoryFood, []string{"restaurant", "coffee", "cafe", "grocery", "food", "pizza", "dining"}},
	{CategoryShopping, []string{"amazon", "walmart", "target", "store", "shop", "purchase"}},
	{CategoryTransport, []string{"uber", "lyft", "fuel", "gas station", "parking", "airline", "taxi"}},
	{CategoryEntertainment, []string{"netflix", "spotify", "movie", "cinema", "concert", "game"}},
	{CategoryHealth, []string{"pharmacy", "hospital", "clinic", "doctor", "dental"}},
}

// Categorize returns the stored category when set, otherwise the first
// keyword match over the lowercased description. Without a stored category
// the result depends on the description alone.
func Categorize(tx models.Transaction) string {
	if c := strings.TrimSpace(tx.Category); c != "" {
		return c
	}
	desc := strings.ToLower(tx.Description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
	}
	return CategoryOther
}
