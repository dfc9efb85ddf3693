package history

import (
	"sort"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

const (
	TransferType       = "transfer"
	recentTransfers    = 5
	frequentRecipients = 3
)

// Transfers returns the newest bank transfers and the recipients paid most
// often.
func Transfers(txs []models.Transaction) dto.TransferActivity {
	var transfers []models.Transaction
	for _, tx := range txs {
		if tx.Type == TransferType {
			transfers = append(transfers, tx)
		}
	}
	sort.SliceStable(transfers, func(i, j int) bool {
		a, _ := ParseDate(transfers[i].Date)
		b, _ := ParseDate(transfers[j].Date)
		return a.After(b)
	})

	recent := transfers
	if len(recent) > recentTransfers {
		recent = recent[:recentTransfers]
	}

	counts := map[string]*dto.Recipient{}
	var order []string
	for _, tx := range transfers {
		if tx.RecipientName == "" {
			continue
		}
		key := tx.RecipientName + "|" + tx.RecipientBank + "|" + tx.RecipientAccount
		r, ok := counts[key]
		if !ok {
			r = &dto.Recipient{Name: tx.RecipientName, Bank: tx.RecipientBank, Account: tx.RecipientAccount}
			counts[key] = r
			order = append(order, key)
		}
		r.Count++
	}
	frequent := make([]dto.Recipient, 0, len(order))
	for _, k := range order {
		frequent = append(frequent, *counts[k])
	}
	// stable so ties keep most-recent-first order
	sort.SliceStable(frequent, func(i, j int) bool { return frequent[i].Count > frequent[j].Count })
	if len(frequent) > frequentRecipients {
		frequent = frequent[:frequentRecipients]
	}

	if recent == nil {
		recent = []models.Transaction{}
	}
	return dto.TransferActivity{Recent: recent, FrequentRecipients: frequent}
}
