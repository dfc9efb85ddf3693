package dto

import (
	"time"

	"github.com/GregMSThompson/banking-backend/internal/models"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"

	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	DefaultHistoryWindow = 6
)

// HistoryQuery filters the transaction history. Zero values mean "no filter".
type HistoryQuery struct {
	Search   string
	Type     string
	Category string
	From     *time.Time
	To       *time.Time
	Sort     string
	Limit    int
}

// HistoryEntry is a transaction with its resolved category.
type HistoryEntry struct {
	models.Transaction
	ResolvedCategory string `json:"resolvedCategory"`
}

type HistoryPage struct {
	Transactions []HistoryEntry `json:"transactions"`
	Total        int            `json:"total"`
	Shown        int            `json:"shown"`
	HasMore      bool           `json:"hasMore"`
	NextLimit    int            `json:"nextLimit,omitempty"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

type HistorySummary struct {
	Period        string          `json:"period"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Income        float64         `json:"income"`
	Expense       float64         `json:"expense"`
	Net           float64         `json:"net"`
	Count         int             `json:"count"`
	TopCategories []CategoryTotal `json:"topCategories"`
}

type Recipient struct {
	Name    string `json:"name"`
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Count   int    `json:"count"`
}

type TransferActivity struct {
	Recent             []models.Transaction `json:"recent"`
	FrequentRecipients []Recipient          `json:"frequentRecipients"`
}
