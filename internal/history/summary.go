package history

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

const topCategories = 5

// PeriodStart returns the start of period measured back from now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case dto.PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case dto.PeriodMonth, "":
		return now.AddDate(0, -1, 0), nil
	case dto.PeriodYear:
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, errs.NewValidationError("period must be week, month or year")
	}
}

// Summarize totals income and expense over the period ending at now.
// Scheduled and failed entries have not moved money and are left out.
func Summarize(txs []models.Transaction, period string, now time.Time) (dto.HistorySummary, error) {
	from, err := PeriodStart(period, now)
	if err != nil {
		return dto.HistorySummary{}, err
	}
	if period == "" {
		period = dto.PeriodMonth
	}

	income, expense := decimal.Zero, decimal.Zero
	spend := map[string]*categoryAcc{}
	count := 0

	for _, tx := range txs {
		if tx.Status == models.TxScheduled || tx.Status == models.TxFailed {
			continue
		}
		t, ok := ParseDate(tx.Date)
		if !ok || t.Before(from) || t.After(now) {
			continue
		}
		count++
		amt := decimal.NewFromFloat(tx.Amount)
		if amt.IsPositive() {
			income = income.Add(amt)
			continue
		}
		expense = expense.Add(amt.Abs())
		c := Categorize(tx)
		acc, ok := spend[c]
		if !ok {
			acc = &categoryAcc{}
			spend[c] = acc
		}
		acc.total = acc.total.Add(amt.Abs())
		acc.count++
	}

	return dto.HistorySummary{
		Period:        period,
		From:          from,
		To:            now,
		Income:        income.Round(2).InexactFloat64(),
		Expense:       expense.Round(2).InexactFloat64(),
		Net:           income.Sub(expense).Round(2).InexactFloat64(),
		Count:         count,
		TopCategories: rankCategories(spend),
	}, nil
}

type categoryAcc struct {
	total decimal.Decimal
	count int
}

func rankCategories(spend map[string]*categoryAcc) []dto.CategoryTotal {
	out := make([]dto.CategoryTotal, 0, len(spend))
	for name, acc := range spend {
		out = append(out, dto.CategoryTotal{
			Category: name,
			Total:    acc.total.Round(2).InexactFloat64(),
			Count:    acc.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > topCategories {
		out = out[:topCategories]
	}
	return out
}
