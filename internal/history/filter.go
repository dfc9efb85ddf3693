package history

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

// ParseDate reads a stored transaction date. Older entries carry a bare
// calendar date.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeQuery applies defaults and rejects unknown sort keys.
func NormalizeQuery(q dto.HistoryQuery) (dto.HistoryQuery, error) {
	q.Search = strings.TrimSpace(q.Search)
	switch q.Sort {
	case "":
		q.Sort = dto.SortNewest
	case dto.SortNewest, dto.SortOldest:
	default:
		return q, errs.NewValidationError("sort must be newest or oldest")
	}
	if q.Limit <= 0 {
		q.Limit = dto.DefaultHistoryWindow
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, errs.NewValidationError("end date must not be before start date")
	}
	return q, nil
}

// Filter returns the entries matching q in the requested order. q must have
// been normalized.
func Filter(txs []models.Transaction, q dto.HistoryQuery) []dto.HistoryEntry {
	needle := strings.ToLower(q.Search)
	out := make([]dto.HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		e := dto.HistoryEntry{Transaction: tx, ResolvedCategory: Categorize(tx)}
		if q.Type != "" && !strings.EqualFold(tx.Type, q.Type) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(e.ResolvedCategory, q.Category) {
			continue
		}
		if !inRange(tx.Date, q.From, q.To) {
			continue
		}
		if needle != "" && !matches(e, needle) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := ParseDate(out[i].Date)
		b, _ := ParseDate(out[j].Date)
		if q.Sort == dto.SortOldest {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

// Page filters txs and cuts the result to the query's window.
func Page(txs []models.Transaction, q dto.HistoryQuery) dto.HistoryPage {
	all := Filter(txs, q)
	shown := all
	if len(shown) > q.Limit {
		shown = shown[:q.Limit]
	}
	page := dto.HistoryPage{
		Transactions: shown,
		Total:        len(all),
		Shown:        len(shown),
		HasMore:      len(all) > len(shown),
	}
	if page.HasMore {
		page.NextLimit = q.Limit + dto.DefaultHistoryWindow
	}
	return page
}

func matches(e dto.HistoryEntry, needle string) bool {
	fields := []string{
		e.Description,
		e.RecipientName,
		e.RecipientBank,
		e.ResolvedCategory,
		e.Type,
		e.Status,
		strconv.FormatFloat(math.Abs(e.Amount), 'f', -1, 64),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// inRange compares whole days so that a To date includes the full day.
func inRange(date string, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	t, ok := ParseDate(date)
	if !ok {
		return false
	}
	day := truncateDay(t)
	if from != nil && day.Before(truncateDay(*from)) {
		return false
	}
	if to != nil && day.After(truncateDay(*to)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
