package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/GregMSThompson/banking-backend/internal/dto"
)

var csvHeader = []string{"Date", "Description", "Amount", "Type", "Status"}

// WriteCSV writes entries as CSV. Dates are rendered like "Jan 02, 2006" and
// amounts always carry two decimals. Text cells are made inert for
// spreadsheet formula evaluation.
func WriteCSV(w io.Writer, entries []dto.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		date := e.Date
		if t, ok := ParseDate(e.Date); ok {
			date = t.Format("Jan 02, 2006")
		}
		row := []string{
			inertCell(date),
			inertCell(e.Description),
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			inertCell(e.Type),
			inertCell(e.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// inertCell prefixes a quote to text a spreadsheet would read as a formula.
func inertCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}
