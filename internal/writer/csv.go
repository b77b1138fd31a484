// Package writer renders normalized transactions back out as CSV.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cardwise/statement-ingest/internal/models"
)

// CSVWriter writes transactions in Date,Description,Category,Amount
// order with two-decimal amounts.
type CSVWriter struct {
	// IncludeHeader emits the column header row first.
	IncludeHeader bool
}

// WriteToFile writes the transactions to a new file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes the transactions as CSV to out.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := cw.Write([]string{"Date", "Description", "Category", "Amount"}); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for _, txn := range txns {
		row := []string{
			txn.Date.String(),
			txn.Description,
			txn.Category,
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
