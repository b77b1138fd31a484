package parser

import (
	"math"
	"time"

	"github.com/cardwise/statement-ingest/internal/models"
)

// ParseCSV runs the tabular path end to end: tokenize, infer columns,
// resolve the sign convention when only a unified amount column exists,
// then normalize each row into a transaction. Transaction.Category carries
// the raw source label (possibly empty); final categorization happens
// downstream. Rows whose amount is not finite are dropped and counted.
func ParseCSV(text string, now time.Time) ([]models.Transaction, models.ColumnMapping, models.Stats, error) {
	table, err := ParseTabular(text)
	if err != nil {
		return nil, models.NewColumnMapping(), models.Stats{}, err
	}

	mapping := InferColumns(table.Headers)
	dateColumn := columnOrDefault(mapping.Date, defaultDateColumn)
	descriptionColumn := columnOrDefault(mapping.Description, defaultDescriptionColumn)
	amountColumn := columnOrDefault(mapping.Amount, defaultAmountColumn)

	// Sign inference applies only to a mapped unified amount column.
	positiveIsCharge := true
	if mapping.Amount != models.ColumnUnset && !mapping.HasDebitCredit() {
		positiveIsCharge = ResolveSignConvention(table.Rows, mapping.Amount)
	}

	var txns []models.Transaction
	var stats models.Stats
	for _, row := range table.Rows {
		var amount float64
		if mapping.HasDebitCredit() {
			debit, _ := row.Get(mapping.Debit)
			credit, _ := row.Get(mapping.Credit)
			amount = debitCreditAmount(debit, credit)
		} else {
			cell, _ := row.Get(amountColumn)
			amount = NormalizeAmount(cell)
			if !positiveIsCharge {
				amount = -amount
			}
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			stats.SkippedRows++
			continue
		}

		dateRaw, _ := row.Get(dateColumn)
		description, _ := row.Get(descriptionColumn)
		category := ""
		if mapping.Category != models.ColumnUnset {
			category, _ = row.Get(mapping.Category)
		}

		txns = append(txns, models.Transaction{
			Date:        ParseDate(dateRaw, now),
			Description: description,
			Amount:      amount,
			Category:    category,
		})
		stats.ParsedRows++
	}
	return txns, mapping, stats, nil
}
