// Package analysis derives summaries, recurring-charge candidates, and
// interest projections from a finished transaction list. Every function is
// a pure pass over its input.
package analysis

import (
	"strings"

	"github.com/cardwise/statement-ingest/internal/models"
)

// merchantSeparators truncate a description down to its merchant part:
// "AMZN Mktp - Seattle WA" and "NETFLIX | billing" both carry location or
// channel noise after the separator.
const merchantSeparators = "-|•"

// Summarize computes spend totals, per-category and per-merchant breakdowns,
// and the outstanding-balance estimate in a single pass. Category and
// merchant buckets accumulate charges only (credits contribute zero);
// credits reduce the balance, which is floored at zero.
func Summarize(txns []models.Transaction) models.Summary {
	summary := models.Summary{
		ByCategory: make(map[string]float64),
		ByMerchant: make(map[string]float64),
	}

	var charges, credits float64
	for _, t := range txns {
		if t.Amount >= 0 {
			charges += t.Amount
		} else {
			credits += -t.Amount
		}
		if t.Amount > 0 {
			summary.TotalSpend += t.Amount
		}

		spend := max(0, t.Amount)
		summary.ByCategory[t.Category] += spend
		summary.ByMerchant[MerchantKey(t.Description)] += spend
	}

	summary.Balance = max(0, charges-credits)
	return summary
}

// MerchantKey truncates a description at the first dash, pipe, or bullet
// and trims the remainder.
func MerchantKey(description string) string {
	if i := strings.IndexAny(description, merchantSeparators); i >= 0 {
		description = description[:i]
	}
	return strings.TrimSpace(description)
}
