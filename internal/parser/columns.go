package parser

import (
	"strings"

	"github.com/cardwise/statement-ingest/internal/models"
)

// Candidate substrings per semantic role. Banks never agree on labels, so
// matching is case-insensitive substring containment, and the first header
// containing any candidate for a role wins that role.
var (
	dateCandidates        = []string{"date", "transaction date", "posting date", "post date"}
	descriptionCandidates = []string{"description", "merchant", "details", "narration", "name", "memo"}
	amountCandidates      = []string{"amount", "value", "transaction amount", "amount ($)"}
	debitCandidates       = []string{"debit", "withdrawal", "withdrawals", "outflow", "debits"}
	creditCandidates      = []string{"credit", "deposit", "inflow", "credits", "payment"}
	categoryCandidates    = []string{"category", "type"}
)

// Positional fallbacks used when a role stays unmapped.
const (
	defaultDateColumn        = 0
	defaultDescriptionColumn = 1
	defaultAmountColumn      = 2
)

// InferColumns maps header labels to semantic roles. Roles with no matching
// header stay ColumnUnset; row conversion falls back to positional defaults
// rather than failing.
func InferColumns(headers []string) models.ColumnMapping {
	m := models.NewColumnMapping()
	m.Date = findColumn(headers, dateCandidates)
	m.Description = findColumn(headers, descriptionCandidates)
	m.Amount = findColumn(headers, amountCandidates)
	m.Debit = findColumn(headers, debitCandidates)
	m.Credit = findColumn(headers, creditCandidates)
	m.Category = findColumn(headers, categoryCandidates)
	return m
}

func findColumn(headers, candidates []string) int {
	for i, header := range headers {
		label := strings.ToLower(header)
		for _, candidate := range candidates {
			if strings.Contains(label, candidate) {
				return i
			}
		}
	}
	return models.ColumnUnset
}

// columnOrDefault resolves a possibly unmapped role to a usable index.
func columnOrDefault(mapped, fallback int) int {
	if mapped == models.ColumnUnset {
		return fallback
	}
	return mapped
}
