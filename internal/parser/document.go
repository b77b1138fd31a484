package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/cardwise/statement-ingest/internal/models"
)

var (
	// A line is a transaction candidate only when it opens with an
	// ISO-style date, dash or slash delimited.
	documentDatePattern = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}`)

	// Extracted PDF text renders column gaps as runs of spaces; commas
	// appear when the source table used them.
	documentTokenSplit = regexp.MustCompile(`\s{2,}|,\s`)

	// A token that reads as an amount: optional sign, optional currency
	// symbol, digits with optional thousands separators and decimals,
	// optionally parenthesized.
	documentAmountPattern = regexp.MustCompile(`^\(?[-+]?[$£€]?\d[\d,]*(?:\.\d+)?\)?$`)
)

// defaultDescription stands in when a document line carries no description
// tokens between its date and amount.
const defaultDescription = "Transaction"

// ParseDocumentText reconstructs transactions from page-ordered document
// text. Pages are joined into one blob and scanned line by line: a
// candidate line starts with a date, splits into at least three tokens, and
// carries an amount-shaped token after the date (the last such token wins).
// Tokens strictly between date and amount join into the description. Lines
// that fail any of these checks are skipped quietly; only date-prefixed
// lines that fail count toward SkippedRows.
func ParseDocumentText(pages []string, now time.Time) ([]models.Transaction, models.Stats) {
	stats := models.Stats{Pages: len(pages)}
	blob := strings.Join(pages, "\n")

	var txns []models.Transaction
	for _, rawLine := range strings.Split(blob, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || !documentDatePattern.MatchString(line) {
			continue
		}

		tokens := splitDocumentLine(line)
		if len(tokens) < 3 {
			stats.SkippedRows++
			continue
		}

		amountIndex := -1
		for i := len(tokens) - 1; i > 0; i-- {
			if documentAmountPattern.MatchString(tokens[i]) {
				amountIndex = i
				break
			}
		}
		if amountIndex < 1 {
			stats.SkippedRows++
			continue
		}

		description := strings.TrimSpace(strings.Join(tokens[1:amountIndex], " "))
		if description == "" {
			description = defaultDescription
		}

		txns = append(txns, models.Transaction{
			Date:        ParseDate(tokens[0], now),
			Description: description,
			Amount:      NormalizeAmount(tokens[amountIndex]),
		})
		stats.ParsedRows++
	}
	return txns, stats
}

func splitDocumentLine(line string) []string {
	var tokens []string
	for _, token := range documentTokenSplit.Split(line, -1) {
		token = strings.TrimSpace(token)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
