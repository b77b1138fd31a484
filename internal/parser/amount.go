package parser

import (
	"math"
	"strconv"
	"strings"
)

// signSampleRows caps how many leading rows the sign-convention heuristic
// inspects.
const signSampleRows = 50

// currencyReplacer drops currency symbols, thousands separators, and
// whitespace (including non-breaking spaces) ahead of numeric parsing.
var currencyReplacer = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
	",", "",
	" ", "",
	" ", "",
)

// NormalizeAmount converts a raw textual amount like "$1,234.56" or
// "(45.00)" into a signed value. A parenthesized amount is negative. Empty
// or non-numeric input yields zero rather than an error.
func NormalizeAmount(raw string) float64 {
	s := currencyReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	if s == "" || s == "-" {
		return 0
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative && value > 0 {
		value = -value
	}
	return value
}

// ResolveSignConvention decides whether positive raw values in a unified
// amount column represent charges. It samples up to the first 50 rows and
// counts signs; positives win ties because most card exports list spend as
// positive. Statements whose charge/credit ratio is inverted inside the
// sample window will be misclassified; that is the documented behavior of
// the heuristic, not a bug.
func ResolveSignConvention(rows []Row, amountColumn int) bool {
	limit := len(rows)
	if limit > signSampleRows {
		limit = signSampleRows
	}

	positives, negatives := 0, 0
	for _, row := range rows[:limit] {
		cell, ok := row.Get(amountColumn)
		if !ok {
			continue
		}
		switch value := NormalizeAmount(cell); {
		case value > 0:
			positives++
		case value < 0:
			negatives++
		}
	}
	return positives >= negatives
}

// debitCreditAmount derives the signed amount from separate debit/credit
// cells: a populated debit is a charge, a populated credit is a payment or
// refund. Debit takes precedence when both cells carry values.
func debitCreditAmount(debit, credit string) float64 {
	if strings.TrimSpace(debit) != "" {
		return math.Abs(NormalizeAmount(debit))
	}
	if strings.TrimSpace(credit) != "" {
		return -math.Abs(NormalizeAmount(credit))
	}
	return 0
}
