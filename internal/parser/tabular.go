// Package parser recovers normalized transactions from semi-structured
// statement exports. It carries the tabular path (quote-aware tokenizing,
// header-to-role inference, sign resolution) and the document path
// (date-prefixed line extraction from PDF text), plus OFX imports.
package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cardwise/statement-ingest/internal/common"
)

// Row is one tokenized data line.
type Row []string

// Get returns the cell at index i. Out-of-range or unset indexes report
// absent instead of panicking, so short rows and unmapped roles cost nothing.
func (r Row) Get(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Table is the output of the tabular tokenizer: lower-cased header labels
// plus the data rows in input order.
type Table struct {
	Headers []string
	Rows    []Row
}

// ParseTabular tokenizes delimited text. Blank lines are discarded, a UTF-8
// byte-order mark is stripped from the first line, and the first surviving
// line becomes the header. Empty input yields an empty table, not an error;
// input that is not text at all (invalid UTF-8, embedded NUL) is a parse
// failure.
func ParseTabular(text string) (*Table, error) {
	if !utf8.ValidString(text) || strings.ContainsRune(text, '\x00') {
		return nil, fmt.Errorf("%w: input is not delimited text", common.ErrParseFailure)
	}
	text = strings.TrimPrefix(text, "\uFEFF")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	table := &Table{}
	if len(lines) == 0 {
		return table, nil
	}

	for _, label := range tokenizeLine(lines[0]) {
		table.Headers = append(table.Headers, strings.ToLower(label))
	}
	for _, line := range lines[1:] {
		table.Rows = append(table.Rows, tokenizeLine(line))
	}
	return table, nil
}

// tokenizeLine splits one line on commas, honoring quoted fields. A doubled
// quote inside a quoted field emits a literal quote. Every field is trimmed.
func tokenizeLine(line string) Row {
	var fields Row
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
