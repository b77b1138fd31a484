package parser

import (
	"strings"
	"time"

	"github.com/cardwise/statement-ingest/internal/models"
)

// Accepted date layouts, ISO-like first since exporters favor it. Slash
// layouts read as month/day/year.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01/02/06",
}

// ParseDate parses a statement date, falling back to now (at day precision)
// when no layout matches. The fallback keeps a bad date cell from sinking
// the whole row; callers inject now so results stay reproducible in tests.
func ParseDate(raw string, now time.Time) models.Date {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t)
		}
	}
	return models.NewDate(now)
}
