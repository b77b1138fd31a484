package analysis

import (
	"sort"
	"strings"

	"github.com/cardwise/statement-ingest/internal/models"
)

const (
	// maxSubscriptionCandidates caps the returned list.
	maxSubscriptionCandidates = 6

	// maxVariationCoefficient is the recurrence-regularity ceiling:
	// population variance of absolute amounts divided by their mean.
	// Subscriptions bill nearly identical amounts, so irregular merchants
	// blow past this quickly.
	maxVariationCoefficient = 0.5
)

// DetectSubscriptions flags likely recurring charges. Transactions group by
// lower-cased full description (not the truncated merchant key); a group
// qualifies with at least two transactions spread over at least two
// distinct calendar months and amounts regular enough to pass the
// variation test. Results sort by descending average amount.
func DetectSubscriptions(txns []models.Transaction) []models.SubscriptionCandidate {
	type group struct {
		amounts []float64
		months  map[string]struct{}
		last    models.Date
	}

	groups := make(map[string]*group)
	var order []string
	for _, t := range txns {
		key := strings.ToLower(t.Description)
		g, ok := groups[key]
		if !ok {
			g = &group{months: make(map[string]struct{})}
			groups[key] = g
			order = append(order, key)
		}
		amount := t.Amount
		if amount < 0 {
			amount = -amount
		}
		g.amounts = append(g.amounts, amount)
		g.months[t.Date.YearMonth()] = struct{}{}
		if t.Date.After(g.last.Time) {
			g.last = t.Date
		}
	}

	var candidates []models.SubscriptionCandidate
	for _, key := range order {
		g := groups[key]
		if len(g.amounts) < 2 || len(g.months) < 2 {
			continue
		}

		mean := meanOf(g.amounts)
		if mean <= 0 {
			continue
		}
		if populationVariance(g.amounts, mean)/mean >= maxVariationCoefficient {
			continue
		}

		candidates = append(candidates, models.SubscriptionCandidate{
			Merchant:      key,
			Occurrences:   len(g.amounts),
			AverageAmount: round2(mean),
			LastDate:      g.last,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AverageAmount > candidates[j].AverageAmount
	})
	if len(candidates) > maxSubscriptionCandidates {
		candidates = candidates[:maxSubscriptionCandidates]
	}
	return candidates
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by n, not n-1; the group is the whole
// population, not a sample.
func populationVariance(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
