package analysis

import "math"

// MonthlyInterest projects one month of interest on a carried balance at
// the given annual percentage rate. Negative rates clamp to zero.
func MonthlyInterest(balance, apr float64) float64 {
	return round2(balance * max(0, apr) / 100 / 12)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
