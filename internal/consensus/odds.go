package consensus

import (
	"fmt"
	"math"
)

// Odds is a consensus probability restated as betting-odds representations.
// All fields except ImpliedProbability are nil for a zero probability (a
// division-by-zero guard, modeled as valid output rather than an error).
type Odds struct {
	DecimalOdds           *float64 `json:"decimal_odds"`
	Fractional            *string  `json:"fractional_odds"`
	FractionalNumerator   *int     `json:"fractional_numerator"`
	FractionalDenominator *int     `json:"fractional_denominator"`
	ImpliedProbability    *float64 `json:"implied_probability"`
}

// OddsFromProbability converts a probability in [0,100] into decimal and
// approximate fractional odds. Pure and deterministic.
func OddsFromProbability(p *float64) Odds {
	if p == nil {
		return Odds{}
	}
	prob := *p
	out := Odds{ImpliedProbability: &prob}
	if prob == 0 {
		return out
	}

	dec := 100 / prob
	out.DecimalOdds = &dec

	num := int(math.Round(100 - prob))
	den := int(math.Round(prob))
	frac := fmt.Sprintf("%d:%d", num, den)
	out.FractionalNumerator = &num
	out.FractionalDenominator = &den
	out.Fractional = &frac
	return out
}
