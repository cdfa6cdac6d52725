package features

import (
	"fmt"
	"math"
	"sort"
)

// Bin counts for each binned feature
const (
	PriceBins  = 5
	WeightBins = 5
	ExpiryBins = 6
)

// expiryCuts are the fixed month boundaries:
// (-inf,-1] (-1,0] (0,3] (3,6] (6,12] (12,inf)
var expiryCuts = []float64{-1, 0, 3, 6, 12}

// Binner maps a continuous value to an ordinal bin 0..len(Cuts).
// Bins are closed on the right: a value equal to a cut point falls in the
// lower bin, and tied cut points collapse toward the lower bin.
type Binner struct {
	Cuts []float64 `json:"cuts"`
}

// ExpiryBinner returns the fixed months-to-expiry binner
func ExpiryBinner() Binner {
	cuts := make([]float64, len(expiryCuts))
	copy(cuts, expiryCuts)
	return Binner{Cuts: cuts}
}

// FitQuantiles fits equal-population cut points over values.
// Callers impute missing values before fitting.
func FitQuantiles(values []float64, bins int) (Binner, error) {
	if bins < 2 {
		return Binner{}, fmt.Errorf("quantile binning needs at least 2 bins, got %d", bins)
	}
	if len(values) == 0 {
		return Binner{}, fmt.Errorf("quantile binning needs at least one value")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cuts := make([]float64, bins-1)
	for i := range cuts {
		cuts[i] = quantile(sorted, float64(i+1)/float64(bins))
	}
	return Binner{Cuts: cuts}, nil
}

// quantile interpolates linearly between order statistics of sorted
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Bin returns the number of cut points strictly below v
func (b Binner) Bin(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return sort.SearchFloat64s(b.Cuts, v)
}

// Bins returns the number of ordinal bins
func (b Binner) Bins() int {
	return len(b.Cuts) + 1
}

// Validate checks that cut points are finite and non-decreasing
func (b Binner) Validate(bins int) error {
	if b.Bins() != bins {
		return fmt.Errorf("expected %d bins, have %d", bins, b.Bins())
	}
	for i, c := range b.Cuts {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("cut %d is not finite", i)
		}
		if i > 0 && c < b.Cuts[i-1] {
			return fmt.Errorf("cut %d (%g) is below cut %d (%g)", i, c, i-1, b.Cuts[i-1])
		}
	}
	return nil
}
