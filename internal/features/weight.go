package features

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "<number><unit>" with optional whitespace (including no-break and thin spaces), e.g. "250 g", "1,000ml", "1.5kg"
	weightWithUnitPattern = regexp.MustCompile(`^([\d.,]+)[\s\p{Zs}]*([a-z]+)$`)

	// first numeric run anywhere in the string
	firstNumberPattern = regexp.MustCompile(`[\d.,]+`)
)

// unitMultipliers converts a unit token to grams. Volumes assume 1 ml = 1 g.
var unitMultipliers = map[string]float64{
	"kg":         1000,
	"kgs":        1000,
	"g":          1,
	"gm":         1,
	"gms":        1,
	"gram":       1,
	"grams":      1,
	"l":          1000,
	"ml":         1,
	"milliliter": 1,
	"millilitre": 1,
}

// NormalizeWeight converts a free-form weight or volume to grams.
// It never fails: absent, unparseable or unknown-unit values yield 0.
// A bare number is returned as is.
func NormalizeWeight(raw *string) float64 {
	if raw == nil {
		return 0
	}
	s := strings.ToLower(strings.TrimSpace(*raw))
	if s == "" {
		return 0
	}

	if m := weightWithUnitPattern.FindStringSubmatch(s); m != nil {
		value, ok := parseQuantity(m[1])
		if !ok {
			return 0
		}
		multiplier, known := unitMultipliers[m[2]]
		if !known {
			return 0
		}
		return value * multiplier
	}

	if m := firstNumberPattern.FindString(s); m != "" {
		if value, ok := parseQuantity(m); ok {
			return value
		}
	}
	return 0
}

// parseQuantity parses a number that may carry thousands separators
func parseQuantity(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
