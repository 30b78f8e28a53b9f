package normalizers

import (
	"regexp"
	"strconv"
	"strings"
)

var weightCaptureRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(mg|kg|g|gr|gram|grams|oz|ounce|ounces|lb|lbs|ml)\b`)

// gramsPerUnit converts the supported units to grams. Milliliters are treated
// as grams; close enough for liquid products where manifests mix the two.
var gramsPerUnit = map[string]float64{
	"mg":     0.001,
	"g":      1,
	"gr":     1,
	"gram":   1,
	"grams":  1,
	"kg":     1000,
	"oz":     28.3495,
	"ounce":  28.3495,
	"ounces": 28.3495,
	"lb":     453.592,
	"lbs":    453.592,
	"ml":     1,
}

// fractionGrams decodes common flower fractions embedded in names
var fractionGrams = map[string]float64{
	"1/8": 3.5,
	"1/4": 7,
	"1/2": 14,
}

// ParseWeight extracts the first weight token from free text ("Widget 3.5g",
// "blue_dream_1/8") and reports whether one was found.
func ParseWeight(s string) (value float64, unit string, ok bool) {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))

	if m := weightCaptureRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, "", false
		}
		return v, m[2], true
	}

	for frac, grams := range fractionGrams {
		if strings.Contains(s, frac) {
			return grams, "g", true
		}
	}

	return 0, "", false
}

// ToGrams converts a weight value/unit pair to grams. Unknown units report
// ok=false so callers can skip the weight signal instead of mis-scoring it.
func ToGrams(value float64, unit string) (float64, bool) {
	factor, ok := gramsPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, false
	}
	return value * factor, true
}
