package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// areaUnitTokens maps lowercase tokens found in free text to a canonical
// unit label. Checked in the order sqft, m², acres, matching the spec.
var areaUnitTokens = []struct {
	tokens []string
	unit   string
}{
	{[]string{"sqft", "sq.ft", "ft2"}, "sqft"},
	{[]string{"m²", "sqm", "m2"}, "m²"},
	{[]string{"acre", "acres"}, "acres"},
}

// sqftFactors converts a canonical unit to square feet.
var sqftFactors = map[string]float64{
	"sqft":  1,
	"m²":    10.7639,
	"acres": 43560,
}

var areaDigitsRe = regexp.MustCompile(`[0-9.]+`)

// DetectAreaUnit scans lowercased text for a known area unit token.
func DetectAreaUnit(lowerText string) *string {
	for _, group := range areaUnitTokens {
		for _, tok := range group.tokens {
			if strings.Contains(lowerText, tok) {
				unit := group.unit
				return &unit
			}
		}
	}
	return nil
}

// ParseArea extracts a numeric area value and its unit from free-form text,
// e.g. "900 sqft" -> (900, "sqft"); "1 acres" -> (1, "acres").
func ParseArea(text string) (value *float64, unit *string) {
	lower := strings.ToLower(text)
	unit = DetectAreaUnit(lower)

	cleaned := lower
	for _, group := range areaUnitTokens {
		for _, tok := range group.tokens {
			cleaned = strings.ReplaceAll(cleaned, tok, "")
		}
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	match := areaDigitsRe.FindString(cleaned)
	if match == "" {
		return nil, unit
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil, unit
	}
	return &val, unit
}

// ConvertToSqft converts an area value in the given unit to square feet.
// An unrecognized unit yields no value.
func ConvertToSqft(value float64, unit string) (sqft float64, ok bool) {
	factor, known := sqftFactors[unit]
	if !known {
		return 0, false
	}
	return value * factor, true
}
