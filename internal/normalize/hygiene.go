package normalize

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const defaultTitle = "Untitled Listing"

// DefaultTitle returns the title used when a message omits one.
func DefaultTitle() string { return defaultTitle }

// SyntheticSourceURL builds a synthetic, globally-unique source_url for a
// message that omitted one, preserving the source_url uniqueness invariant.
func SyntheticSourceURL(now time.Time) string {
	return fmt.Sprintf("missing_url_%d_%d", now.UnixNano(), rand.Int63())
}

// CoerceStringList decodes a raw JSON value that is either a bare string or
// a JSON array of strings into an ordered []string, per the "images" field
// hygiene rule: a scalar string becomes a single-element sequence.
func CoerceStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var asSlice []string
	if err := json.Unmarshal(raw, &asSlice); err == nil {
		return asSlice
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			return nil
		}
		return []string{asString}
	}

	return nil
}

// CoerceAmenitySet decodes a raw JSON value that is either a JSON array of
// strings or a comma-separated string into a deduplicated set of trimmed,
// non-empty amenity names, per the "amenities" field hygiene rule.
func CoerceAmenitySet(raw []byte) []string {
	var items []string

	var asSlice []string
	if err := json.Unmarshal(raw, &asSlice); err == nil {
		items = asSlice
	} else {
		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			items = strings.Split(asString, ",")
		}
	}

	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// NormalizePropertyType trims and lower-cases a property type string. An
// empty result after trimming yields nil (property_type absent).
func NormalizePropertyType(text string) *string {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
