package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	studioRe      = regexp.MustCompile(`(?i)studio`)
	bedroomsRe    = regexp.MustCompile(`(?i)(\d+)\s*(bed|br|bedroom)`)
	bareIntRe     = regexp.MustCompile(`\d+`)
	bathroomsRe   = regexp.MustCompile(`(?i)([0-9.]+)\s*(bath|ba|bathroom)`)
	bareDecimalRe = regexp.MustCompile(`[0-9.]+`)
)

// ParseBedrooms extracts a bedroom count from free text. "Studio" yields 0;
// otherwise an explicit "N bed(s)/br/bedroom(s)" pattern is preferred, and a
// bare integer is used as a fallback. No match yields nil.
func ParseBedrooms(text string) *int {
	if studioRe.MatchString(text) {
		zero := 0
		return &zero
	}

	if m := bedroomsRe.FindStringSubmatch(text); len(m) >= 2 {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return &n
		}
	}

	if m := bareIntRe.FindString(text); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return &n
		}
	}

	return nil
}

// ParseBathrooms extracts a bathroom count (which may be a half-step, e.g.
// 2.5) from free text, preferring an explicit "N bath(s)/ba/bathroom(s)"
// pattern and falling back to a bare decimal. No match yields nil.
func ParseBathrooms(text string) *float64 {
	if m := bathroomsRe.FindStringSubmatch(text); len(m) >= 2 {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return &v
		}
	}

	if m := bareDecimalRe.FindString(text); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return &v
		}
	}

	return nil
}

// normalizeWhitespace collapses runs of whitespace, used by hygiene rules
// on free-text fields.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
