package normalize

import "time"

// dateLayouts are tried in order when coercing a source-provided date_posted
// string. Scraped dates arrive in whatever format the source site used.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// ParseDatePosted coerces a source-provided date string to UTC. A value
// that parses under none of the known layouts yields nil rather than an
// error, per the normalization engine's graceful-degrade rule.
func ParseDatePosted(text string) *time.Time {
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
