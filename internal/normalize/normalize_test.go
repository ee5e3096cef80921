package normalize

import (
	"testing"
	"time"

	"github.com/user/listing-pipeline/internal/queue"
)

func TestNormalizeHappyPath(t *testing.T) {
	msg := queue.Message{
		SourceURL:     "u1",
		SourceName:    "S1",
		Title:         "Sunny 2BR",
		PriceText:     "$2,000/month",
		BedroomsText:  "2 Beds",
		BathroomsText: "1 Bath",
		AreaText:      "900 sqft",
		LocationText:  "Seattle, WA",
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	listing := Normalize(msg, now)

	if listing.SourceURL != "u1" {
		t.Errorf("SourceURL = %q, want u1", listing.SourceURL)
	}
	if listing.NormalizedPriceUSD == nil || *listing.NormalizedPriceUSD != 2000 {
		t.Errorf("NormalizedPriceUSD = %v, want 2000", listing.NormalizedPriceUSD)
	}
	if listing.Bedrooms == nil || *listing.Bedrooms != 2 {
		t.Errorf("Bedrooms = %v, want 2", listing.Bedrooms)
	}
	if listing.Bathrooms == nil || *listing.Bathrooms != 1 {
		t.Errorf("Bathrooms = %v, want 1", listing.Bathrooms)
	}
	if listing.NormalizedAreaSqft == nil || *listing.NormalizedAreaSqft != 900 {
		t.Errorf("NormalizedAreaSqft = %v, want 900", listing.NormalizedAreaSqft)
	}
	if listing.PriceOriginalNumeric == nil || listing.CurrencyOriginal == nil {
		t.Error("expected price_original_numeric and currency_original to be present")
	}
}

func TestNormalizeMissingSourceURL(t *testing.T) {
	msg := queue.Message{Title: "Untitled"}
	now := time.Now()
	listing := Normalize(msg, now)

	if listing.SourceURL == "" {
		t.Fatal("expected a synthetic source_url to be assigned")
	}
}
