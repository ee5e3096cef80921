// Package normalize implements the pure, deterministic normalization
// engine (C2): parsing price/area/bed/bath from free text, unit/currency
// conversion, date coercion, and input hygiene. No function in this
// package performs I/O.
package normalize

import (
	"strings"
	"time"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/queue"
)

// Normalize turns a raw queue message into a normalized Listing. The
// returned Listing has ScrapeTimestamp set to now; Status, ID, CreatedAt
// and UpdatedAt are left at their zero values and are assigned later by
// the enrichment/dedup stage and the store.
func Normalize(msg queue.Message, now time.Time) domain.Listing {
	listing := domain.Listing{
		SourceName:       strings.TrimSpace(msg.SourceName),
		Title:            hygienicTitle(msg.Title),
		Description:      msg.Description,
		Images:           CoerceStringList(msg.Images.Raw),
		PriceOriginalText: priceText(msg),
		AddressRaw:        hygienicAddress(msg),
		LocationText:      hygienicLocationText(msg),
		Amenities:         CoerceAmenitySet(msg.Amenities.Raw),
		PropertyType:      NormalizePropertyType(msg.PropertyType),
		ScrapeTimestamp:   now,
	}

	listing.SourceURL = hygienicSourceURL(msg.SourceURL, now)

	amount, currency := ParsePrice(priceText(msg))
	listing.PriceOriginalNumeric = amount
	listing.CurrencyOriginal = currency
	if amount != nil && currency != nil {
		if usd, ok := ConvertToUSD(*amount, *currency); ok {
			listing.NormalizedPriceUSD = usd
		}
	}

	areaValue, areaUnit := ParseArea(areaText(msg))
	listing.AreaValue = areaValue
	listing.AreaUnit = areaUnit
	if areaValue != nil && areaUnit != nil {
		if sqft, ok := ConvertToSqft(*areaValue, *areaUnit); ok {
			listing.NormalizedAreaSqft = &sqft
		}
	}

	listing.Bedrooms = ParseBedrooms(msg.BedroomsText)
	listing.Bathrooms = ParseBathrooms(msg.BathroomsText)
	listing.DatePosted = ParseDatePosted(msg.DatePosted)

	return listing
}

func hygienicTitle(title string) string {
	trimmed := normalizeWhitespace(title)
	if trimmed == "" {
		return DefaultTitle()
	}
	return trimmed
}

func hygienicSourceURL(sourceURL string, now time.Time) string {
	trimmed := strings.TrimSpace(sourceURL)
	if trimmed == "" {
		return SyntheticSourceURL(now)
	}
	return trimmed
}

func hygienicAddress(msg queue.Message) string {
	if msg.Address != "" {
		return normalizeWhitespace(msg.Address)
	}
	return normalizeWhitespace(msg.Location)
}

func hygienicLocationText(msg queue.Message) string {
	if msg.LocationText != "" {
		return normalizeWhitespace(msg.LocationText)
	}
	return hygienicAddress(msg)
}

func priceText(msg queue.Message) string {
	if msg.PriceText != "" {
		return msg.PriceText
	}
	return msg.Price
}

func areaText(msg queue.Message) string {
	if msg.AreaText != "" {
		return msg.AreaText
	}
	return msg.Area
}
