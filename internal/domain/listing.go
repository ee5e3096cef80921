// Package domain holds the data types shared across the ingestion pipeline
// and the query API. It has no dependency on any store, queue, or HTTP
// package so it can be imported from anywhere without cycles.
package domain

import "time"

// Status is the lifecycle state of a Listing.
type Status string

const (
	StatusActive            Status = "active"
	StatusPotentialDuplicate Status = "potential_duplicate"
	StatusMerged             Status = "merged"
	StatusInactive           Status = "inactive"
)

// Listing is the de-duplicated master record for a single property
// observation, keyed by SourceURL.
type Listing struct {
	ID         int64
	SourceURL  string
	SourceName string

	Title       string
	Description string
	Images      []string

	PriceOriginalNumeric *float64
	PriceOriginalText    string
	CurrencyOriginal     *string
	NormalizedPriceUSD   *float64

	AddressRaw      string
	LocationText    string
	Latitude        *float64
	Longitude       *float64
	GeocodedPayload []byte

	Bedrooms           *int
	Bathrooms          *float64
	AreaValue          *float64
	AreaUnit           *string
	NormalizedAreaSqft *float64

	PropertyType *string
	Amenities    []string

	DatePosted      *time.Time
	ScrapeTimestamp time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Status        Status
	DuplicateOfID *int64
}

// HasCoordinates reports whether both latitude and longitude are present,
// per the invariant that they are always both present or both absent.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// SearchDocument mirrors a Listing plus the derived geo-point pair used by
// the search index. It is keyed by SourceURL, not the numeric ID.
type SearchDocument struct {
	SourceURL  string `json:"source_url"`
	SourceName string `json:"source_name"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`

	PriceOriginalNumeric *float64 `json:"price_original_numeric,omitempty"`
	PriceOriginalText    string   `json:"price_original_text,omitempty"`
	CurrencyOriginal     *string  `json:"currency_original,omitempty"`
	NormalizedPriceUSD   *float64 `json:"normalized_price_usd,omitempty"`

	AddressRaw         string       `json:"address_raw,omitempty"`
	LocationText       string       `json:"location_text,omitempty"`
	LocationCoordinates *GeoPoint   `json:"location_coordinates,omitempty"`

	Bedrooms           *int     `json:"bedrooms,omitempty"`
	Bathrooms          *float64 `json:"bathrooms,omitempty"`
	AreaOriginalValue  *float64 `json:"area_original_value,omitempty"`
	AreaUnitOriginal   *string  `json:"area_unit_original,omitempty"`
	NormalizedAreaSqft *float64 `json:"normalized_area_sqft,omitempty"`

	PropertyType *string  `json:"property_type,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`

	DatePosted      *time.Time `json:"date_posted,omitempty"`
	ScrapeTimestamp time.Time  `json:"scrape_timestamp"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Status                 Status `json:"status"`
	DuplicateOfPropertyID  *int64 `json:"duplicate_of_property_id,omitempty"`
}

// GeoPoint is a lat/lon pair in the shape search engines expect for geo
// queries and sorting.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ToSearchDocument projects a Listing onto its derived search index view.
// Per invariant 6, this projection is bit-identical to the index in steady
// state, so this is the single source of truth for what gets indexed.
func (l *Listing) ToSearchDocument() *SearchDocument {
	doc := &SearchDocument{
		SourceURL:            l.SourceURL,
		SourceName:           l.SourceName,
		Title:                l.Title,
		Description:          l.Description,
		Images:               l.Images,
		PriceOriginalNumeric: l.PriceOriginalNumeric,
		PriceOriginalText:    l.PriceOriginalText,
		CurrencyOriginal:     l.CurrencyOriginal,
		NormalizedPriceUSD:   l.NormalizedPriceUSD,
		AddressRaw:           l.AddressRaw,
		LocationText:         l.LocationText,
		Bedrooms:             l.Bedrooms,
		Bathrooms:            l.Bathrooms,
		AreaOriginalValue:    l.AreaValue,
		AreaUnitOriginal:     l.AreaUnit,
		NormalizedAreaSqft:   l.NormalizedAreaSqft,
		PropertyType:         l.PropertyType,
		Amenities:            l.Amenities,
		DatePosted:           l.DatePosted,
		ScrapeTimestamp:      l.ScrapeTimestamp,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
		Status:               l.Status,
		DuplicateOfPropertyID: l.DuplicateOfID,
	}
	if l.HasCoordinates() {
		doc.LocationCoordinates = &GeoPoint{Lat: *l.Latitude, Lon: *l.Longitude}
	}
	return doc
}
