package query

import (
	"encoding/json"
	"fmt"

	"github.com/user/listing-pipeline/internal/domain"
)

// SearchResponse is the shape of GET /properties' JSON body.
type SearchResponse struct {
	Items      []*domain.SearchDocument `json:"items"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
	TotalItems int                      `json:"total_items"`
	Limit      int                      `json:"limit"`
	NextPage   *int                     `json:"next_page"`
	PrevPage   *int                     `json:"prev_page"`
}

type openSearchHits struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// DecodeSearchResponse turns a raw OpenSearch search response plus the
// request's pagination parameters into the API's paginated envelope, per
// spec §4.5 item 4: items, current page, total pages, total items, limit,
// next/prev (or null at boundaries).
func DecodeSearchResponse(raw []byte, p SearchParams) (*SearchResponse, error) {
	var decoded openSearchHits
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("query: decode search response: %w", err)
	}

	items := make([]*domain.SearchDocument, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		doc := h.Source
		items = append(items, &doc)
	}

	total := decoded.Hits.Total.Value
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	resp := &SearchResponse{
		Items:      items,
		Page:       p.Page,
		TotalPages: totalPages,
		TotalItems: total,
		Limit:      p.Limit,
	}
	if p.Page < totalPages {
		next := p.Page + 1
		resp.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		resp.PrevPage = &prev
	}
	return resp, nil
}

// MetadataResponse is the shape of GET /properties/filters/metadata.
type MetadataResponse struct {
	Price     RangeStats   `json:"price"`
	Bedrooms  RangeStats   `json:"bedrooms"`
	Bathrooms RangeStats   `json:"bathrooms"`
	Area      RangeStats   `json:"area"`

	PropertyTypes []TermBucket `json:"property_types"`
	Amenities     []TermBucket `json:"amenities"`
	Locations     []TermBucket `json:"locations"`
}

// RangeStats is a min/max/avg bundle for one numeric facet.
type RangeStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// TermBucket is one term-facet entry: a key and its document count.
type TermBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

type openSearchAggs struct {
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type statsAggJSON struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

type termsAggJSON struct {
	Buckets []TermBucket `json:"buckets"`
}

// DecodeMetadataResponse turns a raw OpenSearch aggregation response into
// the facet bundle served by GET /properties/filters/metadata.
func DecodeMetadataResponse(raw []byte) (*MetadataResponse, error) {
	var decoded openSearchAggs
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("query: decode metadata response: %w", err)
	}

	var resp MetadataResponse
	if stats, err := decodeStats(decoded.Aggregations["price_stats"]); err == nil {
		resp.Price = stats
	}
	if stats, err := decodeStats(decoded.Aggregations["bedrooms_stats"]); err == nil {
		resp.Bedrooms = stats
	}
	if stats, err := decodeStats(decoded.Aggregations["bathrooms_stats"]); err == nil {
		resp.Bathrooms = stats
	}
	if stats, err := decodeStats(decoded.Aggregations["area_stats"]); err == nil {
		resp.Area = stats
	}
	resp.PropertyTypes = decodeTerms(decoded.Aggregations["property_types"])
	resp.Amenities = decodeTerms(decoded.Aggregations["amenities"])
	resp.Locations = decodeTerms(decoded.Aggregations["locations"])

	return &resp, nil
}

func decodeStats(raw json.RawMessage) (RangeStats, error) {
	if raw == nil {
		return RangeStats{}, fmt.Errorf("missing")
	}
	var s statsAggJSON
	if err := json.Unmarshal(raw, &s); err != nil {
		return RangeStats{}, err
	}
	return RangeStats{Min: s.Min, Max: s.Max, Avg: s.Avg}, nil
}

func decodeTerms(raw json.RawMessage) []TermBucket {
	if raw == nil {
		return nil
	}
	var t termsAggJSON
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil
	}
	return t.Buckets
}
