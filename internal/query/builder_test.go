package query

import (
	"net/url"
	"testing"
)

func TestBuildSearchQuery_ImplicitStatusFilter(t *testing.T) {
	p, _ := ParseSearchParams(url.Values{})
	q := BuildSearchQuery(p)
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]map[string]any)
	if len(filters) == 0 {
		t.Fatalf("expected at least the implicit status filter")
	}
	term := filters[0]["term"].(map[string]any)
	if term["status"] != "active" {
		t.Fatalf("expected implicit status=active filter, got %v", term)
	}
}

func TestBuildSearchQuery_PriceRangeFilter(t *testing.T) {
	p, err := ParseSearchParams(url.Values{
		"min_price": {"1500"}, "max_price": {"2500"}, "sort_by": {"price"}, "order": {"asc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := BuildSearchQuery(p)
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]map[string]any)

	var found bool
	for _, f := range filters {
		rangeClause, ok := f["range"].(map[string]any)
		if !ok {
			continue
		}
		priceRange, ok := rangeClause["normalized_price_usd"].(map[string]any)
		if !ok {
			continue
		}
		if priceRange["gte"] == float64(1500) && priceRange["lte"] == float64(2500) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected price range filter 1500-2500, got %v", filters)
	}

	sort := q["sort"].([]map[string]any)
	primary := sort[0]["normalized_price_usd"].(map[string]any)
	if primary["order"] != "asc" {
		t.Fatalf("expected ascending price sort, got %v", primary)
	}
}

func TestBuildSearchQuery_FreeTextBoosts(t *testing.T) {
	p, _ := ParseSearchParams(url.Values{"q": {"sunny loft"}})
	q := BuildSearchQuery(p)
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]map[string]any)
	if len(must) != 1 {
		t.Fatalf("expected one must clause for free text, got %d", len(must))
	}
	mm := must[0]["multi_match"].(map[string]any)
	fields := mm["fields"].([]string)
	if fields[0] != "title^3" {
		t.Fatalf("expected title boosted 3x first, got %v", fields)
	}
}

func TestBuildSearchQuery_AmenitiesAndCombined(t *testing.T) {
	p, _ := ParseSearchParams(url.Values{"amenities": {"pool,gym"}})
	q := BuildSearchQuery(p)
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]map[string]any)

	var amenityTerms []string
	for _, f := range filters {
		term, ok := f["term"].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := term["amenities"].(string); ok {
			amenityTerms = append(amenityTerms, v)
		}
	}
	if len(amenityTerms) != 2 {
		t.Fatalf("expected two AND-combined amenity term filters, got %v", amenityTerms)
	}
}

func TestBuildSearchQuery_GeoDistanceFilter(t *testing.T) {
	p, err := ParseSearchParams(url.Values{"lat": {"40.7"}, "lon": {"-74.0"}, "radius_km": {"10"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := BuildSearchQuery(p)
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]map[string]any)

	var found bool
	for _, f := range filters {
		if _, ok := f["geo_distance"]; ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected geo_distance filter, got %v", filters)
	}
}

func TestBuildSearchQuery_Pagination(t *testing.T) {
	p, _ := ParseSearchParams(url.Values{"page": {"3"}, "limit": {"20"}})
	q := BuildSearchQuery(p)
	if q["from"] != 40 {
		t.Fatalf("expected from=40 for page 3 limit 20, got %v", q["from"])
	}
	if q["size"] != 20 {
		t.Fatalf("expected size=20, got %v", q["size"])
	}
}
