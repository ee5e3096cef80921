package query

import (
	"net/url"
	"testing"
)

func TestParseSearchParams_Defaults(t *testing.T) {
	p, err := ParseSearchParams(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", p.Page, p.Limit)
	}
	if p.SortBy != SortDate || p.Order != "desc" {
		t.Fatalf("expected default sort date desc, got %s %s", p.SortBy, p.Order)
	}
}

func TestParseSearchParams_DefaultSortWithQuery(t *testing.T) {
	p, err := ParseSearchParams(url.Values{"q": {"loft"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SortBy != SortRelevance {
		t.Fatalf("expected relevance sort when q present, got %s", p.SortBy)
	}
}

func TestParseSearchParams_DefaultSortWithGeo(t *testing.T) {
	p, err := ParseSearchParams(url.Values{"lat": {"1"}, "lon": {"2"}, "radius_km": {"5"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SortBy != SortDistance {
		t.Fatalf("expected distance sort when geo active, got %s", p.SortBy)
	}
	if p.Order != "asc" {
		t.Fatalf("expected distance sort to default to asc, got %s", p.Order)
	}
}

func TestParseSearchParams_IncompleteGeoTripleRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"lat": {"1"}, "lon": {"2"}})
	if err == nil {
		t.Fatalf("expected error for incomplete geo triple")
	}
}

func TestParseSearchParams_NonPositiveRadiusRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"lat": {"1"}, "lon": {"2"}, "radius_km": {"0"}})
	if err == nil {
		t.Fatalf("expected error for non-positive radius")
	}
}

func TestParseSearchParams_InvalidPageRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"page": {"0"}})
	if err == nil {
		t.Fatalf("expected error for page < 1")
	}
	_, err = ParseSearchParams(url.Values{"page": {"-1"}})
	if err == nil {
		t.Fatalf("expected error for negative page")
	}
}

func TestParseSearchParams_InvalidLimitRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"limit": {"0"}})
	if err == nil {
		t.Fatalf("expected error for limit < 1")
	}
}

func TestParseSearchParams_InvalidSortByRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"sort_by": {"popularity"}})
	if err == nil {
		t.Fatalf("expected error for invalid sort_by")
	}
}

func TestParseSearchParams_DistanceSortWithoutGeoRejected(t *testing.T) {
	_, err := ParseSearchParams(url.Values{"sort_by": {"distance"}})
	if err == nil {
		t.Fatalf("expected error for sort_by=distance without lat/lon/radius_km")
	}
}

func TestParseSearchParams_DistanceSortWithGeoAccepted(t *testing.T) {
	p, err := ParseSearchParams(url.Values{"sort_by": {"distance"}, "lat": {"1"}, "lon": {"2"}, "radius_km": {"5"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SortBy != SortDistance {
		t.Fatalf("expected distance sort, got %s", p.SortBy)
	}
}

func TestParseSearchParams_AmenitiesLowercasedAndSplit(t *testing.T) {
	p, err := ParseSearchParams(url.Values{"amenities": {"Pool, Gym ,Parking"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"pool", "gym", "parking"}
	if len(p.Amenities) != len(want) {
		t.Fatalf("expected %v, got %v", want, p.Amenities)
	}
	for i := range want {
		if p.Amenities[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, p.Amenities)
		}
	}
}

func TestParseSearchParams_EmptyAmenitiesDoesNotFilter(t *testing.T) {
	p, err := ParseSearchParams(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Amenities) != 0 {
		t.Fatalf("expected no amenity filter, got %v", p.Amenities)
	}
}

func TestCacheParams_OrderIndependentSameValues(t *testing.T) {
	a, err := ParseSearchParams(url.Values{"min_price": {"100"}, "max_price": {"200"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ParseSearchParams(url.Values{"max_price": {"200"}, "min_price": {"100"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ma, mb := a.CacheParams(), b.CacheParams()
	if len(ma) != len(mb) {
		t.Fatalf("expected identical cache param maps")
	}
	for k, v := range ma {
		if mb[k] != v {
			t.Fatalf("mismatch on %s: %s vs %s", k, v, mb[k])
		}
	}
}
