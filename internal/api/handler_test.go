package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/query"
	fakestore "github.com/user/listing-pipeline/internal/store/fake"
	"github.com/user/listing-pipeline/pkg/metrics"
)

func init() {
	metrics.Init()
}

// passthroughCache never hits, always calls fn and returns the result —
// enough to exercise the handler logic without a live Redis instance.
type passthroughCache struct{}

func (passthroughCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, bool, error) {
	body, err := fn()
	return body, false, err
}

func seedListing(t *testing.T, search *fakestore.SearchIndex, l *domain.Listing) {
	t.Helper()
	if err := search.Upsert(context.Background(), l.ToSearchDocument()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func newTestHandler(search *fakestore.SearchIndex) *Handler {
	return &Handler{
		Search:        search,
		Cache:         passthroughCache{},
		PropertiesTTL: time.Minute,
		MetadataTTL:   time.Minute,
	}
}

func TestHandleSearch_PriceFilterScenario(t *testing.T) {
	search := fakestore.NewSearchIndex()
	seedListing(t, search, &domain.Listing{
		SourceURL: "https://example.com/1", Title: "A", Status: domain.StatusActive,
		NormalizedPriceUSD: floatPtr(1200),
	})
	seedListing(t, search, &domain.Listing{
		SourceURL: "https://example.com/2", Title: "B", Status: domain.StatusActive,
		NormalizedPriceUSD: floatPtr(2000),
	})
	seedListing(t, search, &domain.Listing{
		SourceURL: "https://example.com/3", Title: "C", Status: domain.StatusActive,
		NormalizedPriceUSD: floatPtr(3500),
	})

	h := newTestHandler(search)

	req := httptest.NewRequest(http.MethodGet, "/properties?min_price=1500&max_price=2500&sort_by=price&order=asc", nil)
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp query.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalItems != 1 {
		t.Fatalf("expected exactly 1 match, got %d", resp.TotalItems)
	}
	if resp.TotalPages != 1 || resp.Page != 1 {
		t.Fatalf("expected page 1 of 1, got page=%d totalPages=%d", resp.Page, resp.TotalPages)
	}
	if len(resp.Items) != 1 || resp.Items[0].SourceURL != "https://example.com/2" {
		t.Fatalf("expected the 2000 listing, got %v", resp.Items)
	}
}

func TestHandleSearch_InvalidPageReturns400(t *testing.T) {
	search := fakestore.NewSearchIndex()
	h := newTestHandler(search)

	req := httptest.NewRequest(http.MethodGet, "/properties?page=0", nil)
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleSearch_InvalidGeoTripleReturns400(t *testing.T) {
	search := fakestore.NewSearchIndex()
	h := newTestHandler(search)

	req := httptest.NewRequest(http.MethodGet, "/properties?lat=1&lon=2", nil)
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleMetadata_ReturnsFacetBundle(t *testing.T) {
	search := fakestore.NewSearchIndex()
	seedListing(t, search, &domain.Listing{
		SourceURL: "https://example.com/1", Title: "A", Status: domain.StatusActive,
		NormalizedPriceUSD: floatPtr(1000), PropertyType: strPtr("apartment"),
		Amenities: []string{"pool", "gym"},
	})
	seedListing(t, search, &domain.Listing{
		SourceURL: "https://example.com/2", Title: "B", Status: domain.StatusActive,
		NormalizedPriceUSD: floatPtr(2000), PropertyType: strPtr("house"),
		Amenities: []string{"pool"},
	})

	h := newTestHandler(search)
	req := httptest.NewRequest(http.MethodGet, "/properties/filters/metadata", nil)
	w := httptest.NewRecorder()
	h.HandleMetadata(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp query.MetadataResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Price.Min != 1000 || resp.Price.Max != 2000 {
		t.Fatalf("expected price min/max 1000/2000, got %+v", resp.Price)
	}
	if len(resp.PropertyTypes) != 2 {
		t.Fatalf("expected 2 property type buckets, got %v", resp.PropertyTypes)
	}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
