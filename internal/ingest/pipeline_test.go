package ingest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/geocoder"
	"github.com/user/listing-pipeline/internal/queue"
	fakestore "github.com/user/listing-pipeline/internal/store/fake"
	"github.com/user/listing-pipeline/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

func newTestPipeline(listings *fakestore.ListingStore, search *fakestore.SearchIndex, geo geocoder.Geocoder) *Pipeline {
	p := NewPipeline(listings, search, geo)
	p.Now = fixedNow
	return p
}

func TestProcess_HappyPath(t *testing.T) {
	listings := fakestore.NewListingStore()
	search := fakestore.NewSearchIndex()
	geo := &geocoder.Fake{Results: map[string]*geocoder.Result{
		"123 Main St": {Lat: 40.7, Lon: -74.0},
	}}
	p := newTestPipeline(listings, search, geo)

	msg := queue.Message{
		Title:         "Cozy 2BR apartment",
		PriceText:     "$2,000/mo",
		Address:       "123 Main St",
		BedroomsText:  "2 Beds",
		BathroomsText: "1 Bath",
		AreaText:      "900 sqft",
		SourceURL:     "https://example.com/listing/1",
		SourceName:    "example",
	}

	if err := p.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	l, err := listings.Get(context.Background(), msg.SourceURL)
	if err != nil || l == nil {
		t.Fatalf("expected listing to be stored, err=%v", err)
	}
	if l.Status != domain.StatusActive {
		t.Fatalf("expected active status, got %s", l.Status)
	}
	if l.Latitude == nil || *l.Latitude != 40.7 {
		t.Fatalf("expected geocoded latitude, got %v", l.Latitude)
	}
	if l.NormalizedPriceUSD == nil || *l.NormalizedPriceUSD != 2000 {
		t.Fatalf("expected normalized price 2000, got %v", l.NormalizedPriceUSD)
	}

	doc, ok := search.Docs[msg.SourceURL]
	if !ok {
		t.Fatalf("expected search document to be indexed")
	}
	if doc.LocationCoordinates == nil {
		t.Fatalf("expected search document to carry coordinates")
	}
}

func TestProcess_GeocoderFailureStillWrites(t *testing.T) {
	listings := fakestore.NewListingStore()
	search := fakestore.NewSearchIndex()
	geo := &geocoder.Fake{} // no results, no error: simulates a miss
	p := newTestPipeline(listings, search, geo)

	msg := queue.Message{
		Title:     "Studio downtown",
		Address:   "Unknown Address",
		SourceURL: "https://example.com/listing/2",
	}

	if err := p.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	l, _ := listings.Get(context.Background(), msg.SourceURL)
	if l == nil {
		t.Fatalf("expected listing to be stored despite missing coordinates")
	}
	if l.HasCoordinates() {
		t.Fatalf("expected no coordinates")
	}
	if l.Status != domain.StatusActive {
		t.Fatalf("expected active (dedup skipped without coordinates), got %s", l.Status)
	}
}

func TestProcess_RelationalFailureAbortsBeforeSearchWrite(t *testing.T) {
	listings := fakestore.NewListingStore()
	listings.UpsertErr = context.DeadlineExceeded
	search := fakestore.NewSearchIndex()
	p := newTestPipeline(listings, search, &geocoder.Fake{})

	msg := queue.Message{Title: "Test", SourceURL: "https://example.com/listing/3"}

	if err := p.Process(context.Background(), msg); err == nil {
		t.Fatalf("expected error when relational store fails")
	}
	if len(search.Docs) != 0 {
		t.Fatalf("expected no search write when relational write failed")
	}
}

func TestProcess_DuplicateDetected(t *testing.T) {
	listings := fakestore.NewListingStore()
	search := fakestore.NewSearchIndex()
	geo := &geocoder.Fake{Results: map[string]*geocoder.Result{
		"1 Park Ave": {Lat: 10.0, Lon: 20.0},
	}}
	p := newTestPipeline(listings, search, geo)

	existing := &domain.Listing{
		SourceURL:  "https://example.com/listing/existing",
		SourceName: "other-source",
		Title:      "Sunny Loft",
		Latitude:   ptr(10.0),
		Longitude:  ptr(20.0),
		Status:     domain.StatusActive,
	}
	if _, err := listings.Upsert(context.Background(), existing); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	msg := queue.Message{
		Title:      "Sunny Loft",
		Address:    "1 Park Ave",
		SourceURL:  "https://example.com/listing/new",
		SourceName: "example",
	}

	if err := p.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	l, _ := listings.Get(context.Background(), msg.SourceURL)
	if l.Status != domain.StatusPotentialDuplicate {
		t.Fatalf("expected potential_duplicate, got %s", l.Status)
	}
	if l.DuplicateOfID == nil {
		t.Fatalf("expected duplicate_of_id to be set")
	}
}

func ptr(v float64) *float64 { return &v }
