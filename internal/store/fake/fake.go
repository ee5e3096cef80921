// Package fake provides in-memory implementations of the store ports, used
// by usecase-level tests that would otherwise need live Postgres/OpenSearch.
package fake

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/store"
)

// ListingStore is an in-memory store.ListingStore.
type ListingStore struct {
	mu       sync.Mutex
	byURL    map[string]*domain.Listing
	nextID   int64
	UpsertErr error
	FindErr   error
}

// NewListingStore returns an empty in-memory ListingStore.
func NewListingStore() *ListingStore {
	return &ListingStore{byURL: make(map[string]*domain.Listing)}
}

// Upsert stores a copy of listing keyed by SourceURL, assigning an ID on
// first insert and reusing it on update.
func (s *ListingStore) Upsert(ctx context.Context, listing *domain.Listing) (int64, error) {
	if s.UpsertErr != nil {
		return 0, s.UpsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *listing
	if existing, ok := s.byURL[listing.SourceURL]; ok {
		copied.ID = existing.ID
	} else {
		s.nextID++
		copied.ID = s.nextID
	}
	s.byURL[listing.SourceURL] = &copied
	return copied.ID, nil
}

// FindDuplicateCandidates does a naive linear scan for active listings from
// a different source with a case-insensitive exact title match, good
// enough to exercise dedup logic in tests without pg_trgm.
func (s *ListingStore) FindDuplicateCandidates(ctx context.Context, newTitle, excludeSourceName string,
	lat, lon, latThreshold, lonThreshold, simThreshold float64) ([]store.DuplicateCandidate, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.DuplicateCandidate
	for _, l := range s.byURL {
		if l.Status != domain.StatusActive || l.SourceName == excludeSourceName {
			continue
		}
		if !l.HasCoordinates() {
			continue
		}
		if absDiff(*l.Latitude, lat) > latThreshold || absDiff(*l.Longitude, lon) > lonThreshold {
			continue
		}
		if !strings.EqualFold(l.Title, newTitle) {
			continue
		}
		out = append(out, store.DuplicateCandidate{ID: l.ID, Similarity: 1.0})
	}
	return out, nil
}

// Get returns the listing stored under sourceURL, or nil if absent.
func (s *ListingStore) Get(ctx context.Context, sourceURL string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byURL[sourceURL]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// SearchIndex is an in-memory store.SearchIndex.
type SearchIndex struct {
	mu      sync.Mutex
	Docs    map[string]*domain.SearchDocument
	UpsertErr error
}

// NewSearchIndex returns an empty in-memory SearchIndex.
func NewSearchIndex() *SearchIndex {
	return &SearchIndex{Docs: make(map[string]*domain.SearchDocument)}
}

// EnsureIndex is a no-op; the in-memory map needs no provisioning.
func (s *SearchIndex) EnsureIndex(ctx context.Context) error {
	return nil
}

// Upsert stores a copy of doc keyed by SourceURL.
func (s *SearchIndex) Upsert(ctx context.Context, doc *domain.SearchDocument) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *doc
	s.Docs[doc.SourceURL] = &copied
	return nil
}

// Search interprets the subset of OpenSearch request-body shapes produced
// by internal/query (bool filter/must, sort, from/size, stats/terms aggs)
// against the in-memory document set, and marshals a response shaped like
// a real OpenSearch search response so the query layer's decoding logic
// is exercised identically against both implementations.
func (s *SearchIndex) Search(ctx context.Context, body map[string]any) ([]byte, error) {
	s.mu.Lock()
	docs := make([]*domain.SearchDocument, 0, len(s.Docs))
	for _, d := range s.Docs {
		docs = append(docs, d)
	}
	s.mu.Unlock()

	matched := filterDocs(docs, body)

	if aggs, ok := body["aggs"].(map[string]any); ok {
		return json.Marshal(map[string]any{
			"hits":         map[string]any{"total": map[string]any{"value": len(matched)}, "hits": []any{}},
			"aggregations": buildAggregations(matched, aggs),
		})
	}

	sortSearchDocs(matched, body["sort"])

	from, _ := body["from"].(int)
	size, _ := body["size"].(int)
	page := matched
	if from < len(page) {
		page = page[from:]
	} else {
		page = nil
	}
	if size >= 0 && size < len(page) {
		page = page[:size]
	}

	hits := make([]map[string]any, 0, len(page))
	for _, d := range page {
		hits = append(hits, map[string]any{"_source": d, "_score": 1.0})
	}

	return json.Marshal(map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(matched)},
			"hits":  hits,
		},
	})
}

func filterDocs(docs []*domain.SearchDocument, body map[string]any) []*domain.SearchDocument {
	query, _ := body["query"].(map[string]any)
	boolQuery, _ := query["bool"].(map[string]any)

	var out []*domain.SearchDocument
	for _, d := range docs {
		if matchesBool(d, boolQuery) {
			out = append(out, d)
		}
	}
	return out
}

func matchesBool(d *domain.SearchDocument, boolQuery map[string]any) bool {
	if boolQuery == nil {
		return true
	}
	if filters, ok := boolQuery["filter"].([]map[string]any); ok {
		for _, f := range filters {
			if !matchesFilter(d, f) {
				return false
			}
		}
	}
	if mustClauses, ok := boolQuery["must"].([]map[string]any); ok {
		for _, m := range mustClauses {
			if !matchesMust(d, m) {
				return false
			}
		}
	}
	return true
}

func matchesFilter(d *domain.SearchDocument, f map[string]any) bool {
	if term, ok := f["term"].(map[string]any); ok {
		for field, value := range term {
			if !termMatches(d, field, value) {
				return false
			}
		}
		return true
	}
	if terms, ok := f["terms"].(map[string]any); ok {
		for field, values := range terms {
			list, _ := values.([]string)
			if !termsMatch(d, field, list) {
				return false
			}
		}
		return true
	}
	if rangeFilter, ok := f["range"].(map[string]any); ok {
		for field, bounds := range rangeFilter {
			b, _ := bounds.(map[string]any)
			if !rangeMatches(d, field, b) {
				return false
			}
		}
		return true
	}
	if _, ok := f["geo_distance"]; ok {
		return true // geo filtering is not emulated by the fake
	}
	return true
}

func matchesMust(d *domain.SearchDocument, m map[string]any) bool {
	mm, ok := m["multi_match"].(map[string]any)
	if !ok {
		return true
	}
	q, _ := mm["query"].(string)
	q = strings.ToLower(q)
	haystack := strings.ToLower(strings.Join([]string{
		d.Title, d.LocationText, d.AddressRaw, d.Description, d.SourceName,
	}, " "))
	return strings.Contains(haystack, q)
}

func termMatches(d *domain.SearchDocument, field string, value any) bool {
	switch field {
	case "status":
		return string(d.Status) == value
	case "amenities":
		v, _ := value.(string)
		for _, a := range d.Amenities {
			if strings.EqualFold(a, v) {
				return true
			}
		}
		return false
	}
	return true
}

func termsMatch(d *domain.SearchDocument, field string, values []string) bool {
	if field != "property_type.keyword" || d.PropertyType == nil {
		return len(values) == 0
	}
	for _, v := range values {
		if strings.EqualFold(*d.PropertyType, v) {
			return true
		}
	}
	return false
}

func rangeMatches(d *domain.SearchDocument, field string, bounds map[string]any) bool {
	var value *float64
	switch field {
	case "normalized_price_usd":
		value = d.NormalizedPriceUSD
	case "normalized_area_sqft":
		value = d.NormalizedAreaSqft
	case "bathrooms":
		value = d.Bathrooms
	case "bedrooms":
		if d.Bedrooms != nil {
			v := float64(*d.Bedrooms)
			value = &v
		}
	}
	if value == nil {
		return false
	}
	if gte, ok := bounds["gte"].(float64); ok && *value < gte {
		return false
	}
	if lte, ok := bounds["lte"].(float64); ok && *value > lte {
		return false
	}
	return true
}

func sortSearchDocs(docs []*domain.SearchDocument, sortSpec any) {
	clauses, ok := sortSpec.([]map[string]any)
	if !ok || len(clauses) == 0 {
		return
	}
	primary := clauses[0]

	sort.SliceStable(docs, func(i, j int) bool {
		for field, spec := range primary {
			specMap, _ := spec.(map[string]any)
			order, _ := specMap["order"].(string)
			less := sortLess(docs[i], docs[j], field)
			if order == "desc" {
				return !less && sortLess(docs[j], docs[i], field)
			}
			return less
		}
		return false
	})
}

func sortLess(a, b *domain.SearchDocument, field string) bool {
	switch field {
	case "normalized_price_usd":
		return floatOrZero(a.NormalizedPriceUSD) < floatOrZero(b.NormalizedPriceUSD)
	case "normalized_area_sqft":
		return floatOrZero(a.NormalizedAreaSqft) < floatOrZero(b.NormalizedAreaSqft)
	case "date_posted":
		return timeOrZero(a.DatePosted).Before(timeOrZero(b.DatePosted))
	default:
		return false
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func buildAggregations(docs []*domain.SearchDocument, aggs map[string]any) map[string]any {
	result := map[string]any{}
	for name := range aggs {
		switch name {
		case "price_stats":
			result[name] = statsAgg(docs, func(d *domain.SearchDocument) *float64 { return d.NormalizedPriceUSD })
		case "bathrooms_stats":
			result[name] = statsAgg(docs, func(d *domain.SearchDocument) *float64 { return d.Bathrooms })
		case "area_stats":
			result[name] = statsAgg(docs, func(d *domain.SearchDocument) *float64 { return d.NormalizedAreaSqft })
		case "bedrooms_stats":
			result[name] = statsAgg(docs, func(d *domain.SearchDocument) *float64 {
				if d.Bedrooms == nil {
					return nil
				}
				v := float64(*d.Bedrooms)
				return &v
			})
		case "property_types":
			result[name] = termsAgg(docs, func(d *domain.SearchDocument) []string {
				if d.PropertyType == nil {
					return nil
				}
				return []string{*d.PropertyType}
			})
		case "amenities":
			result[name] = termsAgg(docs, func(d *domain.SearchDocument) []string { return d.Amenities })
		case "locations":
			result[name] = termsAgg(docs, func(d *domain.SearchDocument) []string {
				if d.AddressRaw == "" {
					return nil
				}
				return []string{d.AddressRaw}
			})
		}
	}
	return result
}

func statsAgg(docs []*domain.SearchDocument, get func(*domain.SearchDocument) *float64) map[string]any {
	var min, max, sum float64
	var count int
	for _, d := range docs {
		v := get(d)
		if v == nil {
			continue
		}
		if count == 0 || *v < min {
			min = *v
		}
		if count == 0 || *v > max {
			max = *v
		}
		sum += *v
		count++
	}
	var avg float64
	if count > 0 {
		avg = sum / float64(count)
	}
	return map[string]any{"min": min, "max": max, "avg": avg, "sum": sum, "count": count}
}

func termsAgg(docs []*domain.SearchDocument, get func(*domain.SearchDocument) []string) map[string]any {
	counts := map[string]int{}
	for _, d := range docs {
		for _, v := range get(d) {
			counts[strings.ToLower(v)]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })

	buckets := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, map[string]any{"key": k, "doc_count": counts[k]})
	}
	return map[string]any{"buckets": buckets}
}
