// Package store defines the ports the ingestion pipeline and the query API
// use to talk to the relational master store and the search index, kept as
// narrow interfaces so usecases are testable without live infrastructure —
// the same shape as the teacher's internal/repository package.
package store

import (
	"context"

	"github.com/user/listing-pipeline/internal/domain"
)

// DuplicateCandidate is one row returned by a duplicate-candidate query,
// already ordered by the caller per the dedup engine's tie-break rules.
type DuplicateCandidate struct {
	ID              int64
	ScrapeTimestamp int64 // unix seconds, for ordering only
	Similarity      float64
}

// ListingStore is the relational master store's port: upsert keyed by
// source_url, and the duplicate-candidate query used by the dedup engine.
type ListingStore interface {
	// Upsert inserts or updates the listing keyed by SourceURL, bumping
	// UpdatedAt to now on either path, and returns the assigned ID.
	Upsert(ctx context.Context, listing *domain.Listing) (id int64, err error)

	// FindDuplicateCandidates returns active listings from a different
	// source whose coordinates fall within the lat/lon band and whose
	// title similarity to newTitle meets simThreshold, ordered by
	// descending similarity then descending scrape_timestamp.
	FindDuplicateCandidates(ctx context.Context, newTitle, excludeSourceName string,
		lat, lon, latThreshold, lonThreshold, simThreshold float64) ([]DuplicateCandidate, error)

	// Get retrieves a listing by source_url.
	Get(ctx context.Context, sourceURL string) (*domain.Listing, error)
}

// SearchIndex is the search store's port: ensure the index exists, upsert
// a document keyed by source_url, and run an arbitrary OpenSearch request
// body, returning the raw response bytes for the query layer to decode.
type SearchIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, doc *domain.SearchDocument) error
	Search(ctx context.Context, body map[string]any) ([]byte, error)
}
