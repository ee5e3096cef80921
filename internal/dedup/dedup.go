// Package dedup implements the coarse-filter duplicate detection that runs
// between normalization and the dual-store write. It follows the same
// single-responsibility shape as the teacher's usecase package: one
// function that takes a domain value and a store port, and returns a
// decision, with no knowledge of queues or HTTP.
package dedup

import (
	"context"
	"log/slog"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/store"
)

// Default thresholds for the coarse geographic band and trigram similarity
// cutoff. A tenth of a degree of latitude/longitude is roughly 11km; narrowed
// here to ~11m since listings at the same address should match almost
// exactly on the coordinates their geocoder returns.
const (
	DefaultLatThreshold = 1e-4
	DefaultLonThreshold = 1e-4
	DefaultSimThreshold = 0.6
)

// Checker evaluates a newly normalized listing against the master store's
// active listings and decides whether it is a likely duplicate.
type Checker struct {
	Store         store.ListingStore
	LatThreshold  float64
	LonThreshold  float64
	SimThreshold  float64
}

// NewChecker builds a Checker with the default thresholds.
func NewChecker(s store.ListingStore) *Checker {
	return &Checker{
		Store:        s,
		LatThreshold: DefaultLatThreshold,
		LonThreshold: DefaultLonThreshold,
		SimThreshold: DefaultSimThreshold,
	}
}

// Evaluate sets l.Status and l.DuplicateOfID in place, based on whether an
// active listing from a different source exists with similar coordinates
// and title. Listings without both coordinates and a non-empty title are
// never flagged, since the coarse filter depends on both. A store error is
// logged and treated as "no candidates" rather than surfaced, since dedup
// is a best-effort enrichment step and must not block ingestion.
func (c *Checker) Evaluate(ctx context.Context, l *domain.Listing) {
	if !l.HasCoordinates() || l.Title == "" {
		l.Status = domain.StatusActive
		return
	}

	candidates, err := c.Store.FindDuplicateCandidates(ctx, l.Title, l.SourceName,
		*l.Latitude, *l.Longitude, c.LatThreshold, c.LonThreshold, c.SimThreshold)
	if err != nil {
		slog.Warn("dedup: candidate query failed, treating as no match", "source_url", l.SourceURL, "error", err)
		l.Status = domain.StatusActive
		return
	}

	if len(candidates) == 0 {
		l.Status = domain.StatusActive
		return
	}

	best := candidates[0]
	l.Status = domain.StatusPotentialDuplicate
	l.DuplicateOfID = &best.ID
}
