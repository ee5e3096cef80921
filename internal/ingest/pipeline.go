// Package ingest wires the intake queue adapter's decoded message through
// normalization, enrichment, deduplication, and the dual-store write. It is
// the orchestration layer the teacher's usecase package occupies: no SQL,
// no HTTP, no AMQP framing — just sequencing and error translation.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/listing-pipeline/internal/dedup"
	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/geocoder"
	"github.com/user/listing-pipeline/internal/normalize"
	"github.com/user/listing-pipeline/internal/queue"
	"github.com/user/listing-pipeline/internal/store"
	"github.com/user/listing-pipeline/pkg/metrics"
)

// Pipeline is the C1 orchestrator: one call to Process per queue message.
type Pipeline struct {
	Listings store.ListingStore
	Search   store.SearchIndex
	Geocoder geocoder.Geocoder
	Dedup    *dedup.Checker

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewPipeline wires the four collaborators into a ready Pipeline with the
// default dedup thresholds.
func NewPipeline(listings store.ListingStore, search store.SearchIndex, geo geocoder.Geocoder) *Pipeline {
	return &Pipeline{
		Listings: listings,
		Search:   search,
		Geocoder: geo,
		Dedup:    dedup.NewChecker(listings),
		Now:      time.Now,
	}
}

// Process normalizes msg, geocodes its address, runs the dedup check,
// writes the relational master record, and then upserts the search
// document — in that order, since invariant 6 requires the relational
// write to happen before the search write ever becomes visible to
// queries. A non-nil error here tells the queue consumer to nack without
// requeue: every stage is either pure or best-effort except the two
// store writes, so a failure past this point means a store is down, not
// that the message is malformed.
func (p *Pipeline) Process(ctx context.Context, msg queue.Message) error {
	start := p.Now()
	listing := normalize.Normalize(msg, start)

	if listing.AddressRaw != "" {
		result, err := p.Geocoder.Lookup(ctx, listing.AddressRaw)
		if err != nil {
			metrics.GeocodeFailuresTotal.Inc()
			slog.Warn("ingest: geocoder returned an error, continuing without coordinates",
				"source_url", listing.SourceURL, "error", err)
		} else if result != nil {
			listing.Latitude = &result.Lat
			listing.Longitude = &result.Lon
			listing.GeocodedPayload = result.Payload
		}
	}

	p.Dedup.Evaluate(ctx, &listing)
	if listing.Status == domain.StatusPotentialDuplicate {
		metrics.DedupMatchesTotal.Inc()
	}

	id, err := p.Listings.Upsert(ctx, &listing)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("store_error").Inc()
		return fmt.Errorf("ingest: relational upsert %s: %w", listing.SourceURL, err)
	}
	listing.ID = id

	if err := p.Search.Upsert(ctx, listing.ToSearchDocument()); err != nil {
		metrics.IngestTotal.WithLabelValues("store_error").Inc()
		return fmt.Errorf("ingest: search upsert %s: %w", listing.SourceURL, err)
	}

	metrics.IngestTotal.WithLabelValues("processed").Inc()
	metrics.IngestDuration.Observe(p.Now().Sub(start).Seconds())

	slog.Info("ingest: processed listing",
		"source_url", listing.SourceURL, "status", listing.Status, "id", listing.ID)
	return nil
}

// Handler adapts Process to the queue.Handler signature expected by the
// consumer.
func (p *Pipeline) Handler() queue.Handler {
	return p.Process
}
