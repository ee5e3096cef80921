// Package postgres provides the relational master store implementation
// of store.ListingStore, built on jackc/pgx/v5, following the teacher's
// adapter/postgres package: a pgxpool-backed struct with one method per
// repository operation, each a single SQL statement.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/listing-pipeline/internal/domain"
	"github.com/user/listing-pipeline/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// ListingStore is the pgx-backed implementation of store.ListingStore.
type ListingStore struct {
	pool *pgxpool.Pool
}

// NewListingStore connects to Postgres, applies the schema, and returns a
// ready-to-use ListingStore. Mirrors the teacher's NewPostgresWriter's
// connect-then-migrate shape.
func NewListingStore(ctx context.Context, dsn string) (*ListingStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}

	return &ListingStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *ListingStore) Close() {
	s.pool.Close()
}

// Upsert inserts or updates the listing keyed by source_url, following the
// teacher's ExtractedDataRepoImpl.Save INSERT...ON CONFLICT...DO UPDATE
// shape, and returns the assigned id.
func (s *ListingStore) Upsert(ctx context.Context, l *domain.Listing) (int64, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return 0, fmt.Errorf("postgres: marshal images: %w", err)
	}
	amenities, err := json.Marshal(l.Amenities)
	if err != nil {
		return 0, fmt.Errorf("postgres: marshal amenities: %w", err)
	}

	const query = `
		INSERT INTO properties (
			source_url, source_name, title, description, images,
			price_original_numeric, price_original_text, currency_original, normalized_price_usd,
			address_raw, location_text, latitude, longitude, geocoded_payload,
			bedrooms, bathrooms, area_value, area_unit, normalized_area_sqft,
			property_type, amenities,
			date_posted, scrape_timestamp,
			status, duplicate_of_id
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21,
			$22, $23,
			$24, $25
		)
		ON CONFLICT (source_url) DO UPDATE SET
			source_name = EXCLUDED.source_name,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			images = EXCLUDED.images,
			price_original_numeric = EXCLUDED.price_original_numeric,
			price_original_text = EXCLUDED.price_original_text,
			currency_original = EXCLUDED.currency_original,
			normalized_price_usd = EXCLUDED.normalized_price_usd,
			address_raw = EXCLUDED.address_raw,
			location_text = EXCLUDED.location_text,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geocoded_payload = EXCLUDED.geocoded_payload,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area_value = EXCLUDED.area_value,
			area_unit = EXCLUDED.area_unit,
			normalized_area_sqft = EXCLUDED.normalized_area_sqft,
			property_type = EXCLUDED.property_type,
			amenities = EXCLUDED.amenities,
			date_posted = EXCLUDED.date_posted,
			scrape_timestamp = EXCLUDED.scrape_timestamp,
			status = EXCLUDED.status,
			duplicate_of_id = EXCLUDED.duplicate_of_id
		RETURNING id;
	`

	var id int64
	err = s.pool.QueryRow(ctx, query,
		l.SourceURL, l.SourceName, l.Title, l.Description, images,
		l.PriceOriginalNumeric, l.PriceOriginalText, l.CurrencyOriginal, l.NormalizedPriceUSD,
		l.AddressRaw, l.LocationText, l.Latitude, l.Longitude, l.GeocodedPayload,
		l.Bedrooms, l.Bathrooms, l.AreaValue, l.AreaUnit, l.NormalizedAreaSqft,
		l.PropertyType, amenities,
		l.DatePosted, l.ScrapeTimestamp,
		string(l.Status), l.DuplicateOfID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: upsert %s: %w", l.SourceURL, err)
	}
	return id, nil
}

// FindDuplicateCandidates runs the dedup engine's coarse-filter query in a
// single round trip, using Postgres's pg_trgm similarity() function
// directly in SQL rather than computing similarity in Go.
func (s *ListingStore) FindDuplicateCandidates(ctx context.Context, newTitle, excludeSourceName string,
	lat, lon, latThreshold, lonThreshold, simThreshold float64) ([]store.DuplicateCandidate, error) {

	const query = `
		SELECT id, EXTRACT(EPOCH FROM scrape_timestamp)::bigint AS ts, similarity(title, $1) AS sim
		FROM properties
		WHERE status = 'active'
			AND source_name <> $2
			AND latitude IS NOT NULL AND longitude IS NOT NULL
			AND ABS(latitude - $3) <= $4
			AND ABS(longitude - $5) <= $6
			AND similarity(title, $1) >= $7
		ORDER BY sim DESC, scrape_timestamp DESC;
	`

	rows, err := s.pool.Query(ctx, query, newTitle, excludeSourceName, lat, latThreshold, lon, lonThreshold, simThreshold)
	if err != nil {
		return nil, fmt.Errorf("postgres: find duplicate candidates: %w", err)
	}
	defer rows.Close()

	var candidates []store.DuplicateCandidate
	for rows.Next() {
		var c store.DuplicateCandidate
		if err := rows.Scan(&c.ID, &c.ScrapeTimestamp, &c.Similarity); err != nil {
			return nil, fmt.Errorf("postgres: scan duplicate candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Get retrieves a listing by source_url.
func (s *ListingStore) Get(ctx context.Context, sourceURL string) (*domain.Listing, error) {
	const query = `
		SELECT id, source_url, source_name, title, description, images,
			price_original_numeric, price_original_text, currency_original, normalized_price_usd,
			address_raw, location_text, latitude, longitude, geocoded_payload,
			bedrooms, bathrooms, area_value, area_unit, normalized_area_sqft,
			property_type, amenities,
			date_posted, scrape_timestamp, created_at, updated_at,
			status, duplicate_of_id
		FROM properties
		WHERE source_url = $1;
	`

	row := s.pool.QueryRow(ctx, query, sourceURL)

	var l domain.Listing
	var images, amenities []byte
	var status string
	err := row.Scan(
		&l.ID, &l.SourceURL, &l.SourceName, &l.Title, &l.Description, &images,
		&l.PriceOriginalNumeric, &l.PriceOriginalText, &l.CurrencyOriginal, &l.NormalizedPriceUSD,
		&l.AddressRaw, &l.LocationText, &l.Latitude, &l.Longitude, &l.GeocodedPayload,
		&l.Bedrooms, &l.Bathrooms, &l.AreaValue, &l.AreaUnit, &l.NormalizedAreaSqft,
		&l.PropertyType, &amenities,
		&l.DatePosted, &l.ScrapeTimestamp, &l.CreatedAt, &l.UpdatedAt,
		&status, &l.DuplicateOfID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get %s: %w", sourceURL, err)
	}
	l.Status = domain.Status(status)

	if err := json.Unmarshal(images, &l.Images); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal images: %w", err)
	}
	if err := json.Unmarshal(amenities, &l.Amenities); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal amenities: %w", err)
	}

	return &l, nil
}
