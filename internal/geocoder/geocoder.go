// Package geocoder wraps an external geocoding provider. Geocoding is
// best-effort: any failure or empty result yields no coordinates rather
// than an error, per the enrichment stage's failure policy.
package geocoder

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nf/geocode"
)

// Result is the first candidate returned by the provider, plus the full
// response kept verbatim as the opaque geocoded_payload.
type Result struct {
	Lat     float64
	Lon     float64
	Payload json.RawMessage
}

// Geocoder looks up coordinates for a free-form address.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*Result, error)
}

// GoogleGeocoder calls the Google provider via github.com/nf/geocode.
type GoogleGeocoder struct {
	Region  string
	Timeout time.Duration
}

// NewGoogleGeocoder constructs a GoogleGeocoder with the given request
// timeout. region is the provider's region bias, e.g. "us".
func NewGoogleGeocoder(region string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{Region: region, Timeout: timeout}
}

// Lookup calls the geocoder with a bounded timeout. On failure or an empty
// result set it logs and returns (nil, nil) — never an error — so the
// enrichment stage can treat "no coordinates" uniformly without aborting
// the pipeline.
func (g *GoogleGeocoder) Lookup(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	req := &geocode.Request{
		Provider: geocode.GOOGLE,
		Region:   g.Region,
		Address:  address,
	}

	respCh := make(chan *geocode.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := req.Lookup(nil)
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	select {
	case <-ctx.Done():
		slog.Warn("geocoder: request timed out", "address", address)
		return nil, nil
	case err := <-errCh:
		slog.Warn("geocoder: lookup failed", "address", address, "error", err)
		return nil, nil
	case resp := <-respCh:
		if resp == nil || resp.Status != "OK" || resp.GoogleResponse == nil ||
			len(resp.GoogleResponse.Results) == 0 {
			slog.Debug("geocoder: no candidates", "address", address)
			return nil, nil
		}

		payload, err := json.Marshal(resp.GoogleResponse)
		if err != nil {
			payload = nil
		}

		loc := resp.GoogleResponse.Results[0].Geometry.Location
		return &Result{Lat: loc.Lat, Lon: loc.Lng, Payload: payload}, nil
	}
}
