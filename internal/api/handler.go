// Package api implements the C5 query API: two read endpoints over the
// search index, response caching, and per-IP rate limiting. Its handler
// split (handler.go business logic, response.go JSON writers)
// follows the teacher's delivery/http/{handler,response} layout.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/listing-pipeline/internal/cache"
	"github.com/user/listing-pipeline/internal/query"
	"github.com/user/listing-pipeline/internal/store"
	"github.com/user/listing-pipeline/pkg/metrics"
)

// responseCache is the subset of *cache.Cache the handler needs, narrowed
// to an interface so handler tests can substitute an in-memory fake
// instead of a live Redis connection.
type responseCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, bool, error)
}

// Handler serves the query API's two read endpoints.
type Handler struct {
	Search        store.SearchIndex
	Cache         responseCache
	PropertiesTTL time.Duration
	MetadataTTL   time.Duration
}

// NewHandler builds a Handler with its collaborators.
func NewHandler(search store.SearchIndex, c *cache.Cache, propertiesTTL, metadataTTL time.Duration) *Handler {
	return &Handler{Search: search, Cache: c, PropertiesTTL: propertiesTTL, MetadataTTL: metadataTTL}
}

// HandleSearch serves GET /properties.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseSearchParams(r.URL.Query())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cache.Key("properties", params.CacheParams())

	body, hit, err := h.Cache.GetOrCompute(r.Context(), key, h.PropertiesTTL, func() ([]byte, error) {
		raw, err := h.Search.Search(r.Context(), query.BuildSearchQuery(params))
		if err != nil {
			return nil, err
		}
		resp, err := query.DecodeSearchResponse(raw, params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	})
	if err != nil {
		slog.Error("api: search failed", "error", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	recordCacheOutcome("properties", hit)
	writeJSONBytes(w, http.StatusOK, body)
}

// HandleMetadata serves GET /properties/filters/metadata.
func (h *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	key := cache.Key("metadata", map[string]string{})

	body, hit, err := h.Cache.GetOrCompute(r.Context(), key, h.MetadataTTL, func() ([]byte, error) {
		raw, err := h.Search.Search(r.Context(), query.BuildMetadataQuery())
		if err != nil {
			return nil, err
		}
		resp, err := query.DecodeMetadataResponse(raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	})
	if err != nil {
		slog.Error("api: metadata failed", "error", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	recordCacheOutcome("metadata", hit)
	writeJSONBytes(w, http.StatusOK, body)
}

// HandleHealthCheck serves GET /healthz.
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func recordCacheOutcome(endpoint string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(endpoint).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(endpoint).Inc()
	}
}
