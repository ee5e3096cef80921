// Package search provides the search index implementation of
// store.SearchIndex, built on the OpenSearch Go client. Upsert indexes a
// document by source_url as its document ID, which is OpenSearch's native
// idempotent upsert and matches the spec's "keyed by source_url, not id"
// requirement without a separate update-by-query round trip.
package search

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	opensearchapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"context"

	"github.com/user/listing-pipeline/internal/domain"
)

//go:embed mapping.json
var indexMapping string

// ListingIndex is the OpenSearch-backed implementation of store.SearchIndex.
type ListingIndex struct {
	client    *opensearch.Client
	indexName string
}

// NewListingIndex constructs a ListingIndex against the given OpenSearch
// addresses and index name.
func NewListingIndex(addresses []string, indexName string) (*ListingIndex, error) {
	client, err := opensearch.NewClient(opensearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}
	return &ListingIndex{client: client, indexName: indexName}, nil
}

// EnsureIndex creates the index with its mapping if it does not already
// exist. Checked with a HEAD request first so repeated calls at startup
// (one per worker/API instance) are idempotent and quiet.
func (idx *ListingIndex) EnsureIndex(ctx context.Context) error {
	existsReq := opensearchapi.IndicesExistsRequest{Index: []string{idx.indexName}}
	existsResp, err := existsReq.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("search: check index exists: %w", err)
	}
	defer existsResp.Body.Close()

	if existsResp.StatusCode == 200 {
		return nil
	}

	createReq := opensearchapi.IndicesCreateRequest{
		Index: idx.indexName,
		Body:  bytes.NewReader([]byte(indexMapping)),
	}
	createResp, err := createReq.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return fmt.Errorf("search: create index: %s", createResp.String())
	}
	return nil
}

// Search runs body against the index and returns the raw JSON response
// bytes for the query layer to decode into hits/aggregations.
func (idx *ListingIndex) Search(ctx context.Context, body map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("search: marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{idx.indexName},
		Body:  bytes.NewReader(encoded),
	}
	resp, err := req.Do(ctx, idx.client)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("search: query: %s", resp.String())
	}

	result := new(bytes.Buffer)
	if _, err := result.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("search: read response: %w", err)
	}
	return result.Bytes(), nil
}

// Upsert indexes the document keyed by source_url.
func (idx *ListingIndex) Upsert(ctx context.Context, doc *domain.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal document: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      idx.indexName,
		DocumentID: doc.SourceURL,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("search: index %s: %w", doc.SourceURL, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("search: index %s: %s", doc.SourceURL, resp.String())
	}
	return nil
}
