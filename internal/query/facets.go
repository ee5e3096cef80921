package query

// FacetBucketSize is the default number of term-bucket entries returned
// per facet in the filters/metadata response.
const FacetBucketSize = 20

// BuildMetadataQuery builds the aggregation request for GET
// /properties/filters/metadata: min/max stats for the numeric dimensions,
// and term buckets for property_type, amenities, and location, scoped to
// active listings only.
func BuildMetadataQuery() map[string]any {
	return map[string]any{
		"size":  0,
		"query": map[string]any{"term": map[string]any{"status": "active"}},
		"aggs": map[string]any{
			"price_stats":     map[string]any{"stats": map[string]any{"field": "normalized_price_usd"}},
			"bedrooms_stats":  map[string]any{"stats": map[string]any{"field": "bedrooms"}},
			"bathrooms_stats": map[string]any{"stats": map[string]any{"field": "bathrooms"}},
			"area_stats":      map[string]any{"stats": map[string]any{"field": "normalized_area_sqft"}},
			"property_types": map[string]any{
				"terms": map[string]any{"field": "property_type.keyword", "size": FacetBucketSize},
			},
			"amenities": map[string]any{
				"terms": map[string]any{"field": "amenities", "size": FacetBucketSize},
			},
			"locations": map[string]any{
				"terms": map[string]any{"field": "address_raw.keyword", "size": FacetBucketSize},
			},
		},
	}
}
