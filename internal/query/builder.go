package query

import "strconv"

// BuildSearchQuery translates validated SearchParams into an OpenSearch
// request body for GET /properties: a bool query combining the free-text
// match, geo-distance filter, range filters, and terms filters, plus a
// sort clause and from/size pagination.
func BuildSearchQuery(p SearchParams) map[string]any {
	must := []map[string]any{}
	filter := []map[string]any{
		{"term": map[string]any{"status": "active"}},
	}

	if p.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query": p.Query,
				"fields": []string{
					"title^3",
					"location_text^2",
					"address_raw^2",
					"description",
					"source_name",
					"property_type",
					"amenities",
				},
				"fuzziness": "auto",
				"operator":  "or",
			},
		})
	}

	if p.HasGeo {
		filter = append(filter, map[string]any{
			"geo_distance": map[string]any{
				"distance": formatKm(p.RadiusKm),
				"location_coordinates": map[string]any{
					"lat": p.Lat,
					"lon": p.Lon,
				},
			},
		})
	}

	if rng := rangeClause(p.MinPrice, p.MaxPrice); rng != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"normalized_price_usd": rng}})
	}
	if rng := rangeClauseInt(p.MinBeds, p.MaxBeds); rng != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"bedrooms": rng}})
	}
	if rng := rangeClause(p.MinBaths, p.MaxBaths); rng != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"bathrooms": rng}})
	}
	if rng := rangeClause(p.MinAreaSqft, p.MaxAreaSqft); rng != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"normalized_area_sqft": rng}})
	}

	if len(p.PropertyTypes) > 0 {
		filter = append(filter, map[string]any{
			"terms": map[string]any{"property_type.keyword": p.PropertyTypes},
		})
	}

	for _, amenity := range p.Amenities {
		filter = append(filter, map[string]any{
			"term": map[string]any{"amenities": amenity},
		})
	}

	boolQuery := map[string]any{"filter": filter}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	query := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort":  buildSort(p),
		"from":  (p.Page - 1) * p.Limit,
		"size":  p.Limit,
	}
	return query
}

// buildSort implements the default-sort/tie-break rules from spec §4.5:
// date desc, then relevance score desc, as the secondary/tertiary keys
// after whatever the caller asked to sort by.
func buildSort(p SearchParams) []map[string]any {
	var primary map[string]any
	switch p.SortBy {
	case SortPrice:
		primary = map[string]any{"normalized_price_usd": map[string]any{"order": p.Order}}
	case SortArea:
		primary = map[string]any{"normalized_area_sqft": map[string]any{"order": p.Order}}
	case SortDistance:
		primary = map[string]any{
			"_geo_distance": map[string]any{
				"location_coordinates": map[string]any{"lat": p.Lat, "lon": p.Lon},
				"order":                p.Order,
				"unit":                 "km",
			},
		}
	case SortRelevance:
		primary = map[string]any{"_score": map[string]any{"order": p.Order}}
	default: // date
		primary = map[string]any{"date_posted": map[string]any{"order": p.Order}}
	}

	sort := []map[string]any{primary}
	if p.SortBy != SortDate {
		sort = append(sort, map[string]any{"date_posted": map[string]any{"order": "desc"}})
	}
	if p.SortBy != SortRelevance {
		sort = append(sort, map[string]any{"_score": map[string]any{"order": "desc"}})
	}
	return sort
}

func rangeClause(min, max *float64) map[string]any {
	if min == nil && max == nil {
		return nil
	}
	clause := map[string]any{}
	if min != nil {
		clause["gte"] = *min
	}
	if max != nil {
		clause["lte"] = *max
	}
	return clause
}

func rangeClauseInt(min, max *int) map[string]any {
	if min == nil && max == nil {
		return nil
	}
	clause := map[string]any{}
	if min != nil {
		clause["gte"] = *min
	}
	if max != nil {
		clause["lte"] = *max
	}
	return clause
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64) + "km"
}
