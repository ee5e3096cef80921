// Package query translates HTTP query parameters into an OpenSearch bool
// query and back into a paginated response, following the teacher's
// delivery/http/request shape for param parsing and validation.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SortField is one of the sortable dimensions exposed by GET /properties.
type SortField string

const (
	SortPrice     SortField = "price"
	SortDate      SortField = "date"
	SortArea      SortField = "area"
	SortRelevance SortField = "relevance"
	SortDistance  SortField = "distance"
)

// SearchParams is the parsed, validated form of GET /properties' query
// string.
type SearchParams struct {
	Query string

	HasGeo   bool
	Lat      float64
	Lon      float64
	RadiusKm float64

	MinPrice *float64
	MaxPrice *float64

	PropertyTypes []string

	MinBeds *int
	MaxBeds *int

	MinBaths *float64
	MaxBaths *float64

	MinAreaSqft *float64
	MaxAreaSqft *float64

	Amenities []string

	SortBy SortField
	Order  string // "asc" or "desc"

	Page  int
	Limit int
}

// ParamError is returned for any validation failure; the HTTP layer maps it
// to a 400 response.
type ParamError struct {
	Msg string
}

func (e *ParamError) Error() string { return e.Msg }

// ParseSearchParams validates and parses raw query values into
// SearchParams, applying the defaults from spec §4.5: page 1, limit 10,
// order desc, and, when sort_by is absent, a query-dependent default sort
// chosen by DefaultSort once HasGeo/Query are known.
func ParseSearchParams(values url.Values) (SearchParams, error) {
	p := SearchParams{
		Query: strings.TrimSpace(values.Get("q")),
		Page:  1,
		Limit: 10,
		Order: "desc",
	}

	latStr, lonStr, radiusStr := values.Get("lat"), values.Get("lon"), values.Get("radius_km")
	if latStr != "" || lonStr != "" || radiusStr != "" {
		if latStr == "" || lonStr == "" || radiusStr == "" {
			return p, &ParamError{"lat, lon, and radius_km must be provided together"}
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return p, &ParamError{"invalid lat"}
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return p, &ParamError{"invalid lon"}
		}
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			return p, &ParamError{"radius_km must be a positive number"}
		}
		p.HasGeo, p.Lat, p.Lon, p.RadiusKm = true, lat, lon, radius
	}

	var err error
	if p.MinPrice, err = parseOptFloat(values, "min_price"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = parseOptFloat(values, "max_price"); err != nil {
		return p, err
	}
	if p.MinBaths, err = parseOptFloat(values, "min_baths"); err != nil {
		return p, err
	}
	if p.MaxBaths, err = parseOptFloat(values, "max_baths"); err != nil {
		return p, err
	}
	if p.MinAreaSqft, err = parseOptFloat(values, "min_area_sqft"); err != nil {
		return p, err
	}
	if p.MaxAreaSqft, err = parseOptFloat(values, "max_area_sqft"); err != nil {
		return p, err
	}
	if p.MinBeds, err = parseOptInt(values, "min_beds"); err != nil {
		return p, err
	}
	if p.MaxBeds, err = parseOptInt(values, "max_beds"); err != nil {
		return p, err
	}

	p.PropertyTypes = splitLowerList(values.Get("property_type"))
	p.Amenities = splitLowerList(values.Get("amenities"))

	if sortBy := values.Get("sort_by"); sortBy != "" {
		switch SortField(sortBy) {
		case SortPrice, SortDate, SortArea, SortRelevance, SortDistance:
			p.SortBy = SortField(sortBy)
		default:
			return p, &ParamError{fmt.Sprintf("invalid sort_by: %s", sortBy)}
		}
		if p.SortBy == SortDistance && !p.HasGeo {
			return p, &ParamError{"sort_by=distance requires lat, lon, and radius_km"}
		}
	} else {
		p.SortBy = DefaultSort(p)
	}

	if order := values.Get("order"); order != "" {
		if order != "asc" && order != "desc" {
			return p, &ParamError{"order must be asc or desc"}
		}
		p.Order = order
	} else if p.SortBy == SortDistance {
		p.Order = "asc"
	}

	if pageStr := values.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return p, &ParamError{"page must be a positive integer"}
		}
		p.Page = page
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return p, &ParamError{"limit must be a positive integer"}
		}
		p.Limit = limit
	}

	return p, nil
}

// DefaultSort implements the precedence rule: q present -> relevance, else
// geo active -> distance, else date desc.
func DefaultSort(p SearchParams) SortField {
	switch {
	case p.Query != "":
		return SortRelevance
	case p.HasGeo:
		return SortDistance
	default:
		return SortDate
	}
}

func parseOptFloat(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ParamError{fmt.Sprintf("invalid %s", key)}
	}
	return &v, nil
}

func parseOptInt(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &ParamError{fmt.Sprintf("invalid %s", key)}
	}
	return &v, nil
}

func splitLowerList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CacheParams flattens SearchParams into the map cache.Key expects.
func (p SearchParams) CacheParams() map[string]string {
	m := map[string]string{
		"q":        p.Query,
		"sort_by":  string(p.SortBy),
		"order":    p.Order,
		"page":     strconv.Itoa(p.Page),
		"limit":    strconv.Itoa(p.Limit),
		"property_type": strings.Join(p.PropertyTypes, ","),
		"amenities":     strings.Join(p.Amenities, ","),
	}
	if p.HasGeo {
		m["lat"] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
		m["lon"] = strconv.FormatFloat(p.Lon, 'f', -1, 64)
		m["radius_km"] = strconv.FormatFloat(p.RadiusKm, 'f', -1, 64)
	}
	if p.MinPrice != nil {
		m["min_price"] = strconv.FormatFloat(*p.MinPrice, 'f', -1, 64)
	}
	if p.MaxPrice != nil {
		m["max_price"] = strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64)
	}
	if p.MinBeds != nil {
		m["min_beds"] = strconv.Itoa(*p.MinBeds)
	}
	if p.MaxBeds != nil {
		m["max_beds"] = strconv.Itoa(*p.MaxBeds)
	}
	if p.MinBaths != nil {
		m["min_baths"] = strconv.FormatFloat(*p.MinBaths, 'f', -1, 64)
	}
	if p.MaxBaths != nil {
		m["max_baths"] = strconv.FormatFloat(*p.MaxBaths, 'f', -1, 64)
	}
	if p.MinAreaSqft != nil {
		m["min_area_sqft"] = strconv.FormatFloat(*p.MinAreaSqft, 'f', -1, 64)
	}
	if p.MaxAreaSqft != nil {
		m["max_area_sqft"] = strconv.FormatFloat(*p.MaxAreaSqft, 'f', -1, 64)
	}
	return m
}
