package queue

// Message is the JSON shape published onto the raw listings queue by
// scraping workers. Every field is optional; the normalization engine
// degrades gracefully when a field is absent or malformed. Images and
// Amenities are left as raw JSON because the two fields are coerced under
// different rules (see internal/normalize/hygiene.go) even though both
// accept either a bare string or a JSON array of strings on the wire.
type Message struct {
	Title         string          `json:"title"`
	Price         string          `json:"price"`
	PriceText     string          `json:"price_text"`
	Location      string          `json:"location"`
	LocationText  string          `json:"location_text"`
	Address       string          `json:"address"`
	BedroomsText  string          `json:"bedrooms_text"`
	BathroomsText string          `json:"bathrooms_text"`
	Area          string          `json:"area"`
	AreaText      string          `json:"area_text"`
	Images        RawStringOrList `json:"images"`
	Description   string          `json:"description"`
	PropertyType  string          `json:"property_type"`
	Amenities     RawStringOrList `json:"amenities"`
	SourceURL     string          `json:"source_url"`
	SourceName    string          `json:"source_name"`
	DatePosted    string          `json:"date_posted"`
}

// RawStringOrList captures a field that is a JSON string on some messages
// and a JSON array of strings on others, without deciding here how a bare
// string should be coerced into a slice — that is rule-dependent (see
// hygiene.go) and happens during normalization, not during decoding.
type RawStringOrList struct {
	Raw []byte
}

func (r *RawStringOrList) UnmarshalJSON(data []byte) error {
	r.Raw = append([]byte(nil), data...)
	return nil
}

func (r RawStringOrList) MarshalJSON() ([]byte, error) {
	if r.Raw == nil {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
