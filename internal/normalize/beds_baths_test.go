package normalize

import "testing"

func TestParseBedrooms(t *testing.T) {
	cases := []struct {
		text string
		want *int
	}{
		{"Studio", intPtr(0)},
		{"3 Beds", intPtr(3)},
		{"2BR", intPtr(2)},
		{"4 bedrooms", intPtr(4)},
		{"no info", nil},
	}
	for _, c := range cases {
		got := ParseBedrooms(c.text)
		if !intPtrEqual(got, c.want) {
			t.Errorf("ParseBedrooms(%q) = %v, want %v", c.text, deref(got), deref(c.want))
		}
	}
}

func TestParseBathrooms(t *testing.T) {
	cases := []struct {
		text string
		want *float64
	}{
		{"1.5 Bathrooms", floatPtr(1.5)},
		{"1 Bath", floatPtr(1)},
		{"2ba", floatPtr(2)},
		{"no info", nil},
	}
	for _, c := range cases {
		got := ParseBathrooms(c.text)
		if !floatPtrEqual(got, c.want) {
			t.Errorf("ParseBathrooms(%q) = %v, want %v", c.text, derefF(got), derefF(c.want))
		}
	}
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func derefF(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
