package geocoder

import "context"

// Fake is an in-memory Geocoder for tests: it returns whatever Results map
// has keyed by the exact address string, or nil if absent.
type Fake struct {
	Results map[string]*Result
	Err     error
}

func (f *Fake) Lookup(ctx context.Context, address string) (*Result, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Results[address], nil
}
