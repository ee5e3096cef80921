package cache

import "testing"

func TestKey_OrderIndependent(t *testing.T) {
	a := Key("properties", map[string]string{"city": "austin", "min_price": "100"})
	b := Key("properties", map[string]string{"min_price": "100", "city": "austin"})
	if a != b {
		t.Fatalf("expected order-independent keys, got %q and %q", a, b)
	}
}

func TestKey_DifferentParamsDifferentKey(t *testing.T) {
	a := Key("properties", map[string]string{"city": "austin"})
	b := Key("properties", map[string]string{"city": "dallas"})
	if a == b {
		t.Fatalf("expected different keys for different params")
	}
}

func TestKey_DifferentPrefixDifferentKey(t *testing.T) {
	a := Key("properties", map[string]string{"city": "austin"})
	b := Key("metadata", map[string]string{"city": "austin"})
	if a == b {
		t.Fatalf("expected different keys for different prefixes")
	}
}
