package hocdb

import "testing"

func TestFingerprintDistinguishesSchemas(t *testing.T) {
	a := fingerprint(tickSchema())
	b := fingerprint(tickSchema())
	if a != b {
		t.Errorf("fingerprint not stable across identical schemas: %d != %d", a, b)
	}

	renamed := Schema{
		{Name: "timestamp", Kind: I64},
		{Name: "usd", Kind: F64},
		{Name: "vol", Kind: F64},
	}
	if fingerprint(renamed) == a {
		t.Error("fingerprint collided for a renamed field")
	}

	reordered := Schema{
		{Name: "timestamp", Kind: I64},
		{Name: "volume", Kind: F64},
		{Name: "usd", Kind: F64},
	}
	if fingerprint(reordered) == a {
		t.Error("fingerprint collided for reordered fields")
	}
}

func TestHeaderChecksumDeterministic(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	if headerChecksum(buf) != headerChecksum(buf) {
		t.Error("headerChecksum not deterministic")
	}
	if headerChecksum(buf) == headerChecksum([]byte{1, 2, 3, 4, 6}) {
		t.Error("headerChecksum collided for different input")
	}
}
