package hocdb

import (
	"encoding/binary"
	"math"
	"testing"
)

// mustLayout resolves s or fails the test immediately. Most tests only
// need the layout to build record images by hand; they open the real
// dataset separately through Open.
func mustLayout(t testing.TB, s Schema) *layout {
	t.Helper()
	l, err := resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return l
}

// encodeRecord packs vals (keyed by field name) into a fresh record
// image according to l. Fields absent from vals are left zeroed.
func encodeRecord(l *layout, vals map[string]any) []byte {
	buf := make([]byte, l.strideBytes())
	for i, f := range l.fields {
		v, ok := vals[f.Name]
		if !ok {
			continue
		}
		off := l.offsetOf(i)
		switch f.Kind {
		case I64:
			binary.LittleEndian.PutUint64(buf[off:off+8], uint64(v.(int64)))
		case U64:
			binary.LittleEndian.PutUint64(buf[off:off+8], v.(uint64))
		case F64:
			binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v.(float64)))
		case Bool:
			if v.(bool) {
				buf[off] = 1
			}
		case String:
			writeFieldString(buf[off:off+StringWidth], v.(string))
		}
	}
	return buf
}

// tickSchema is the [timestamp, usd, volume] schema used across §8's S1
// and S2 scenarios.
func tickSchema() Schema {
	return Schema{
		{Name: "timestamp", Kind: I64},
		{Name: "usd", Kind: F64},
		{Name: "volume", Kind: F64},
	}
}

func openTick(t *testing.T, dir string, cfg Config) *DB {
	t.Helper()
	db, err := Open(dir, "TICK", tickSchema(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
