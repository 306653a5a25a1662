// Query: time-range selection plus typed equality filters, single linear
// scan over load order. No index is maintained.
package hocdb

import (
	"encoding/binary"
	"math"
)

// Filter is one field-equality predicate. Exactly one of the ValueX
// fields is meaningful, selected by Kind, mirroring HOCDBFilter's tagged
// union in the C ABI.
type Filter struct {
	FieldIndex int
	Kind       Kind

	ValueI64    int64
	ValueF64    float64
	ValueU64    uint64
	ValueBool   bool
	ValueString string
}

// Query returns every live record with startTs ≤ ts < endTs that matches
// every filter (logical AND), in load order, as one freshly allocated
// buffer. A non-matching or empty dataset yields a zero-length, non-nil
// buffer, never a nil one: empty results are not errors (§7).
func (db *DB) Query(startTs, endTs int64, filters []Filter) ([]byte, error) {
	if err := db.requireOpen(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	stride := db.layout.strideBytes()
	slots := db.liveSlotOrder()

	out := make([]byte, 0, len(slots)*stride)
	buf := make([]byte, stride)
	for _, slot := range slots {
		if _, err := db.file.ReadAt(buf, slotOffset(slot, stride)); err != nil {
			return nil, err
		}
		ts := readTimestamp(buf, db.layout)
		if ts < startTs || ts >= endTs {
			continue
		}
		if !matchesAll(buf, db.layout, filters) {
			continue
		}
		out = append(out, buf...)
	}
	return out, nil
}

func matchesAll(record []byte, l *layout, filters []Filter) bool {
	for _, f := range filters {
		if !matches(record, l, f) {
			return false
		}
	}
	return true
}

func matches(record []byte, l *layout, f Filter) bool {
	if f.FieldIndex < 0 || f.FieldIndex >= len(l.fields) {
		return false
	}
	if l.kindOf(f.FieldIndex) != f.Kind {
		return false
	}
	off := l.offsetOf(f.FieldIndex)

	switch f.Kind {
	case I64:
		return int64(binary.LittleEndian.Uint64(record[off:off+8])) == f.ValueI64
	case U64:
		return binary.LittleEndian.Uint64(record[off:off+8]) == f.ValueU64
	case F64:
		v := math.Float64frombits(binary.LittleEndian.Uint64(record[off : off+8]))
		return v == f.ValueF64
	case Bool:
		return (record[off] != 0) == f.ValueBool
	case String:
		return readFieldString(record[off:off+StringWidth]) == truncateString(f.ValueString)
	default:
		return false
	}
}

// readFieldString returns the UTF-8 text stored in a 128-byte STRING slot,
// up to (not including) its first null byte.
func readFieldString(slot []byte) string {
	n := 0
	for n < len(slot) && slot[n] != 0 {
		n++
	}
	return string(slot[:n])
}

// writeFieldString null-pads s into a StringWidth-byte slot, truncating to
// StringWidth-1 bytes to leave room for the terminator.
func writeFieldString(slot []byte, s string) {
	clear(slot)
	copy(slot, truncateString(s))
}

// truncateString enforces the 127-byte STRING payload limit (the 128th
// byte is reserved for the null terminator).
func truncateString(s string) string {
	if len(s) > StringWidth-1 {
		return s[:StringWidth-1]
	}
	return s
}
