// Aggregation: GetStats over a time range and GetLatest over the newest
// record, both restricted to a single numeric field.
package hocdb

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Stats is the result of GetStats.
type Stats struct {
	Min   float64
	Max   float64
	Sum   float64
	Count uint64
	Mean  float64
}

// GetStats aggregates fieldIndex over every live record with
// startTs ≤ ts < endTs. fieldIndex must name an I64, U64, or F64 field;
// every value is widened to float64 before accumulating. An empty
// matching range yields the documented sentinel Stats{+Inf, -Inf, 0, 0,
// NaN} rather than an error, matching the reference engine's choice
// between the two options the core specification allows.
func (db *DB) GetStats(startTs, endTs int64, fieldIndex int) (Stats, error) {
	if err := db.requireOpen(); err != nil {
		return Stats{}, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if fieldIndex < 0 || fieldIndex >= len(db.layout.fields) {
		return Stats{}, fmt.Errorf("%w: field index %d out of range", ErrFieldNotFound, fieldIndex)
	}
	kind := db.layout.kindOf(fieldIndex)
	if kind != I64 && kind != U64 && kind != F64 {
		return Stats{}, fmt.Errorf("%w: field %d has kind %s", ErrFieldKindMismatch, fieldIndex, kind)
	}

	stats := Stats{Min: math.Inf(1), Max: math.Inf(-1), Sum: 0, Count: 0, Mean: math.NaN()}

	stride := db.layout.strideBytes()
	off := db.layout.offsetOf(fieldIndex)
	buf := make([]byte, stride)

	for _, slot := range db.liveSlotOrder() {
		if _, err := db.file.ReadAt(buf, slotOffset(slot, stride)); err != nil {
			return Stats{}, err
		}
		ts := readTimestamp(buf, db.layout)
		if ts < startTs || ts >= endTs {
			continue
		}
		v := widenToFloat64(buf[off:off+8], kind)
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		stats.Sum += v
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Mean = stats.Sum / float64(stats.Count)
	}
	return stats, nil
}

// GetLatest returns the newest live record's value for fieldIndex widened
// to float64, and its timestamp. Fails with ErrEmpty when the dataset
// holds no records.
func (db *DB) GetLatest(fieldIndex int) (value float64, timestamp int64, err error) {
	if err := db.requireOpen(); err != nil {
		return 0, 0, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if fieldIndex < 0 || fieldIndex >= len(db.layout.fields) {
		return 0, 0, fmt.Errorf("%w: field index %d out of range", ErrFieldNotFound, fieldIndex)
	}
	kind := db.layout.kindOf(fieldIndex)
	if kind != I64 && kind != U64 && kind != F64 {
		return 0, 0, fmt.Errorf("%w: field %d has kind %s", ErrFieldKindMismatch, fieldIndex, kind)
	}

	slot, ok := db.ring.newestSlot()
	if !ok {
		return 0, 0, ErrEmpty
	}

	stride := db.layout.strideBytes()
	buf, err := readSlot(db.file, slot, stride)
	if err != nil {
		return 0, 0, err
	}

	off := db.layout.offsetOf(fieldIndex)
	return widenToFloat64(buf[off:off+8], kind), readTimestamp(buf, db.layout), nil
}

// widenToFloat64 reinterprets an 8-byte little-endian numeric slot as
// float64, per its kind.
func widenToFloat64(b []byte, kind Kind) float64 {
	switch kind {
	case F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case I64:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case U64:
		return float64(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}
