// Ring buffer state: the in-memory mirror of the header's write cursor,
// wrap flag, and record count, plus recovery of the last written
// timestamp on open.
package hocdb

import (
	"encoding/binary"
	"math"
)

// ringState tracks where the next record will be written and how many
// live records the file currently holds. It mirrors {write_cursor,
// wrapped, record_count} in the header and is kept in lock-step with it:
// every mutation here is followed by a header persist in the same
// append call.
type ringState struct {
	writeCursor   uint32
	wrapped       bool
	capacity      uint32
	recordCount   uint32
	lastTimestamp int64 // math.MinInt64 sentinel when no record has ever been written
}

// noTimestamp is the sentinel last_timestamp for an empty dataset.
const noTimestamp = int64(math.MinInt64)

func newRingState(capacity uint32) *ringState {
	return &ringState{capacity: capacity, lastTimestamp: noTimestamp}
}

func ringStateFromHeader(h *header) *ringState {
	return &ringState{
		writeCursor: h.writeCursor,
		wrapped:     h.wrapped,
		capacity:    h.capacity,
		recordCount: h.recordCount,
		// lastTimestamp is filled in by recoverLastTimestamp.
		lastTimestamp: noTimestamp,
	}
}

// newestSlot returns the slot index holding the most recently written
// record, and ok=false when the dataset has never had a record written.
func (r *ringState) newestSlot() (slot uint32, ok bool) {
	if !r.wrapped && r.writeCursor == 0 {
		return 0, false
	}
	if r.writeCursor == 0 {
		return r.capacity - 1, true
	}
	return r.writeCursor - 1, true
}

// recoverLastTimestamp reads the logically newest slot (if any) and
// extracts its timestamp field, establishing the basis for both
// monotonicity checks and auto-increment on the next append.
func recoverLastTimestamp(readSlotFn func(slot uint32) ([]byte, error), l *layout, r *ringState) error {
	slot, ok := r.newestSlot()
	if !ok {
		r.lastTimestamp = noTimestamp
		return nil
	}
	data, err := readSlotFn(slot)
	if err != nil {
		return err
	}
	r.lastTimestamp = readTimestamp(data, l)
	return nil
}

// readTimestamp extracts the I64 timestamp field from a record image.
func readTimestamp(record []byte, l *layout) int64 {
	off := l.offsetOf(l.timestampIndex())
	return int64(binary.LittleEndian.Uint64(record[off : off+8]))
}

// writeTimestamp overwrites the I64 timestamp field in a record image.
func writeTimestamp(record []byte, l *layout, ts int64) {
	off := l.offsetOf(l.timestampIndex())
	binary.LittleEndian.PutUint64(record[off:off+8], uint64(ts))
}
