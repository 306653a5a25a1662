// Load: reconstruct all live records in temporal (oldest-first) order.
package hocdb

// Load returns every live record concatenated into one freshly allocated
// buffer of RecordCount()*Stride() bytes, oldest first. Under wrap this is
// slots [write_cursor, capacity) followed by [0, write_cursor); otherwise
// it is simply [0, write_cursor).
func (db *DB) Load() ([]byte, error) {
	if err := db.requireOpen(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.loadLocked()
}

// loadLocked assumes db.mu is held.
func (db *DB) loadLocked() ([]byte, error) {
	stride := db.layout.strideBytes()
	out := make([]byte, int(db.ring.recordCount)*stride)

	slots := db.liveSlotOrder()
	for i, slot := range slots {
		if _, err := db.file.ReadAt(out[i*stride:(i+1)*stride], slotOffset(slot, stride)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// liveSlotOrder returns the slot indices holding live records, oldest
// first, without reading their contents.
func (db *DB) liveSlotOrder() []uint32 {
	r := db.ring
	slots := make([]uint32, 0, r.recordCount)
	if !r.wrapped {
		for i := uint32(0); i < r.writeCursor; i++ {
			slots = append(slots, i)
		}
		return slots
	}
	for i := r.writeCursor; i < r.capacity; i++ {
		slots = append(slots, i)
	}
	for i := uint32(0); i < r.writeCursor; i++ {
		slots = append(slots, i)
	}
	return slots
}
