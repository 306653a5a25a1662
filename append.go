// The append path: timestamp validation or auto-assignment, ring-buffer
// wraparound, and write-through to the record region and header.
//
// Preconditions are checked in the order the core specification lists
// them, so the first violated one determines the returned error. A
// completed Append leaves the in-memory ring state and the on-disk
// header consistent. The header's dirty bit brackets the slot write: it
// is set and persisted before the slot write, then cleared as part of
// the commit that follows it, so a crash mid-Append is detectable on
// the next Open even though there is deliberately no orphan-slot
// recovery scan (repair.go's absence), matching the core specification.
package hocdb

import "go.uber.org/zap"

// Append writes one record image (exactly Stride() bytes) to the
// dataset. It is visible to subsequent Load/Query/GetStats/GetLatest
// calls on this handle immediately; persistence across a crash requires
// FlushOnWrite or an explicit Flush.
func (db *DB) Append(record []byte) error {
	if err := db.requireOpen(); err != nil {
		return err
	}
	if db.readOnly {
		return ErrClosed
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	stride := db.layout.strideBytes()
	if len(record) != stride {
		return ErrInvalidRecordSize
	}

	// Work on a private copy: the caller's slice must never be mutated
	// by auto-increment, and the original bytes must still be the ones
	// queryable by the caller afterwards if they inspect it themselves.
	image := make([]byte, stride)
	copy(image, record)

	tsIn := readTimestamp(image, db.layout)

	if db.hdr.autoIncrement() {
		assigned := int64(1)
		if db.ring.lastTimestamp != noTimestamp {
			assigned = db.ring.lastTimestamp + 1
		}
		writeTimestamp(image, db.layout, assigned)
		tsIn = assigned
	} else if db.ring.lastTimestamp != noTimestamp && tsIn <= db.ring.lastTimestamp {
		return ErrNonMonotonicTimestamp
	}

	wasFull := db.ring.recordCount == db.ring.capacity

	if db.ring.writeCursor == db.ring.capacity {
		if !db.hdr.overwriteOnFull() {
			return ErrBufferFull
		}
		db.ring.writeCursor = 0
		db.ring.wrapped = true
	}

	slot := db.ring.writeCursor

	if wasFull && db.hdr.overwriteOnFull() && db.archive != nil {
		if old, err := readSlot(db.file, slot, stride); err == nil {
			db.archive.archive(old)
		} else {
			db.logger.Warn("hocdb: failed to read evicted slot for archival", zap.Error(err))
		}
	}

	// Mark the dataset dirty before the slot write lands, so a crash
	// between this point and the header commit below is visible to the
	// next Open as an unclean shutdown.
	db.hdr.dirty = true
	if err := writeHeader(db.file, db.hdr); err != nil {
		return err
	}

	if err := writeSlot(db.file, slot, stride, image); err != nil {
		return err
	}

	db.ring.writeCursor++
	if db.ring.wrapped {
		db.ring.recordCount = db.ring.capacity
	} else {
		db.ring.recordCount = db.ring.writeCursor
	}
	db.ring.lastTimestamp = tsIn

	db.hdr.writeCursor = db.ring.writeCursor
	db.hdr.wrapped = db.ring.wrapped
	db.hdr.recordCount = db.ring.recordCount
	db.hdr.dirty = false

	if db.hdr.flushOnWrite() {
		return flushFile(db.file, db.hdr)
	}
	return writeHeader(db.file, db.hdr)
}

// Flush persists the header and fsyncs the dataset file. Callers that
// did not set FlushOnWrite are responsible for calling this to make
// appended records crash-visible.
func (db *DB) Flush() error {
	if err := db.requireOpen(); err != nil {
		return err
	}
	if db.readOnly {
		return ErrClosed
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return flushFile(db.file, db.hdr)
}
