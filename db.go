// Core handle type and lifecycle operations.
//
// DB is the engine's entry point: it owns the schema layout, ring buffer
// state, open file descriptor, and OS-level write lock for one dataset.
// It implements the Unopened -> Open -> Closed state machine of §4.H:
// only Open accepts Append/Flush/Load/Query/GetStats/GetLatest; Closed
// rejects everything and a second Close is a no-op.
package hocdb

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Config holds per-dataset configuration. The zero value is valid: it
// yields a 64 MiB file, no overwrite, no forced flush, and no
// auto-increment — the same defaults the reference engine uses.
type Config struct {
	// MaxFileSize bounds the dataset file. 0 selects DefaultMaxFileSize.
	// Ignored when reopening an existing file (its capacity is fixed at
	// creation and recovered from the header).
	MaxFileSize int64

	// OverwriteOnFull enables ring-buffer wraparound: once the record
	// region fills, the next Append overwrites the oldest record instead
	// of failing with ErrBufferFull.
	OverwriteOnFull bool

	// FlushOnWrite fsyncs after every Append. When false, callers drive
	// durability explicitly via Flush.
	FlushOnWrite bool

	// AutoIncrement makes Append assign last_timestamp+1 to every record,
	// ignoring the caller-supplied timestamp field.
	AutoIncrement bool

	// ArchiveEvicted, when true and OverwriteOnFull is set, compresses
	// each overwritten slot into a companion "<ticker>.hoc.archive" file
	// before it is overwritten. Best-effort: a failure to archive is
	// logged and does not fail the Append.
	ArchiveEvicted bool

	// Logger receives structured diagnostics (unclean-shutdown recovery,
	// archive failures). Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// handleState values for the DB state machine.
type handleState int32

const (
	stateOpen handleState = iota
	stateClosed
)

// DB is an open handle to one (ticker, directory) dataset. A DB is not
// safe for concurrent use by multiple goroutines; callers must serialize
// their own access (§5). Distinct DB handles over distinct datasets are
// fully independent.
type DB struct {
	root   *os.Root
	ticker string
	file   *os.File
	lock   *fileLock

	layout *layout
	ring   *ringState
	hdr    *header
	config Config

	archive  *archiveWriter
	logger   *zap.Logger
	readOnly bool

	state atomic.Int32
	mu    sync.Mutex
}

// Open opens or creates the dataset identified by (ticker, dir). If the
// file does not exist it is created with the given schema and config; if
// it exists, schema must match the persisted schema (ErrSchemaMismatch
// otherwise). Open blocks until it can acquire the dataset's exclusive
// lock; use OpenNonBlocking to fail fast instead.
func Open(dir, ticker string, schema Schema, config Config) (*DB, error) {
	return open(dir, ticker, schema, config, true)
}

// OpenNonBlocking behaves like Open but returns ErrLocked immediately
// instead of blocking if another process already holds the dataset's
// write lock.
func OpenNonBlocking(dir, ticker string, schema Schema, config Config) (*DB, error) {
	return open(dir, ticker, schema, config, false)
}

func open(dir, ticker string, schema Schema, config Config, blocking bool) (*DB, error) {
	l, err := resolve(schema)
	if err != nil {
		return nil, err
	}

	if config.MaxFileSize == 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("hocdb: create directory %s: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("hocdb: open directory %s: %w", dir, err)
	}

	name := datasetFileName(ticker)
	_, statErr := root.Stat(name)
	exists := statErr == nil

	var f *os.File
	var hdr *header

	if !exists {
		stride := l.strideBytes()
		capacity := int((config.MaxFileSize - HeaderSize) / int64(stride))
		if capacity < 0 {
			capacity = 0
		}
		hdr = newHeader(stride, capacity, fingerprint(schema), config.MaxFileSize,
			config.OverwriteOnFull, config.FlushOnWrite, config.AutoIncrement)

		f, err = createFile(root, name, config.MaxFileSize, hdr)
		if err != nil {
			root.Close()
			return nil, err
		}
		if err := writeSchemaFile(root, ticker, schema); err != nil {
			f.Close()
			root.Remove(name)
			root.Close()
			return nil, err
		}
	} else {
		f, err = root.OpenFile(name, os.O_RDWR, 0o644)
		if err != nil {
			root.Close()
			return nil, fmt.Errorf("hocdb: open %s: %w", name, err)
		}
		hdr, err = readHeader(f)
		if err != nil {
			f.Close()
			root.Close()
			return nil, err
		}

		if hdr.fingerprint != fingerprint(schema) {
			f.Close()
			root.Close()
			return nil, ErrSchemaMismatch
		}
		persisted, err := readSchemaFile(root, ticker)
		if err != nil {
			f.Close()
			root.Close()
			return nil, err
		}
		persistedLayout, err := resolve(persisted)
		if err != nil {
			f.Close()
			root.Close()
			return nil, fmt.Errorf("%w: persisted schema invalid: %v", ErrCorruptFile, err)
		}
		if !l.sameShape(persistedLayout) {
			f.Close()
			root.Close()
			return nil, ErrSchemaMismatch
		}
		// Config flags persisted at creation win for capacity-affecting
		// behaviour; explicit per-Open overrides (flush/overwrite/auto
		// increment) are honoured going forward.
		hdr.setConfig(config.OverwriteOnFull, config.FlushOnWrite, config.AutoIncrement)
	}

	lock := &fileLock{f: f}
	var lockErr error
	if blocking {
		lockErr = lock.Lock(LockExclusive)
	} else {
		lockErr = lock.TryLock(LockExclusive)
	}
	if lockErr != nil {
		f.Close()
		root.Close()
		return nil, lockErr
	}

	ring := ringStateFromHeader(hdr)
	readSlotFn := func(slot uint32) ([]byte, error) { return readSlot(f, slot, l.strideBytes()) }
	if err := recoverLastTimestamp(readSlotFn, l, ring); err != nil {
		lock.Unlock()
		f.Close()
		root.Close()
		return nil, err
	}

	logger := config.logger()
	if hdr.dirty {
		logger.Warn("hocdb: dataset reopened after an unclean shutdown",
			zap.String("ticker", ticker))
		hdr.dirty = false
	}

	db := &DB{
		root:   root,
		ticker: ticker,
		file:   f,
		lock:   lock,
		layout: l,
		ring:   ring,
		hdr:    hdr,
		config: config,
		logger: logger,
	}
	if config.ArchiveEvicted {
		db.archive = newArchiveWriter(root, ticker, logger)
	}

	if err := flushFile(db.file, db.hdr); err != nil {
		lock.Unlock()
		f.Close()
		root.Close()
		return nil, err
	}

	return db, nil
}

// OpenReadOnly opens an existing dataset purely for inspection: Append
// and Flush are unavailable (they return ErrClosed, the same rejection a
// closed handle gives) and Close never rewrites the header. It takes a
// shared OS lock rather than an exclusive one, so several read-only
// handles can inspect a dataset at once; it blocks while a writable handle
// holds the dataset, since that handle keeps its exclusive lock until
// Close.
func OpenReadOnly(dir, ticker string) (*DB, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("hocdb: open directory %s: %w", dir, err)
	}

	name := datasetFileName(ticker)
	f, err := root.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		root.Close()
		return nil, fmt.Errorf("hocdb: open %s: %w", name, err)
	}

	hdr, err := readHeader(f)
	if err != nil {
		f.Close()
		root.Close()
		return nil, err
	}

	schema, err := readSchemaFile(root, ticker)
	if err != nil {
		f.Close()
		root.Close()
		return nil, err
	}
	l, err := resolve(schema)
	if err != nil {
		f.Close()
		root.Close()
		return nil, fmt.Errorf("%w: persisted schema invalid: %v", ErrCorruptFile, err)
	}

	lock := &fileLock{f: f}
	if err := lock.Lock(LockShared); err != nil {
		f.Close()
		root.Close()
		return nil, err
	}

	ring := ringStateFromHeader(hdr)
	readSlotFn := func(slot uint32) ([]byte, error) { return readSlot(f, slot, l.strideBytes()) }
	if err := recoverLastTimestamp(readSlotFn, l, ring); err != nil {
		lock.Unlock()
		f.Close()
		root.Close()
		return nil, err
	}

	return &DB{
		root:     root,
		ticker:   ticker,
		file:     f,
		lock:     lock,
		layout:   l,
		ring:     ring,
		hdr:      hdr,
		logger:   zap.NewNop(),
		readOnly: true,
	}, nil
}

// requireOpen returns ErrClosed if the handle has been closed.
func (db *DB) requireOpen() error {
	if handleState(db.state.Load()) == stateClosed {
		return ErrClosed
	}
	return nil
}

// Close flushes the header, releases the OS lock, and closes the file.
// Using a closed handle afterwards returns ErrClosed; a second Close is
// a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if handleState(db.state.Load()) == stateClosed {
		return nil
	}
	db.state.Store(int32(stateClosed))

	var errs []error
	if !db.readOnly {
		if err := flushFile(db.file, db.hdr); err != nil {
			errs = append(errs, err)
		}
	}
	if db.archive != nil {
		if err := db.archive.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := db.lock.Unlock(); err != nil {
		errs = append(errs, err)
	}
	if err := db.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.root.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Stride returns the fixed byte length of one record for this dataset.
func (db *DB) Stride() int { return db.layout.strideBytes() }

// Capacity returns the maximum number of records the ring can hold.
func (db *DB) Capacity() uint32 { return db.ring.capacity }

// RecordCount returns the number of live records currently stored.
func (db *DB) RecordCount() uint32 { return db.ring.recordCount }

// FieldIndex resolves a field name to its schema index, or -1 if absent.
func (db *DB) FieldIndex(name string) int { return db.layout.fieldIndex(name) }
