// Package hocdb implements an embeddable, single-writer, append-oriented
// store for fixed-width time-indexed records (e.g. market ticks, telemetry
// samples). Each dataset's records live in one file: a 64-byte header
// followed by a ring buffer of fixed-stride records; the declared schema
// is kept beside it in a small "<ticker>.hoc.schema" sidecar. Writes are append-only until the ring
// fills, at which point the oldest record is overwritten (when configured
// to do so) rather than the file growing further.
package hocdb

import "errors"

// Sentinel errors returned by database operations.
var (
	// ErrSchemaMismatch is returned by Open when the supplied schema does
	// not match the one persisted in an existing file.
	ErrSchemaMismatch = errors.New("hocdb: schema does not match persisted schema")

	// ErrBadSchema is returned when a schema has no timestamp field, a
	// duplicate field name, or a field of unsupported kind.
	ErrBadSchema = errors.New("hocdb: invalid schema")

	// ErrCorruptFile is returned when the header's magic bytes, checksum,
	// or structure cannot be validated.
	ErrCorruptFile = errors.New("hocdb: corrupt file")

	// ErrUnsupportedVersion is returned when the file's format_version is
	// newer than this implementation understands.
	ErrUnsupportedVersion = errors.New("hocdb: unsupported format version")

	// ErrInvalidRecordSize is returned by Append when the supplied record
	// image is not exactly stride bytes long.
	ErrInvalidRecordSize = errors.New("hocdb: invalid record size")

	// ErrNonMonotonicTimestamp is returned by Append when auto_increment
	// is disabled and the supplied timestamp does not exceed the last one.
	ErrNonMonotonicTimestamp = errors.New("hocdb: timestamp is not strictly increasing")

	// ErrBufferFull is returned by Append when the ring is full and
	// overwrite_on_full is disabled.
	ErrBufferFull = errors.New("hocdb: ring buffer is full")

	// ErrEmpty is returned by GetLatest when the dataset has no records.
	ErrEmpty = errors.New("hocdb: dataset is empty")

	// ErrFieldKindMismatch is returned by stats operations when the
	// requested field is not numeric (I64, U64, or F64).
	ErrFieldKindMismatch = errors.New("hocdb: field is not numeric")

	// ErrFieldNotFound is returned when a field index or name does not
	// resolve to a schema field.
	ErrFieldNotFound = errors.New("hocdb: field not found")

	// ErrClosed is returned when operating on a closed handle.
	ErrClosed = errors.New("hocdb: handle is closed")

	// ErrLocked is returned by OpenNonBlocking when another process
	// already holds the dataset's exclusive lock.
	ErrLocked = errors.New("hocdb: dataset is locked by another writer")
)
