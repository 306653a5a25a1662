// On-disk header: the first 64 bytes of every dataset file.
//
// All integers are little-endian. Fields up to byte 15 are the fixed
// contract described by the core specification (magic, version, flags,
// write cursor, record count); bytes 16-63 are this implementation's use
// of the reserved region (stride/capacity/fingerprint/checksum caching —
// see checksum.go), kept entirely out of the bit-exact contract that a C
// caller reading only bytes 0-15 relies on.
package hocdb

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the header in bytes.
const HeaderSize = 64

// Magic identifies a HOCDB file.
var magic = [4]byte{'H', 'O', 'C', 'D'}

// FormatVersion is the on-disk format version this implementation writes
// and the newest version it will open.
const FormatVersion = 1

// flags bit positions within the 2-byte flags field.
const flagWrapped = 1 << 0

// config flag bit positions within the 4-byte config_flags field.
const (
	cfgOverwriteOnFull = 1 << 0
	cfgFlushOnWrite    = 1 << 1
	cfgAutoIncrement   = 1 << 2
)

// header byte offsets.
const (
	offMagic       = 0
	offVersion     = 4
	offFlags       = 6
	offWriteCursor = 8
	offRecordCount = 12
	offStride      = 16
	offCapacity    = 20
	offFingerprint = 24
	offMaxFileSize = 32
	offConfigFlags = 40
	offDirty       = 44
	offChecksum    = 45
	checksumLen    = 8 // bytes [53, 64) after the checksum are zero pad
)

// header mirrors the on-disk header contents.
type header struct {
	version     uint16
	wrapped     bool
	writeCursor uint32
	recordCount uint32
	stride      uint32
	capacity    uint32
	fingerprint uint64
	maxFileSize uint64
	configFlags uint32
	dirty       bool
}

// newHeader builds the initial header for a freshly created file.
func newHeader(stride, capacity int, fp uint64, maxFileSize int64, overwriteOnFull, flushOnWrite, autoIncrement bool) *header {
	h := &header{
		version:     FormatVersion,
		stride:      uint32(stride),
		capacity:    uint32(capacity),
		fingerprint: fp,
		maxFileSize: uint64(maxFileSize),
	}
	h.setConfig(overwriteOnFull, flushOnWrite, autoIncrement)
	return h
}

func (h *header) setConfig(overwriteOnFull, flushOnWrite, autoIncrement bool) {
	var f uint32
	if overwriteOnFull {
		f |= cfgOverwriteOnFull
	}
	if flushOnWrite {
		f |= cfgFlushOnWrite
	}
	if autoIncrement {
		f |= cfgAutoIncrement
	}
	h.configFlags = f
}

// encode serializes the header into exactly HeaderSize bytes.
func (h *header) encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[offMagic:], magic[:])
	binary.LittleEndian.PutUint16(buf[offVersion:], h.version)

	var flags uint16
	if h.wrapped {
		flags |= flagWrapped
	}
	binary.LittleEndian.PutUint16(buf[offFlags:], flags)

	binary.LittleEndian.PutUint32(buf[offWriteCursor:], h.writeCursor)
	binary.LittleEndian.PutUint32(buf[offRecordCount:], h.recordCount)
	binary.LittleEndian.PutUint32(buf[offStride:], h.stride)
	binary.LittleEndian.PutUint32(buf[offCapacity:], h.capacity)
	binary.LittleEndian.PutUint64(buf[offFingerprint:], h.fingerprint)
	binary.LittleEndian.PutUint64(buf[offMaxFileSize:], h.maxFileSize)
	binary.LittleEndian.PutUint32(buf[offConfigFlags:], h.configFlags)
	if h.dirty {
		buf[offDirty] = 1
	}

	sum := headerChecksum(buf[:offChecksum])
	binary.LittleEndian.PutUint64(buf[offChecksum:], sum)

	return buf
}

// decodeHeader parses and validates a HeaderSize-byte buffer.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) != HeaderSize {
		return nil, fmt.Errorf("%w: short header (%d bytes)", ErrCorruptFile, len(buf))
	}
	if string(buf[offMagic:offMagic+4]) != string(magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptFile)
	}

	version := binary.LittleEndian.Uint16(buf[offVersion:])
	if version > FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}

	gotSum := binary.LittleEndian.Uint64(buf[offChecksum:])
	wantSum := headerChecksum(buf[:offChecksum])
	if gotSum != wantSum {
		return nil, fmt.Errorf("%w: header checksum mismatch", ErrCorruptFile)
	}

	flags := binary.LittleEndian.Uint16(buf[offFlags:])

	h := &header{
		version:     version,
		wrapped:     flags&flagWrapped != 0,
		writeCursor: binary.LittleEndian.Uint32(buf[offWriteCursor:]),
		recordCount: binary.LittleEndian.Uint32(buf[offRecordCount:]),
		stride:      binary.LittleEndian.Uint32(buf[offStride:]),
		capacity:    binary.LittleEndian.Uint32(buf[offCapacity:]),
		fingerprint: binary.LittleEndian.Uint64(buf[offFingerprint:]),
		maxFileSize: binary.LittleEndian.Uint64(buf[offMaxFileSize:]),
		configFlags: binary.LittleEndian.Uint32(buf[offConfigFlags:]),
		dirty:       buf[offDirty] != 0,
	}
	return h, nil
}

func (h *header) overwriteOnFull() bool { return h.configFlags&cfgOverwriteOnFull != 0 }
func (h *header) flushOnWrite() bool    { return h.configFlags&cfgFlushOnWrite != 0 }
func (h *header) autoIncrement() bool   { return h.configFlags&cfgAutoIncrement != 0 }
