// Header integrity tests: magic/version validation and the xxh3
// header checksum's corruption detection (component I of SPEC_FULL.md).
package hocdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	db := openTick(t, dir, Config{})
	db.Close()

	path := filepath.Join(dir, "TICK.hoc")
	corruptByteAt(t, path, offMagic, 0xFF)

	if _, err := Open(dir, "TICK", tickSchema(), Config{}); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("Open(bad magic) = %v, want ErrCorruptFile", err)
	}
}

func TestOpenRejectsFutureVersion(t *testing.T) {
	dir := t.TempDir()
	db := openTick(t, dir, Config{})
	db.Close()

	path := filepath.Join(dir, "TICK.hoc")
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	hdr, err := readHeader(f)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	hdr.version = FormatVersion + 1
	if err := writeHeader(f, hdr); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	f.Close()

	if _, err := Open(dir, "TICK", tickSchema(), Config{}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("Open(future version) = %v, want ErrUnsupportedVersion", err)
	}
}

// TestHeaderChecksumDetectsCorruption flips a single live header byte
// (leaving the checksum itself untouched) and verifies Open reports
// ErrCorruptFile rather than silently trusting a torn header.
func TestHeaderChecksumDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	db := openTick(t, dir, Config{})
	db.Close()

	path := filepath.Join(dir, "TICK.hoc")
	// offWriteCursor sits well inside the checksummed region [0, offChecksum).
	corruptByteAt(t, path, offWriteCursor, 0xAB)

	if _, err := Open(dir, "TICK", tickSchema(), Config{}); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("Open(flipped header byte) = %v, want ErrCorruptFile", err)
	}
}

// TestSchemaFingerprintFastReject verifies that a renamed field is
// rejected via the fingerprint pre-check before the full sidecar
// comparison even has a chance to run (the persisted sidecar is left
// untouched; only the in-memory fingerprint computed from the caller's
// schema differs).
func TestSchemaFingerprintFastReject(t *testing.T) {
	dir := t.TempDir()
	db := openTick(t, dir, Config{})
	db.Close()

	renamed := Schema{
		{Name: "timestamp", Kind: I64},
		{Name: "usd", Kind: F64},
		{Name: "vol", Kind: F64}, // was "volume"
	}
	if _, err := Open(dir, "TICK", renamed, Config{}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Open(renamed field) = %v, want ErrSchemaMismatch", err)
	}
}

func corruptByteAt(t *testing.T, path string, offset int, b byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte{b}, int64(offset)); err != nil {
		t.Fatalf("write corrupt byte: %v", err)
	}
}
