// Eviction archive tests: a wrapped ring with ArchiveEvicted enabled
// must leave a decodable, length-prefixed zstd frame stream behind for
// every slot it overwrote.
package hocdb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestEvictionArchiveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	l := mustLayout(t, priceSchema())
	cfg := Config{MaxFileSize: HeaderSize + 3*16, OverwriteOnFull: true, ArchiveEvicted: true}
	db, err := Open(dir, "PX", priceSchema(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Four appends into a capacity-3 ring evicts exactly the ts=1 slot.
	for _, ts := range []int64{1, 2, 3, 4} {
		rec := encodeRecord(l, map[string]any{"timestamp": ts, "price": float64(ts)})
		if err := db.Append(rec); err != nil {
			t.Fatalf("Append(%d): %v", ts, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	archivePath := filepath.Join(dir, "PX.hoc.archive")
	raw, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(raw) < 4 {
		t.Fatalf("archive file too short: %d bytes", len(raw))
	}

	frameLen := binary.LittleEndian.Uint32(raw[:4])
	compressed := raw[4 : 4+frameLen]

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("decode archive frame: %v", err)
	}
	if len(plain) != l.strideBytes() {
		t.Fatalf("archived record length = %d, want %d", len(plain), l.strideBytes())
	}
	if ts := readTimestamp(plain, l); ts != 1 {
		t.Errorf("archived record timestamp = %d, want 1 (the evicted slot)", ts)
	}
}

func TestNoArchiveFileWhenNeverEnabled(t *testing.T) {
	dir := t.TempDir()
	l := mustLayout(t, priceSchema())
	db, err := Open(dir, "PX", priceSchema(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := encodeRecord(l, map[string]any{"timestamp": int64(1), "price": 1.0})
	if err := db.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Join(dir, "PX.hoc.archive")); !os.IsNotExist(err) {
		t.Errorf("archive file exists without ArchiveEvicted ever being enabled")
	}
}
