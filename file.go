// File creation, header persistence, and record-slot I/O.
//
// A dataset's records live in one file inside a sandboxed directory root:
// <dir>/<ticker>.hoc (its schema sidecar is written by schemafile.go).
// os.Root confines all path operations to dir, the same defence folio uses
// against a ticker or path argument that might otherwise escape the
// intended directory via "..".
package hocdb

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxFileSize is used when Config.MaxFileSize is zero.
const DefaultMaxFileSize = 64 * 1024 * 1024

func datasetFileName(ticker string) string {
	return ticker + ".hoc"
}

// createFile allocates a new dataset file of exactly maxFileSize bytes and
// writes an initial header. Subsequent slot writes land within the
// already-allocated region and never extend the file.
func createFile(root *os.Root, name string, maxFileSize int64, hdr *header) (*os.File, error) {
	f, err := root.Create(name)
	if err != nil {
		return nil, fmt.Errorf("hocdb: create %s: %w", name, err)
	}

	if err := f.Truncate(maxFileSize); err != nil {
		f.Close()
		root.Remove(name)
		return nil, fmt.Errorf("hocdb: allocate %s: %w", name, err)
	}

	if _, err := f.WriteAt(hdr.encode(), 0); err != nil {
		f.Close()
		root.Remove(name)
		return nil, fmt.Errorf("hocdb: write header %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		root.Remove(name)
		return nil, fmt.Errorf("hocdb: sync %s: %w", name, err)
	}

	return f, nil
}

// readHeader reads and validates the 64-byte header at the start of f.
func readHeader(f *os.File) (*header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("hocdb: read header: %w", err)
	}
	return decodeHeader(buf)
}

// writeHeader persists h at offset 0.
func writeHeader(f *os.File, h *header) error {
	if _, err := f.WriteAt(h.encode(), 0); err != nil {
		return fmt.Errorf("hocdb: write header: %w", err)
	}
	return nil
}

// slotOffset computes the byte offset of record slot i.
func slotOffset(i uint32, stride int) int64 {
	return HeaderSize + int64(i)*int64(stride)
}

// readSlot reads the stride bytes at slot i into a freshly allocated buffer.
func readSlot(f *os.File, i uint32, stride int) ([]byte, error) {
	buf := make([]byte, stride)
	if _, err := f.ReadAt(buf, slotOffset(i, stride)); err != nil {
		return nil, fmt.Errorf("hocdb: read slot %d: %w", i, err)
	}
	return buf, nil
}

// writeSlot writes record (exactly stride bytes) into slot i.
func writeSlot(f *os.File, i uint32, stride int, record []byte) error {
	if _, err := f.WriteAt(record, slotOffset(i, stride)); err != nil {
		return fmt.Errorf("hocdb: write slot %d: %w", i, err)
	}
	return nil
}

// flushFile persists the header and fsyncs the file.
func flushFile(f *os.File, h *header) error {
	if err := writeHeader(f, h); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("hocdb: fsync: %w", err)
	}
	return nil
}
