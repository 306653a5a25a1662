// Eviction archive.
//
// When ArchiveEvicted is set, the record bytes Append is about to overwrite
// are Zstd-compressed and appended to a companion "<ticker>.hoc.archive"
// file as a simple length-prefixed frame stream, before the live slot is
// overwritten. Unlike the teacher's inline history snapshots — individual
// ascii85 strings embedded in a JSON record — this sidecar is pure binary
// and append-only, so frames are written as a 4-byte little-endian length
// followed by the compressed payload, with no encoding layer needed.
//
// Archiving is best-effort: a failure to open the file or write a frame is
// logged and otherwise ignored, since losing an already-evicted record's
// backup must never fail an Append that has already mutated live state.
package hocdb

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// Shared encoder, built once: construction allocates internal state tables
// that are too costly to repeat per archived slot. SpeedFastest matches the
// teacher's reasoning — archiving runs inline on the Append hot path, so
// encode latency matters more than ratio.
var archiveEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))

func archiveFileName(ticker string) string {
	return ticker + ".hoc.archive"
}

// archiveWriter appends compressed, evicted record images to a dataset's
// archive sidecar. The underlying file is opened lazily on first use so
// that enabling ArchiveEvicted on a dataset that never wraps creates no
// extra file.
type archiveWriter struct {
	root   *os.Root
	ticker string
	logger *zap.Logger

	mu sync.Mutex
	f  *os.File
}

func newArchiveWriter(root *os.Root, ticker string, logger *zap.Logger) *archiveWriter {
	return &archiveWriter{root: root, ticker: ticker, logger: logger}
}

// archive compresses old and appends it as one frame. Errors are logged,
// never returned: see the package comment on best-effort semantics.
func (a *archiveWriter) archive(old []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.f == nil {
		f, err := a.root.OpenFile(archiveFileName(a.ticker), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			a.logger.Warn("hocdb: failed to open eviction archive", zap.Error(err))
			return
		}
		a.f = f
	}

	compressed := archiveEncoder.EncodeAll(old, nil)

	var frame [4]byte
	binary.LittleEndian.PutUint32(frame[:], uint32(len(compressed)))
	if _, err := a.f.Write(frame[:]); err != nil {
		a.logger.Warn("hocdb: failed to write eviction archive frame header", zap.Error(err))
		return
	}
	if _, err := a.f.Write(compressed); err != nil {
		a.logger.Warn("hocdb: failed to write eviction archive frame", zap.Error(err))
	}
}

// close syncs and closes the archive file, if one was ever opened.
func (a *archiveWriter) close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.f == nil {
		return nil
	}
	if err := a.f.Sync(); err != nil {
		a.f.Close()
		return err
	}
	return a.f.Close()
}
