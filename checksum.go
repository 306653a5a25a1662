// Header integrity and schema fingerprinting.
//
// The on-disk header carries two hashes in its reserved region: a blake2b
// fingerprint of the declared schema (a cheap pre-check ahead of the full
// field-by-field comparison Open always performs) and an xxh3 checksum
// over the header's own live bytes (a corruption check on the header
// itself, independent of the schema it describes). Both algorithms are
// the ones the teacher already reaches for when it needs a fast hash:
// xxh3 for its default label digest, blake2b for its highest-distribution
// option.
package hocdb

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// fingerprint hashes a schema's ordered (name, kind) pairs into a 64-bit
// digest. Two schemas that differ in field count, name, kind, or order
// produce different fingerprints with overwhelming probability; a match
// is not proof of equality (resolve + sameShape still run the exact
// comparison on Open), only a fast way to reject most mismatches.
func fingerprint(schema Schema) uint64 {
	h, _ := blake2b.New(8, nil)
	var buf [2]byte
	for _, f := range schema {
		h.Write([]byte(f.Name))
		h.Write([]byte{0}) // separator: keeps "ab","c" distinct from "a","bc"
		binary.LittleEndian.PutUint16(buf[:], uint16(f.Kind))
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// headerChecksum computes the xxh3-64 checksum over the live portion of
// the header (bytes [0, offChecksum)).
func headerChecksum(liveBytes []byte) uint64 {
	return xxh3.Hash(liveBytes)
}
