// JSON introspection dump: a debugging convenience, never consulted by
// append/load/query/stats. Values are decoded per field Kind into plain
// Go types so goccy/go-json can marshal them without custom MarshalJSON
// methods on the binary record format itself.
package hocdb

import (
	"encoding/binary"
	"io"
	"math"

	json "github.com/goccy/go-json"
)

// DumpJSON writes one JSON object per live record, in load order, to w.
// Each object is keyed by field name with a value decoded per its Kind
// (numbers as JSON numbers, BOOL as JSON booleans, STRING as JSON
// strings), newline-delimited.
func (db *DB) DumpJSON(w io.Writer) error {
	if err := db.requireOpen(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	enc := json.NewEncoder(w)
	stride := db.layout.strideBytes()
	buf := make([]byte, stride)

	for _, slot := range db.liveSlotOrder() {
		if _, err := db.file.ReadAt(buf, slotOffset(slot, stride)); err != nil {
			return err
		}
		if err := enc.Encode(recordToMap(buf, db.layout)); err != nil {
			return err
		}
	}
	return nil
}

func recordToMap(record []byte, l *layout) map[string]any {
	m := make(map[string]any, len(l.fields))
	for i, f := range l.fields {
		off := l.offsetOf(i)
		switch f.Kind {
		case I64:
			m[f.Name] = int64(binary.LittleEndian.Uint64(record[off : off+8]))
		case U64:
			m[f.Name] = binary.LittleEndian.Uint64(record[off : off+8])
		case F64:
			v := math.Float64frombits(binary.LittleEndian.Uint64(record[off : off+8]))
			m[f.Name] = v
		case Bool:
			m[f.Name] = record[off] != 0
		case String:
			m[f.Name] = readFieldString(record[off : off+StringWidth])
		}
	}
	return m
}
