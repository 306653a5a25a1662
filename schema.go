// Schema declaration and fixed-stride record layout.
//
// A Schema is an ordered list of (name, kind) fields. It is resolved once,
// at Open, into a per-field byte offset table and a total stride; every
// later read or write of a record addresses fields through that table
// rather than re-deriving offsets.
package hocdb

import "fmt"

// Kind identifies the binary representation of a schema field.
type Kind int

// Supported field kinds and their fixed widths in bytes.
const (
	I64    Kind = 1 // 8 bytes, little-endian two's complement
	F64    Kind = 2 // 8 bytes, IEEE-754
	U64    Kind = 3 // 8 bytes, little-endian
	Bool   Kind = 4 // 1 byte, 0 or 1
	String Kind = 5 // 128 bytes, null-padded UTF-8
)

// StringWidth is the fixed slot size for STRING fields.
const StringWidth = 128

// width returns the byte width of a kind, or 0 if the kind is unsupported.
func (k Kind) width() int {
	switch k {
	case I64, F64, U64:
		return 8
	case Bool:
		return 1
	case String:
		return StringWidth
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case I64:
		return "I64"
	case F64:
		return "F64"
	case U64:
		return "U64"
	case Bool:
		return "BOOL"
	case String:
		return "STRING"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one schema field.
type Field struct {
	Name string
	Kind Kind
}

// Schema is an ordered sequence of fields fixed for a dataset's lifetime.
type Schema []Field

// layout is the resolved form of a Schema: per-field byte offsets, total
// stride, and the index of the mandatory "timestamp" field. It is computed
// once by resolve and consulted on every append, load, query, and stats
// call — none of which re-walk the schema to find an offset.
type layout struct {
	fields    Schema
	offsets   []int
	stride    int
	tsIndex   int
	fieldByNm map[string]int
}

// resolve validates schema and computes its layout. It fails with
// ErrBadSchema when no field named "timestamp" of kind I64 exists, a kind
// is unsupported, or a field name is duplicated.
func resolve(schema Schema) (*layout, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: schema has no fields", ErrBadSchema)
	}

	l := &layout{
		fields:    make(Schema, len(schema)),
		offsets:   make([]int, len(schema)),
		tsIndex:   -1,
		fieldByNm: make(map[string]int, len(schema)),
	}
	copy(l.fields, schema)

	off := 0
	for i, f := range schema {
		w := f.Kind.width()
		if w == 0 {
			return nil, fmt.Errorf("%w: field %q has unsupported kind %d", ErrBadSchema, f.Name, int(f.Kind))
		}
		if _, dup := l.fieldByNm[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrBadSchema, f.Name)
		}
		l.fieldByNm[f.Name] = i
		l.offsets[i] = off
		off += w

		if f.Name == "timestamp" {
			if f.Kind != I64 {
				return nil, fmt.Errorf("%w: timestamp field must be I64", ErrBadSchema)
			}
			l.tsIndex = i
		}
	}

	if l.tsIndex < 0 {
		return nil, fmt.Errorf("%w: no field named \"timestamp\"", ErrBadSchema)
	}

	l.stride = off
	return l, nil
}

// offsetOf returns the byte offset of field i within a record image.
func (l *layout) offsetOf(i int) int { return l.offsets[i] }

// kindOf returns the kind of field i.
func (l *layout) kindOf(i int) Kind { return l.fields[i].Kind }

// strideBytes returns the total bytes per record.
func (l *layout) strideBytes() int { return l.stride }

// timestampIndex is the schema index of the timestamp field.
func (l *layout) timestampIndex() int { return l.tsIndex }

// fieldIndex resolves a field name to its schema index, or -1 if absent.
func (l *layout) fieldIndex(name string) int {
	i, ok := l.fieldByNm[name]
	if !ok {
		return -1
	}
	return i
}

// sameShape reports whether other has the same field count, names, kinds,
// and order as l. Used to validate a reopened dataset's caller-supplied
// schema against the one persisted in the file.
func (l *layout) sameShape(other *layout) bool {
	if len(l.fields) != len(other.fields) {
		return false
	}
	for i := range l.fields {
		if l.fields[i].Name != other.fields[i].Name || l.fields[i].Kind != other.fields[i].Kind {
			return false
		}
	}
	return true
}
