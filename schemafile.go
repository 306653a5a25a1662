// Persisted schema sidecar.
//
// The core 64-byte header has no room for an arbitrary-length field list,
// and the record region must begin at a fixed offset immediately after it
// (the bit-exact contract the C ABI depends on), so the declared schema
// itself cannot live inside the .hoc file. It is instead persisted
// alongside it, as <ticker>.hoc.schema — a small JSON document, in the
// same spirit as the teacher's own JSON-line record format but used here
// purely as out-of-band metadata, never on the append/load/query path.
// The header's fingerprint (checksum.go) is checked first, as a fast
// reject; this sidecar is what resolve + sameShape ultimately compare
// against field-by-field, exactly as the spec requires.
package hocdb

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

func schemaFileName(ticker string) string {
	return ticker + ".hoc.schema"
}

type schemaDoc struct {
	Fields []schemaFieldDoc `json:"fields"`
}

type schemaFieldDoc struct {
	Name string `json:"name"`
	Kind int    `json:"kind"`
}

func schemaToDoc(s Schema) schemaDoc {
	doc := schemaDoc{Fields: make([]schemaFieldDoc, len(s))}
	for i, f := range s {
		doc.Fields[i] = schemaFieldDoc{Name: f.Name, Kind: int(f.Kind)}
	}
	return doc
}

func docToSchema(doc schemaDoc) Schema {
	s := make(Schema, len(doc.Fields))
	for i, f := range doc.Fields {
		s[i] = Field{Name: f.Name, Kind: Kind(f.Kind)}
	}
	return s
}

// writeSchemaFile persists schema as the dataset's sidecar JSON document.
func writeSchemaFile(root *os.Root, ticker string, schema Schema) error {
	data, err := json.Marshal(schemaToDoc(schema))
	if err != nil {
		return fmt.Errorf("hocdb: marshal schema: %w", err)
	}
	f, err := root.Create(schemaFileName(ticker))
	if err != nil {
		return fmt.Errorf("hocdb: write schema sidecar: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("hocdb: write schema sidecar: %w", err)
	}
	return f.Sync()
}

// readSchemaFile reads and parses the schema sidecar for ticker.
func readSchemaFile(root *os.Root, ticker string) (Schema, error) {
	f, err := root.Open(schemaFileName(ticker))
	if err != nil {
		return nil, fmt.Errorf("%w: missing schema sidecar: %v", ErrCorruptFile, err)
	}
	defer f.Close()

	var doc schemaDoc
	dec := json.NewDecoder(f)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: schema sidecar: %v", ErrCorruptFile, err)
	}
	return docToSchema(doc), nil
}
