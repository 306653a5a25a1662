// JSON introspection dump tests (component L of SPEC_FULL.md).
package hocdb

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
)

func TestDumpJSONOneLinePerRecord(t *testing.T) {
	db, _ := openEvents(t, t.TempDir())

	var buf bytes.Buffer
	if err := db.DumpJSON(&buf); err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}

	dec := json.NewDecoder(&buf)
	var rows []map[string]any
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatalf("decode dump line: %v", err)
		}
		rows = append(rows, m)
	}

	if len(rows) != int(db.RecordCount()) {
		t.Fatalf("DumpJSON produced %d lines, want %d", len(rows), db.RecordCount())
	}

	wantTs := []float64{100, 200, 300}
	for i, row := range rows {
		ts, ok := row["timestamp"].(float64)
		if !ok {
			t.Fatalf("row %d: timestamp not a number: %#v", i, row["timestamp"])
		}
		if ts != wantTs[i] {
			t.Errorf("row %d: timestamp = %v, want %v", i, ts, wantTs[i])
		}
	}
}
