// Aggregation tests: GetStats empty-range sentinels, kind validation,
// and consistency (property 8); GetLatest over an empty dataset.
package hocdb

import (
	"errors"
	"math"
	"testing"
)

// TestStatsEmptyRangeSentinel checks the documented sentinel values for
// an aggregation over a range that matches no records:
// {min=+Inf, max=-Inf, sum=0, count=0, mean=NaN}.
func TestStatsEmptyRangeSentinel(t *testing.T) {
	db, _ := openEvents(t, t.TempDir())

	priceIdx := db.FieldIndex("price")
	stats, err := db.GetStats(10000, 20000, priceIdx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Count != 0 {
		t.Errorf("Count = %d, want 0", stats.Count)
	}
	if !math.IsInf(stats.Min, 1) {
		t.Errorf("Min = %v, want +Inf", stats.Min)
	}
	if !math.IsInf(stats.Max, -1) {
		t.Errorf("Max = %v, want -Inf", stats.Max)
	}
	if stats.Sum != 0 {
		t.Errorf("Sum = %v, want 0", stats.Sum)
	}
	if !math.IsNaN(stats.Mean) {
		t.Errorf("Mean = %v, want NaN", stats.Mean)
	}
}

// TestStatsFieldKindMismatch checks that aggregation over a STRING
// field fails with ErrFieldKindMismatch rather than reinterpreting the
// slot as a number.
func TestStatsFieldKindMismatch(t *testing.T) {
	dir := t.TempDir()
	schema := Schema{
		{Name: "timestamp", Kind: I64},
		{Name: "symbol", Kind: String},
	}
	db, err := Open(dir, "SYM", schema, Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	symIdx := db.FieldIndex("symbol")
	if _, err := db.GetStats(0, 1000, symIdx); !errors.Is(err, ErrFieldKindMismatch) {
		t.Fatalf("GetStats(symbol) = %v, want ErrFieldKindMismatch", err)
	}
	if _, _, err := db.GetLatest(symIdx); !errors.Is(err, ErrFieldKindMismatch) {
		t.Fatalf("GetLatest(symbol) = %v, want ErrFieldKindMismatch", err)
	}
}

// TestStatsFieldNotFound checks an out-of-range field index.
func TestStatsFieldNotFound(t *testing.T) {
	db, _ := openEvents(t, t.TempDir())

	if _, err := db.GetStats(0, 1000, 99); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("GetStats(99) = %v, want ErrFieldNotFound", err)
	}
}

// TestGetLatestEmpty checks that GetLatest on a dataset with no records
// fails with ErrEmpty.
func TestGetLatestEmpty(t *testing.T) {
	db := openTick(t, t.TempDir(), Config{})
	usdIdx := db.FieldIndex("usd")
	if _, _, err := db.GetLatest(usdIdx); !errors.Is(err, ErrEmpty) {
		t.Fatalf("GetLatest on empty dataset = %v, want ErrEmpty", err)
	}
}

// TestStatsConsistency is property 8: sum = Σvᵢ, mean = sum/count when
// count>0, and min <= mean <= max.
func TestStatsConsistency(t *testing.T) {
	dir := t.TempDir()
	l := mustLayout(t, priceSchema())
	db, err := Open(dir, "PX", priceSchema(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	values := []float64{-5.5, 0.0, 3.25, 10.0, 2.0}
	var wantSum float64
	for i, v := range values {
		wantSum += v
		rec := encodeRecord(l, map[string]any{"timestamp": int64(i + 1), "price": v})
		if err := db.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	priceIdx := db.FieldIndex("price")
	stats, err := db.GetStats(0, 1000, priceIdx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Count != uint64(len(values)) {
		t.Fatalf("Count = %d, want %d", stats.Count, len(values))
	}
	if diff := stats.Sum - wantSum; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Sum = %v, want %v", stats.Sum, wantSum)
	}
	wantMean := wantSum / float64(len(values))
	if diff := stats.Mean - wantMean; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Mean = %v, want %v", stats.Mean, wantMean)
	}
	if stats.Min > stats.Mean || stats.Mean > stats.Max {
		t.Errorf("min <= mean <= max violated: min=%v mean=%v max=%v", stats.Min, stats.Mean, stats.Max)
	}
}
