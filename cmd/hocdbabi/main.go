// Command hocdbabi is not an executable; built with
// `go build -buildmode=c-shared`, it produces a shared library exposing
// the C ABI described in the on-disk format's companion header
// (bindings/c/hocdb.h in the reference implementation) and mirrored here
// field-for-field. Every exported function matches a §6 entry point.
//
// The process-local handle table is runtime/cgo.Handle: the standard
// library's own mechanism for passing opaque Go values across the cgo
// boundary, and a better fit here than a hand-rolled map+mutex registry
// since it already gives pointer-sized, GC-safe tokens with no code of
// our own to get wrong.
package main

/*
#include <stdint.h>
#include <stddef.h>
#include <stdlib.h>

typedef struct {
    const char* name;
    int type;
} CField;

typedef struct {
    size_t field_index;
    int type;
    int64_t val_i64;
    double val_f64;
    uint64_t val_u64;
    char val_string[128];
    int val_bool;
} HOCDBFilter;

typedef struct {
    double min;
    double max;
    double sum;
    uint64_t count;
    double mean;
} HOCDBStats;
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"github.com/o1dstaRs/hocdb"
)

// Field type constants, matching the reference header's #define block.
// BOOL has no assignment in the original C header; 4 is the only unused
// slot between the others (I64=1, F64=2, U64=3, STRING=5) and is fixed
// here as the implementation's choice.
const (
	typeI64    = 1
	typeF64    = 2
	typeU64    = 3
	typeBool   = 4
	typeString = 5
)

func kindFromCType(t C.int) hocdb.Kind {
	switch int(t) {
	case typeI64:
		return hocdb.I64
	case typeF64:
		return hocdb.F64
	case typeU64:
		return hocdb.U64
	case typeBool:
		return hocdb.Bool
	case typeString:
		return hocdb.String
	default:
		return 0
	}
}

//export hocdb_init
func hocdb_init(ticker, path *C.char, schema *C.CField, schemaLen C.size_t, maxFileSize C.int64_t, overwriteOnFull, flushOnWrite, autoIncrement C.int) unsafe.Pointer {
	fields := make(hocdb.Schema, int(schemaLen))
	cFields := unsafe.Slice(schema, int(schemaLen))
	for i, f := range cFields {
		fields[i] = hocdb.Field{Name: C.GoString(f.name), Kind: kindFromCType(f._type)}
	}

	cfg := hocdb.Config{
		MaxFileSize:     int64(maxFileSize),
		OverwriteOnFull: overwriteOnFull != 0,
		FlushOnWrite:    flushOnWrite != 0,
		AutoIncrement:   autoIncrement != 0,
	}

	db, err := hocdb.Open(C.GoString(path), C.GoString(ticker), fields, cfg)
	if err != nil {
		return nil
	}

	// The handle token is stored in a C-heap cell (not Go memory) so that
	// hocdb_close's C.free on it is valid: a Go pointer returned across
	// the cgo boundary must never be released with the C allocator.
	h := cgo.NewHandle(db)
	cell := C.malloc(C.size_t(unsafe.Sizeof(h)))
	*(*cgo.Handle)(cell) = h
	return cell
}

func handleDB(handle unsafe.Pointer) *hocdb.DB {
	if handle == nil {
		return nil
	}
	h := *(*cgo.Handle)(handle)
	db, _ := h.Value().(*hocdb.DB)
	return db
}

//export hocdb_append
func hocdb_append(handle unsafe.Pointer, data unsafe.Pointer, length C.size_t) C.int {
	db := handleDB(handle)
	if db == nil {
		return -1
	}
	record := unsafe.Slice((*byte)(data), int(length))
	err := db.Append(record)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, hocdb.ErrInvalidRecordSize):
		return -2
	case errors.Is(err, hocdb.ErrNonMonotonicTimestamp):
		return -3
	default:
		return -1
	}
}

//export hocdb_flush
func hocdb_flush(handle unsafe.Pointer) C.int {
	db := handleDB(handle)
	if db == nil {
		return -1
	}
	if err := db.Flush(); err != nil {
		return -1
	}
	return 0
}

//export hocdb_load
func hocdb_load(handle unsafe.Pointer, outLen *C.size_t) unsafe.Pointer {
	db := handleDB(handle)
	if db == nil {
		return nil
	}
	data, err := db.Load()
	if err != nil {
		return nil
	}
	return toCBuffer(data, outLen)
}

//export hocdb_query
func hocdb_query(handle unsafe.Pointer, startTs, endTs C.int64_t, filters *C.HOCDBFilter, filtersLen C.size_t, outLen *C.size_t) unsafe.Pointer {
	db := handleDB(handle)
	if db == nil {
		return nil
	}

	goFilters := make([]hocdb.Filter, int(filtersLen))
	if filtersLen > 0 {
		cFilters := unsafe.Slice(filters, int(filtersLen))
		for i, f := range cFilters {
			goFilters[i] = hocdb.Filter{
				FieldIndex:  int(f.field_index),
				Kind:        kindFromCType(f._type),
				ValueI64:    int64(f.val_i64),
				ValueF64:    float64(f.val_f64),
				ValueU64:    uint64(f.val_u64),
				ValueBool:   f.val_bool != 0,
				ValueString: C.GoString(&f.val_string[0]),
			}
		}
	}

	data, err := db.Query(int64(startTs), int64(endTs), goFilters)
	if err != nil {
		return nil
	}
	return toCBuffer(data, outLen)
}

//export hocdb_get_stats
func hocdb_get_stats(handle unsafe.Pointer, startTs, endTs C.int64_t, fieldIndex C.size_t, outStats *C.HOCDBStats) C.int {
	db := handleDB(handle)
	if db == nil {
		return -1
	}
	stats, err := db.GetStats(int64(startTs), int64(endTs), int(fieldIndex))
	if err != nil {
		return -1
	}
	outStats.min = C.double(stats.Min)
	outStats.max = C.double(stats.Max)
	outStats.sum = C.double(stats.Sum)
	outStats.count = C.uint64_t(stats.Count)
	outStats.mean = C.double(stats.Mean)
	return 0
}

//export hocdb_get_latest
func hocdb_get_latest(handle unsafe.Pointer, fieldIndex C.size_t, outVal *C.double, outTs *C.int64_t) C.int {
	db := handleDB(handle)
	if db == nil {
		return -1
	}
	val, ts, err := db.GetLatest(int(fieldIndex))
	if err != nil {
		return -1
	}
	*outVal = C.double(val)
	*outTs = C.int64_t(ts)
	return 0
}

//export hocdb_get_field_index
func hocdb_get_field_index(handle unsafe.Pointer, name *C.char) C.int64_t {
	db := handleDB(handle)
	if db == nil {
		return -1
	}
	return C.int64_t(db.FieldIndex(C.GoString(name)))
}

//export hocdb_free
func hocdb_free(ptr unsafe.Pointer) {
	if ptr != nil {
		C.free(ptr)
	}
}

//export hocdb_close
func hocdb_close(handle unsafe.Pointer) {
	if handle == nil {
		return
	}
	h := *(*cgo.Handle)(handle)
	if db, ok := h.Value().(*hocdb.DB); ok {
		db.Close()
	}
	h.Delete()
	C.free(handle)
}

// toCBuffer copies a Go byte slice into a C-heap allocation the caller
// must release via hocdb_free, since Go-allocated memory cannot be handed
// to C code to keep or to release with the C allocator.
func toCBuffer(data []byte, outLen *C.size_t) unsafe.Pointer {
	*outLen = C.size_t(len(data))
	if len(data) == 0 {
		return C.malloc(1)
	}
	buf := C.malloc(C.size_t(len(data)))
	copy(unsafe.Slice((*byte)(buf), len(data)), data)
	return buf
}

func main() {}
