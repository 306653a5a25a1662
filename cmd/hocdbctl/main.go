// Command hocdbctl inspects a HOCDB dataset without writing a C program
// against the ABI. It never appends, so it opens datasets read-only and
// takes no write lock.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/o1dstaRs/hocdb"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	sub := args[0]
	rest := args[1:]

	switch sub {
	case "header":
		return runHeader(rest)
	case "dump":
		return runDump(rest)
	case "stats":
		return runStats(rest)
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "hocdbctl: unknown subcommand %q\n\n", sub)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: hocdbctl <subcommand> --dir DIR --ticker TICKER [flags]

Subcommands:
  header   print the on-disk header fields
  dump     print every live record as newline-delimited JSON
  stats    aggregate a numeric field over a time range

Run "hocdbctl <subcommand> --help" for subcommand flags.
`)
}

func datasetFlags(fs *flag.FlagSet) (dir, ticker *string) {
	dir = fs.String("dir", ".", "directory containing the dataset file")
	ticker = fs.String("ticker", "", "dataset ticker (required)")
	return
}

func openForInspection(fs *flag.FlagSet, dir, ticker string) (*hocdb.DB, int) {
	if ticker == "" {
		fmt.Fprintln(os.Stderr, "hocdbctl: --ticker is required")
		fs.Usage()
		return nil, 1
	}
	db, err := hocdb.OpenReadOnly(dir, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hocdbctl: open %s/%s: %v\n", dir, ticker, err)
		return nil, 1
	}
	return db, 0
}

func runHeader(args []string) int {
	fs := flag.NewFlagSet("header", flag.ContinueOnError)
	dir, ticker := datasetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	db, code := openForInspection(fs, *dir, *ticker)
	if db == nil {
		return code
	}
	defer db.Close()

	fmt.Printf("stride:       %d\n", db.Stride())
	fmt.Printf("capacity:     %d\n", db.Capacity())
	fmt.Printf("record_count: %d\n", db.RecordCount())
	return 0
}

func runDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	dir, ticker := datasetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	db, code := openForInspection(fs, *dir, *ticker)
	if db == nil {
		return code
	}
	defer db.Close()

	if err := db.DumpJSON(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hocdbctl: dump: %v\n", err)
		return 1
	}
	return 0
}

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	dir, ticker := datasetFlags(fs)
	field := fs.String("field", "", "field name to aggregate (required)")
	startTs := fs.Int64("start", 0, "range start timestamp (inclusive)")
	endTs := fs.Int64("end", int64(1)<<62, "range end timestamp (exclusive)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	db, code := openForInspection(fs, *dir, *ticker)
	if db == nil {
		return code
	}
	defer db.Close()

	if *field == "" {
		fmt.Fprintln(os.Stderr, "hocdbctl: --field is required")
		return 1
	}
	idx := db.FieldIndex(*field)
	if idx < 0 {
		fmt.Fprintf(os.Stderr, "hocdbctl: unknown field %q\n", *field)
		return 1
	}

	stats, err := db.GetStats(*startTs, *endTs, idx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hocdbctl: stats: %v\n", err)
		return 1
	}

	fmt.Printf("count: %d\n", stats.Count)
	fmt.Printf("min:   %v\n", stats.Min)
	fmt.Printf("max:   %v\n", stats.Max)
	fmt.Printf("sum:   %v\n", stats.Sum)
	fmt.Printf("mean:  %v\n", stats.Mean)
	return 0
}
