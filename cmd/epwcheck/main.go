// Command epwcheck validates EnergyPlus Weather files in bulk. It walks a
// directory, parses every .epw file it finds, and reports per-file failures
// plus summary statistics. Exit status is 1 when any file fails.
//
// Usage:
//
//	epwcheck [--verbose] DIR
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/schollz/progressbar/v3"

	"github.com/couchcryptid/epw-ingest-service/internal/epw"
)

type args struct {
	Dir     string `arg:"positional,required" help:"directory to scan for .epw files"`
	Verbose bool   `arg:"-v,--verbose" help:"print row counts for passing files"`
}

func (args) Description() string {
	return "Parse every EnergyPlus Weather file under DIR and report failures."
}

type failure struct {
	path string
	err  error
}

func main() {
	var a args
	arg.MustParse(&a)

	files, err := collectFiles(a.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epwcheck: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "epwcheck: no .epw files under %s\n", a.Dir)
		os.Exit(1)
	}

	failures, totalRows := checkFiles(files, a.Verbose)

	fmt.Printf("\n%d files checked, %d passed, %d failed, %d rows decoded\n",
		len(files), len(files)-len(failures), len(failures), totalRows)

	if len(failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failures {
			fmt.Printf("  %s\n    %v\n", f.path, f.err)
		}
		printKindBreakdown(failures)
		os.Exit(1)
	}
}

func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".epw") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func checkFiles(files []string, verbose bool) ([]failure, int) {
	bar := progressbar.Default(int64(len(files)), "checking")

	var failures []failure
	totalRows := 0
	for _, path := range files {
		f, err := epw.Open(path)
		if err != nil {
			failures = append(failures, failure{path: path, err: err})
		} else {
			totalRows += f.Data.Len()
			if verbose {
				bar.Clear() //nolint:errcheck
				fmt.Printf("%s: station %s, %d rows\n", path, f.Header.Location.WMO, f.Data.Len())
			}
		}
		bar.Add(1) //nolint:errcheck
	}
	return failures, totalRows
}

// printKindBreakdown groups failures by parse error kind.
func printKindBreakdown(failures []failure) {
	kinds := map[string]int{}
	for _, f := range failures {
		var perr *epw.ParseError
		if errors.As(f.err, &perr) {
			kinds[perr.Kind.String()]++
		} else {
			kinds["other"]++
		}
	}
	fmt.Println("\nBy kind:")
	for kind, n := range kinds {
		fmt.Printf("  %-28s %d\n", kind, n)
	}
}
