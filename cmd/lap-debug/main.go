// Command lap-debug prints the interval rows extracted from a local
// activity file. Accepts .tcx and .fit files; useful for checking what the
// analyzer would feed the coach for a given download.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bndxn/secure-app/pkg/domain/fitlaps"
	"github.com/bndxn/secure-app/pkg/domain/tcx"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: lap-debug <activity-file.tcx|.fit>")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}

	var rows []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tcx":
		rows = tcx.IntervalRows(data)
	case ".fit":
		rows = fitlaps.IntervalRows(data)
	default:
		fmt.Printf("Unsupported extension %q, want .tcx or .fit\n", filepath.Ext(path))
		os.Exit(1)
	}

	if rows == nil {
		fmt.Println("No lap data extracted")
		os.Exit(1)
	}

	fmt.Printf("=== %d INTERVALS ===\n", len(rows))
	for i, row := range rows {
		fmt.Printf("%2d  %s\n", i+1, row)
	}
}
