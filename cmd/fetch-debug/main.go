// Command fetch-debug runs one Garmin fetch with credentials from the
// environment and prints the normalized records as JSON. Useful for checking
// interval extraction without deploying the function.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bndxn/secure-app/pkg/garmin"
	"github.com/bndxn/secure-app/pkg/types"
)

func main() {
	count := flag.Int("count", 30, "number of activities to fetch")
	cacheRoot := flag.String("cache-root", os.TempDir(), "directory for the download scratch area")
	flag.Parse()

	username := os.Getenv("GARMIN_USERNAME")
	password := os.Getenv("GARMIN_PASSWORD")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "GARMIN_USERNAME and GARMIN_PASSWORD must be set")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	client := garmin.NewClient(types.Credentials{Username: username, Password: password})
	fetcher := garmin.NewFetcher(client, *cacheRoot, logger)

	records, err := fetcher.FetchRecent(context.Background(), *count)
	if err != nil {
		logger.Error("Fetch failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Error("Marshal failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
