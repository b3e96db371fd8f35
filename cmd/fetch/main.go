// Package main runs one refresh cycle and prints the resulting snapshot as
// JSON. Useful for inspecting artifact data without starting the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"spotwatch/internal/artifact"
	"spotwatch/internal/coordinator"
)

func main() {
	baseURL := flag.String("base-url", artifact.DefaultBaseURL, "Forecast artifact base URL")
	realizedURL := flag.String("realized-url", artifact.DefaultRealizedURL, "Realized price CSV URL")
	fetchTimeout := flag.Duration("fetch-timeout", artifact.DefaultTimeout, "Per-request fetch timeout")
	extraFee := flag.Float64("extra-fee", coordinator.DefaultExtraFeeCents, "Extra fee in c/kWh added to displayed prices")

	flag.Parse()

	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags)

	client := artifact.NewClient(
		artifact.WithBaseURL(*baseURL),
		artifact.WithRealizedURL(*realizedURL),
		artifact.WithTimeout(*fetchTimeout),
		artifact.WithLogger(logger),
	)

	coord := coordinator.New(client, coordinator.WithLogger(logger))
	coord.SetExtraFeeCents(*extraFee)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap, err := coord.Refresh(ctx)
	if err != nil {
		logger.Fatalf("Refresh failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		logger.Fatalf("Encode snapshot: %v", err)
	}
}
