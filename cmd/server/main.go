// Package main runs the spotwatch service: a scheduled refresh loop that
// pulls Finnish electricity price artifacts, derives decision-support
// sections, and serves the result over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"spotwatch/internal/api"
	"spotwatch/internal/artifact"
	"spotwatch/internal/coordinator"
	"spotwatch/internal/observability"
	"spotwatch/internal/paramstore"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	baseURL := flag.String("base-url", envOr("SPOTWATCH_BASE_URL", artifact.DefaultBaseURL), "Forecast artifact base URL")
	realizedURL := flag.String("realized-url", envOr("SPOTWATCH_REALIZED_URL", artifact.DefaultRealizedURL), "Realized price CSV URL")
	listenAddr := flag.String("listen", envOr("SPOTWATCH_LISTEN", ":8080"), "HTTP listen address")
	refreshInterval := flag.Duration("refresh-interval", envDuration("SPOTWATCH_REFRESH_INTERVAL", coordinator.DefaultRefreshInterval), "Artifact refresh interval")
	fetchTimeout := flag.Duration("fetch-timeout", envDuration("SPOTWATCH_FETCH_TIMEOUT", artifact.DefaultTimeout), "Per-request fetch timeout")
	paramsFile := flag.String("params-file", envOr("SPOTWATCH_PARAMS_FILE", "params.json"), "Parameter persistence file (empty disables persistence)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	client := artifact.NewClient(
		artifact.WithBaseURL(*baseURL),
		artifact.WithRealizedURL(*realizedURL),
		artifact.WithTimeout(*fetchTimeout),
		artifact.WithLogger(log.New(os.Stdout, "[artifact] ", log.LstdFlags)),
	)

	coord := coordinator.New(client,
		coordinator.WithLogger(log.New(os.Stdout, "[coordinator] ", log.LstdFlags)),
		coordinator.WithRefreshInterval(*refreshInterval),
	)

	// Restore persisted parameters and save them back on every change.
	if *paramsFile != "" {
		store := paramstore.New(*paramsFile)
		params, found, err := store.Load()
		if err != nil {
			logger.Printf("Failed to load params from %s: %v", store.Path(), err)
		} else if found {
			coord.ApplyParams(params)
			logger.Printf("Restored parameters from %s", store.Path())
		}
		coord.AddListener(func() {
			if err := store.Save(coord.Params()); err != nil {
				logger.Printf("Failed to save params to %s: %v", store.Path(), err)
			}
		})
	}

	server := api.NewServer(coord, api.WithLogger(log.New(os.Stdout, "[api] ", log.LstdFlags)))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Server shutdown error: %v", err)
		}

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	// Start refresh scheduler in background
	go runRefreshScheduler(ctx, coord, logger)

	logger.Printf("Starting HTTP server on %s (base URL %s, refresh every %v)", *listenAddr, coord.BaseURL(), coord.RefreshInterval())
	if err := server.Start(*listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	close(done)
	logger.Println("Shutdown complete")
}

// runRefreshScheduler refreshes immediately, then on every tick. A failed
// refresh keeps the previous snapshot in place.
func runRefreshScheduler(ctx context.Context, coord *coordinator.Coordinator, logger *log.Logger) {
	refresh := func() {
		start := time.Now()
		snap, err := coord.Refresh(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Printf("Refresh error: %v", err)
			observability.RecordRefreshRun("error", time.Since(start).Seconds())
			return
		}
		logger.Printf("Refresh completed in %v: %d points, %d daily averages",
			time.Since(start), len(snap.Series), len(snap.DailyAverages))
		observability.RecordRefreshRun("success", time.Since(start).Seconds())
		observability.RecordRefreshSuccess(float64(snap.Now.Unix()))
		observability.UpdateSnapshotGauges(len(snap.Series), len(snap.DailyAverages))
	}

	refresh()

	ticker := time.NewTicker(coord.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// envOr returns the environment variable's value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration parses a duration from the environment, or returns fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
