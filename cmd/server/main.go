/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the claim review engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load the benchmark rate table (seed file, then persisted appends)
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: claims.db)
           Use ":memory:" for in-memory database
  -rates   YAML seed document with the benchmark history (optional when
           the database already holds the published segments)

RATE TABLE PRECEDENCE:
  Segments already persisted in the database win over the seed file: the
  seed provisions a fresh database, after which the append log in the
  store is the authoritative history.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # First run: provision from the seed document
  ./server -db="./data/claims.db" -rates="./config/rates.yaml"

  # Subsequent runs: history comes from the database
  ./server -db="./data/claims.db"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - rates/loader.go: Seed document format
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrel/claims-engine/api"
	"github.com/kestrel/claims-engine/rates"
	"github.com/kestrel/claims-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "claims.db", "SQLite database path")
	ratesPath := flag.String("rates", "", "YAML benchmark seed document")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	table, err := loadRateTable(store, *ratesPath)
	if err != nil {
		log.Fatalf("Failed to load rate table: %v", err)
	}
	log.Printf("Loaded %d benchmark segments", len(table.AllSegments()))

	// Initialize handler and router
	handler := api.NewHandler(store, rates.NewProvider(table))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Claim engine listening on http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// loadRateTable prefers the persisted append log; a seed document
// provisions an empty database on first run.
func loadRateTable(store *sqlite.Store, seedPath string) (*rates.Table, error) {
	table, err := store.LoadRateTable(context.Background())
	if err != nil {
		return nil, err
	}
	if len(table.AllSegments()) > 0 {
		return table, nil
	}

	if seedPath == "" {
		log.Println("Warning: empty rate table and no seed document; floating computations will fail")
		return table, nil
	}

	seeded, err := rates.LoadYAMLFile(seedPath)
	if err != nil {
		return nil, err
	}
	for _, s := range seeded.AllSegments() {
		if err := store.AppendRateSegment(context.Background(), s.Term, s.EffectiveFrom, s.AnnualRatePercent); err != nil {
			return nil, err
		}
	}
	return seeded, nil
}
