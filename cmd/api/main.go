package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"credit_valuation/pkg/api/valuation"
	"credit_valuation/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Run store: Postgres when DATABASE_URL is set, local files otherwise
	ctx := context.Background()
	repo, err := store.OpenRunRepo(ctx, os.Getenv("RUN_STORE_DIR"))
	if err != nil {
		fmt.Printf("[WARNING] database init failed: %v\n", err)
		fmt.Println("  Falling back to file-based run store")
		repo = store.NewRunRepo(nil, os.Getenv("RUN_STORE_DIR"))
	}
	defer repo.Close()
	valuation.InitHandler(repo)

	// Valuation endpoints
	http.HandleFunc("/api/valuation/run", valuation.HandleRun)
	http.HandleFunc("/api/valuation/upload", valuation.HandleUpload)
	http.HandleFunc("/api/valuation/report", valuation.HandleReport)
	http.HandleFunc("/api/valuation/runs", valuation.HandleGetRun)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - POST /api/valuation/run     (JSON cohort -> table + summary)")
	fmt.Println("  - POST /api/valuation/upload  (CSV body + query params)")
	fmt.Println("  - POST /api/valuation/report  (markdown report, ?format=html)")
	fmt.Println("  - GET  /api/valuation/runs    (?id=<run id>)")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
