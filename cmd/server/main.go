package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nutrigrade/backend/config"
	httpDelivery "github.com/nutrigrade/backend/internal/delivery/http"
	"github.com/nutrigrade/backend/internal/infrastructure/cache"
	"github.com/nutrigrade/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
	"github.com/nutrigrade/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting NutriGrade Backend v%s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// The reference table is required; there is nothing to analyze against without it
	table, err := reference.Load(cfg.Reference.Path)
	if err != nil {
		log.Fatalf("Failed to load reference table: %v", err)
	}

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.OpenFoodFacts.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
		log.Printf("Open Food Facts client debug mode enabled")
	}
	log.Printf("Open Food Facts API configured: %s (agent: %s)", cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent)

	// Initialize usecase layer
	analysisService := usecase.NewAnalysisService(
		table,
		offClient,
		memoryCache,
		usecase.AnalysisServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			Deduplicate:        cfg.Analysis.Deduplicate,
			EnableDebugLogging: cfg.Analysis.EnableDebugLogging,
		},
	)

	log.Printf("Analysis: additives=%d, deduplicate=%v, debug=%v",
		table.Len(),
		cfg.Analysis.Deduplicate,
		cfg.Analysis.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
