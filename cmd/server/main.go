package main

import (
	"fmt"
	"log"
	"os"

	"github.com/medilingo/backend/config"
	httpDelivery "github.com/medilingo/backend/internal/delivery/http"
	"github.com/medilingo/backend/internal/infrastructure/cache"
	"github.com/medilingo/backend/internal/infrastructure/openfda"
	"github.com/medilingo/backend/internal/infrastructure/store"
	"github.com/medilingo/backend/internal/infrastructure/vision"
	"github.com/medilingo/backend/internal/infrastructure/watsonx"
	"github.com/medilingo/backend/internal/usecase"
)

func main() {
	// Load .env before reading configuration
	if err := config.LoadEnv(); err != nil {
		log.Printf("WARNING: could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting MediLingo Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Infrastructure
	memoryCache := cache.NewMemoryCache()
	log.Printf("Label cache TTL: %s, explanation TTL: %s", cfg.Cache.TTL, cfg.Cache.ExplanationTTL)

	settingsStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open settings store at %s: %v", cfg.Store.Path, err)
	}
	defer settingsStore.Close()
	log.Printf("Settings store: %s", cfg.Store.Path)

	visionClient := vision.NewClient(cfg.Vision.APIKey, cfg.Vision.BaseURL)
	fdaClient := openfda.NewClient(cfg.OpenFDA.APIKey, cfg.OpenFDA.BaseURL)
	watsonxClient := watsonx.NewClient(watsonx.Config{
		APIKey:     cfg.Watsonx.APIKey,
		ProjectID:  cfg.Watsonx.ProjectID,
		ServiceURL: cfg.Watsonx.ServiceURL,
		IAMURL:     cfg.Watsonx.IAMURL,
		ModelID:    cfg.Watsonx.ModelID,
		Version:    cfg.Watsonx.Version,
	})

	// Client-side upstream budgets from config, per minute
	visionClient.SetRateLimit(cfg.RateLimit.Vision)
	fdaClient.SetRateLimit(cfg.RateLimit.OpenFDA)
	watsonxClient.SetRateLimit(cfg.RateLimit.Watsonx)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		visionClient.SetDebug(true)
		fdaClient.SetDebug(true)
		log.Printf("Upstream client debug mode enabled")
	}

	log.Printf("Vision API configured: %s", cfg.Vision.BaseURL)
	if cfg.OpenFDA.APIKey != "" {
		log.Printf("openFDA configured: %s (authenticated)", cfg.OpenFDA.BaseURL)
	} else {
		log.Printf("openFDA configured: %s (unauthenticated, lower rate limit)", cfg.OpenFDA.BaseURL)
	}
	log.Printf("watsonx.ai configured: %s (model: %s)", cfg.Watsonx.ServiceURL, cfg.Watsonx.ModelID)

	// Usecase layer
	lookupService := usecase.NewLookupService(
		memoryCache,
		visionClient,
		fdaClient,
		watsonxClient,
		settingsStore,
		usecase.LookupServiceConfig{
			LabelCacheTTL:      cfg.Cache.TTL,
			ExplanationTTL:     cfg.Cache.ExplanationTTL,
			EnableDebugLogging: cfg.Server.Environment == "development",
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(lookupService, visionClient, fdaClient, watsonxClient, settingsStore)

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
