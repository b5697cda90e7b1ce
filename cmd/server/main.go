package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"maisoku/internal/auth"
	"maisoku/internal/config"
	"maisoku/internal/handler"
	"maisoku/internal/maps"
	"maisoku/internal/metrics"
	"maisoku/internal/middleware"
	"maisoku/internal/prompt"
	"maisoku/internal/repository/postgres"
	"maisoku/internal/service"
	"maisoku/internal/service/providers/gemini"
	"maisoku/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Firebase authentication
	verifier, err := auth.NewTokenVerifier(cfg.FirebaseJWKSURL, cfg.FirebaseProjectID, cfg.IssuerURL(), logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	prefsRepo := postgres.NewPreferenceRepository(repoConfig)
	historyRepo := postgres.NewHistoryRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// History image storage
	images, err := storage.NewBucketImageStore(ctx, cfg.HistoryImageBucket, cfg.ImageCDNDomain, logger)
	if err != nil {
		log.Fatalf("Failed to create image store: %v", err)
	}

	// Gemini analysis provider on Vertex AI
	provider, err := gemini.NewProvider(ctx, cfg.GoogleCloudProject, cfg.VertexAILocation, cfg.GeminiModel, logger)
	if err != nil {
		log.Fatalf("Failed to create analysis provider: %v", err)
	}
	logger.Info("analysis provider ready", "provider", provider.Name(), "model", cfg.GeminiModel)

	// Google Maps client (geocoding, autocomplete, nearby search)
	mapsClient, err := maps.NewClient(cfg.GoogleMapsAPIKey, logger)
	if err != nil {
		log.Fatalf("Failed to create maps client: %v", err)
	}

	// Prompt templates
	prompts, err := prompt.NewBuilder()
	if err != nil {
		log.Fatalf("Failed to load prompt templates: %v", err)
	}

	// Prometheus metrics
	exporter := metrics.NewExporter(metrics.DefaultConfig())

	// Create services
	prefsService := service.NewPreferenceService(prefsRepo, logger)
	historyService := service.NewHistoryService(historyRepo, images, txManager, logger)
	addressService := service.NewAddressService(mapsClient, logger)
	analysisService := service.NewAnalysisService(
		provider,
		prompts,
		prefsRepo,
		historyService,
		mapsClient,
		mapsClient,
		exporter,
		logger,
	)

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Environment)
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	addressHandler := handler.NewAddressHandler(addressService, logger)
	prefsHandler := handler.NewPreferencesHandler(prefsService, logger)
	historyHandler := handler.NewHistoryHandler(historyService, logger)

	logger.Info("services initialized")

	// Per-route authentication
	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", exporter.Handler())

	// Analysis routes. Camera requires sign-in; area works anonymously at
	// the basic tier (staged authentication).
	mux.HandleFunc("POST /api/analysis/camera", requireAuth(analysisHandler.AnalyzeCamera))
	mux.HandleFunc("POST /api/analysis/area", optionalAuth(analysisHandler.AnalyzeArea))

	// Address routes (no auth: resolution has no per-user state)
	mux.HandleFunc("GET /api/address/suggest", addressHandler.Suggest)
	mux.HandleFunc("POST /api/address/resolve", addressHandler.Resolve)
	mux.HandleFunc("GET /api/address/reverse", addressHandler.ReverseGeocode)

	// Preference routes
	mux.HandleFunc("GET /api/users/me/preferences", requireAuth(prefsHandler.GetPreferences))
	mux.HandleFunc("PUT /api/users/me/preferences", requireAuth(prefsHandler.SavePreferences))

	// History routes
	mux.HandleFunc("GET /api/users/me/history", requireAuth(historyHandler.ListHistory))
	mux.HandleFunc("DELETE /api/users/me/history/{id}", requireAuth(historyHandler.DeleteHistory))

	// Debug routes (only in dev environment)
	if cfg.Environment == "dev" && cfg.Debug {
		debugHandler := handler.NewDebugHandler(cfg, prompts)
		mux.HandleFunc("GET /debug", debugHandler.Diagnostics)
		mux.HandleFunc("POST /debug/api/prompt", debugHandler.PreviewPrompt)
		logger.Warn("Debug routes registered: GET /debug (diagnostics), POST /debug/api/prompt (prompt preview)")
	}

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Metrics → Routes
	root = middleware.Metrics(exporter)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server. Analysis calls block on the model, so the write
	// timeout has to outlast the slowest generation.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
