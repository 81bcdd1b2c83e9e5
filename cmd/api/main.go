package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/life-engine/internal/advisors"
	"github.com/jwebster45206/life-engine/internal/config"
	"github.com/jwebster45206/life-engine/internal/handlers"
	"github.com/jwebster45206/life-engine/internal/listings"
	"github.com/jwebster45206/life-engine/internal/logger"
	"github.com/jwebster45206/life-engine/internal/middleware"
	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/engine"
	"github.com/jwebster45206/life-engine/pkg/finance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Life Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case config.ProviderGemini:
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			log.Error("Failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llmService = gemini
		log.Info("Using Gemini LLM provider")
	default:
		log.Warn("No LLM provider configured; events and advice are disabled")
	}

	if llmService != nil {
		if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
			os.Exit(1)
		}
	}

	// Keep the interface nil when Redis is off so the health check reports it as disabled.
	var cache services.Cache
	if cfg.RedisURL != "" {
		redis, err := services.NewRedisService(cfg.RedisURL, log)
		if err != nil {
			log.Error("Invalid Redis configuration", "error", err)
			os.Exit(1)
		}
		if err := redis.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
			log.Error("Failed to connect to cache", "error", err)
			os.Exit(1)
		}
		cache = redis
		log.Info("Cache connection established successfully")
	}

	src := finance.NewSource(cfg.RandomSeed)
	newEngine := engineFactory(cfg, llmService, cache, src)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cache, cfg.LLMProvider, log)
	mux.Handle("/health", healthHandler)

	gameHandler := handlers.NewGameHandler(newEngine, log)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,

		// Advisory endpoints wait on the LLM for up to PROVIDER_TIMEOUT
		WriteTimeout: cfg.ProviderTimeout + 15*time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if cache != nil {
		if err := cache.Close(); err != nil {
			log.Error("Error closing cache connection", "error", err)
		}
	}

	log.Info("Server exited")
}

// engineFactory wires the advisors and the listing client into every new
// session. All sessions share one random source and one LLM client.
func engineFactory(cfg *config.Config, llm services.LLMService, cache services.Cache, src finance.Source) handlers.EngineFactory {
	var (
		events          *advisors.EventGenerator
		occupations     *advisors.OccupationAdvisor
		housing         *advisors.HousingAdvisor
		recommendations *advisors.RecommendationAdvisor
	)
	if llm != nil {
		events = advisors.NewEventGenerator(llm, src, slog.Default())
		occupations = advisors.NewOccupationAdvisor(llm, slog.Default())
		housing = advisors.NewHousingAdvisor(llm, slog.Default())
		recommendations = advisors.NewRecommendationAdvisor(llm, slog.Default())
		if cache != nil {
			occupations.WithCache(cache, cfg.CacheTTL)
			housing.WithCache(cache, cfg.CacheTTL)
		}
	}

	listingClient := listings.NewClient(cfg.ListingsAPIURL, slog.Default())
	if cache != nil {
		listingClient.WithCache(cache, cfg.CacheTTL)
	}

	return func(log *slog.Logger) *engine.Engine {
		e := engine.New().
			WithLogger(log).
			WithInvestmentModel(finance.NewInvestmentModel(src)).
			WithListingProvider(listingClient).
			WithEventProbability(cfg.EventProbability).
			WithProviderTimeout(cfg.ProviderTimeout)
		if llm != nil {
			e.WithEventProvider(events).
				WithOccupationProvider(occupations).
				WithHousingProvider(housing).
				WithRecommendationProvider(recommendations)
		}
		return e
	}
}
