package main

import (
	"fmt"
	"net/http"

	"github.com/liorazi/email2location/internal/config"
	"github.com/liorazi/email2location/internal/handler"
	"github.com/liorazi/email2location/internal/limiter"
	"github.com/liorazi/email2location/internal/llm"
	"github.com/liorazi/email2location/internal/logger"
	"github.com/liorazi/email2location/internal/metrics"
	"github.com/liorazi/email2location/internal/router"
	"github.com/liorazi/email2location/internal/service"
	"github.com/liorazi/email2location/internal/tables"
)

func main() {
	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)
	resolutionTables := setupTables(appConfig, appLogger)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := setupMetrics(resolutionTables, appLogger)
	modelClient := setupModelClient(appConfig, appLogger)

	// Build application layers
	locatorService := service.NewLocatorService(resolutionTables, modelClient, metricsCollector, appLogger)
	locateHandler := handler.NewLocateHandler(locatorService)
	appRouter := router.SetupRouter(locateHandler, rateLimiter, metricsCollector, appLogger)

	// Start server
	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting email2location Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("tables_source", appConfig.TablesSource).
		Str("tables_path", appConfig.TablesPath).
		Str("model", appConfig.AnthropicModel).
		Msg("Configuration loaded")

	return appLogger
}

// setupTables loads the resolution tables from the configured source
// The source is closed once loading finishes; the tables stay in memory
// for the lifetime of the process
func setupTables(appConfig *config.Config, log *logger.Logger) *tables.Tables {
	source, err := tables.NewSource(tables.SourceConfig{
		Type:          appConfig.TablesSource,
		Path:          appConfig.TablesPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize table source")
	}
	defer source.Close()

	// Auto-seed Redis from CSV on first run
	if redisSource, ok := source.(*tables.RedisSource); ok {
		seedRedisIfEmpty(redisSource, appConfig.TablesPath, log)
	}

	loadedTables, err := source.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load resolution tables")
	}

	fmt.Printf("✅ Resolution tables loaded (%d exact, %d suffix, %d fallback)\n",
		loadedTables.ExactCount(), loadedTables.SuffixCount(), loadedTables.FallbackCount())

	return loadedTables
}

// seedRedisIfEmpty checks if Redis holds table data and seeds it from CSV if not
func seedRedisIfEmpty(redisSource *tables.RedisSource, csvPath string, log *logger.Logger) {
	isEmpty, err := redisSource.IsEmpty()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}

	if isEmpty {
		fmt.Println("📦 Redis is empty, loading tables from CSV...")
		if err := redisSource.SeedFromCSV(csvPath); err != nil {
			log.Warn().Err(err).Msg("Failed to seed tables")
		}
	}
}

// setupRateLimiter initializes the rate limiter
// Supports in-memory and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	// Calculate effective rate: requests per second
	// Example: 10 requests per 5 seconds = 10/5 = 2.0 req/s
	effectiveRate := float64(appConfig.RateLimit) / float64(appConfig.RateLimitWindow)

	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:              appConfig.RateLimitType,
		RequestsPerSecond: effectiveRate,
		RedisAddr:         appConfig.RedisAddr,
		RedisPassword:     appConfig.RedisPassword,
		RedisDB:           appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	fmt.Printf("✅ Rate limiter initialized (type: %s, limit: %d req per %d sec = %.2f req/s)\n",
		appConfig.RateLimitType, appConfig.RateLimit, appConfig.RateLimitWindow, effectiveRate)

	return rateLimiter
}

// setupMetrics initializes the Prometheus metrics collector and records
// the loaded table sizes
func setupMetrics(loadedTables *tables.Tables, log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()

	metricsCollector.TableEntries.WithLabelValues(tables.KindExact).Set(float64(loadedTables.ExactCount()))
	metricsCollector.TableEntries.WithLabelValues(tables.KindSuffix).Set(float64(loadedTables.SuffixCount()))
	metricsCollector.TableEntries.WithLabelValues(tables.KindFallback).Set(float64(loadedTables.FallbackCount()))

	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// setupModelClient initializes the Anthropic client for the model stage
// A missing API key is not fatal: queries will fail and resolution falls
// through to the fallback pool
func setupModelClient(appConfig *config.Config, log *logger.Logger) *llm.AnthropicClient {
	if appConfig.AnthropicAPIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY is not set; model queries will fail over to the fallback pool")
	}

	modelClient := llm.NewAnthropicClient(llm.Config{
		APIKey:    appConfig.AnthropicAPIKey,
		BaseURL:   appConfig.AnthropicBaseURL,
		Model:     appConfig.AnthropicModel,
		MaxTokens: appConfig.AnthropicMaxTokens,
	})

	fmt.Printf("✅ Model client initialized (model: %s)\n", appConfig.AnthropicModel)
	return modelClient
}

// startServer starts the HTTP server and blocks
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	serverAddr := ":" + appConfig.Port

	log.Info().
		Str("port", appConfig.Port).
		Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/locate?email=<email>").
		Str("health_check", "http://localhost:"+appConfig.Port+"/health").
		Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
		Msg("Server is running")

	log.Fatal().Err(http.ListenAndServe(serverAddr, appRouter)).Msg("Server failed")
}
