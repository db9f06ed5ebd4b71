package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/liorazi/email2location/internal/config"
	"github.com/liorazi/email2location/internal/llm"
	"github.com/liorazi/email2location/internal/logger"
	"github.com/liorazi/email2location/internal/service"
	"github.com/liorazi/email2location/internal/tables"
)

// This tool resolves a single email address from the command line
// Usage: go run cmd/locate/main.go [email]
func main() {
	email := "joan@whoop.go"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}

	appConfig := config.Load()

	// Load tables from the configured source
	source, err := tables.NewSource(tables.SourceConfig{
		Type:          appConfig.TablesSource,
		Path:          appConfig.TablesPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to initialize table source: %v", err)
	}
	resolutionTables, err := source.Load()
	if err != nil {
		log.Fatalf("Failed to load resolution tables: %v", err)
	}
	source.Close()

	modelClient := llm.NewAnthropicClient(llm.Config{
		APIKey:    appConfig.AnthropicAPIKey,
		BaseURL:   appConfig.AnthropicBaseURL,
		Model:     appConfig.AnthropicModel,
		MaxTokens: appConfig.AnthropicMaxTokens,
	})

	// Errors only, so the answer is the only stdout line
	quietLogger := logger.New(logger.Config{Level: "error", Pretty: true})
	locator := service.NewLocatorService(resolutionTables, modelClient, nil, quietLogger)

	resolution, err := locator.ResolveLocation(context.Background(), email)
	if err != nil {
		log.Fatalf("Failed to resolve %s: %v", email, err)
	}

	fmt.Printf("%s -> %s (%s)\n", email, resolution.Location, resolution.Source)
}
