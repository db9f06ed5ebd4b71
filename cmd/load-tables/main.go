package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/liorazi/email2location/internal/config"
	"github.com/liorazi/email2location/internal/tables"
)

// This tool loads domain tables from CSV into Redis
// Usage: go run cmd/load-tables/main.go [-force]
func main() {
	force := flag.Bool("force", false, "overwrite tables already stored in Redis")
	flag.Parse()

	fmt.Println("🔄 Loading domain tables into Redis...")

	// Load configuration
	appConfig := config.Load()

	// Connect to Redis
	fmt.Printf("📡 Connecting to Redis at %s...\n", appConfig.RedisAddr)
	redisSource, err := tables.NewRedisSource(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisSource.Close()

	fmt.Println("✅ Connected to Redis")

	// Leave existing tables alone unless told otherwise
	if !*force {
		isEmpty, err := redisSource.IsEmpty()
		if err != nil {
			log.Fatalf("Failed to check existing tables: %v", err)
		}
		if !isEmpty {
			fmt.Println("⏭️  Tables already present, use -force to overwrite")
			return
		}
	}

	// Load data from CSV
	fmt.Printf("📁 Loading tables from %s...\n", appConfig.TablesPath)
	if err := redisSource.SeedFromCSV(appConfig.TablesPath); err != nil {
		log.Fatalf("Failed to load CSV tables: %v", err)
	}

	fmt.Println("✅ Tables loaded successfully!")
	fmt.Println("\n💡 You can now start the server with TABLES_SOURCE=redis")
}
