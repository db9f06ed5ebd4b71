package tables

import (
	"fmt"
	"strings"
)

// Source loads resolution tables from a backing store.
// Load is called once at startup; the returned Tables never change afterwards.
type Source interface {
	Load() (*Tables, error)

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}

// SourceConfig holds settings for creating a table source
type SourceConfig struct {
	Type string // "builtin", "csv", "mysql" or "redis"

	// CSV settings
	Path string

	// MySQL settings
	MySQLDSN string

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewSource creates a table source based on the configured type.
// An empty type defaults to the builtin tables.
func NewSource(cfg SourceConfig) (Source, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "builtin":
		return NewBuiltinSource(), nil
	case "csv":
		return NewCSVSource(cfg.Path), nil
	case "mysql":
		return NewMySQLSource(cfg.MySQLDSN)
	case "redis":
		return NewRedisSource(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown table source type: %s (use 'builtin', 'csv', 'mysql' or 'redis')", cfg.Type)
	}
}

// BuiltinSource serves the compiled-in default tables.
type BuiltinSource struct{}

// NewBuiltinSource creates a source backed by the compiled-in tables
func NewBuiltinSource() *BuiltinSource {
	return &BuiltinSource{}
}

// Load returns the default tables
func (s *BuiltinSource) Load() (*Tables, error) {
	return Default(), nil
}

// Close cleans up resources. The builtin source holds none.
func (s *BuiltinSource) Close() error {
	return nil
}
