package tables

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TableRowModel is the GORM model for the domain_tables table
type TableRowModel struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Kind     string `gorm:"column:kind"`     // exact, suffix or fallback
	Pattern  string `gorm:"column:pattern"`  // domain or suffix; empty for fallback rows
	Location string `gorm:"column:location"` // resolved location string
	Position int    `gorm:"column:position"` // row order; suffix priority
}

// TableName specifies the table name for GORM
// By default, GORM would pluralize to "table_row_models"
// This override tells GORM to use "domain_tables" instead
func (TableRowModel) TableName() string {
	return "domain_tables"
}

// MySQLSource loads resolution tables from MySQL using GORM
type MySQLSource struct {
	db *gorm.DB
}

// NewMySQLSource creates a new MySQL table source using GORM
//
// Parameters:
//   - dsn: Data Source Name (connection string)
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
//
// Returns:
//   - *MySQLSource: pointer to the created source
//   - error: any error that occurred during connection
func NewMySQLSource(dsn string) (*MySQLSource, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Disable query logging (set to Info for debugging)
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	// Get underlying SQL database for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLSource{db: db}, nil
}

// Load reads every table row ordered by position.
// Suffix priority is the position order, so whatever seeds the table must
// write rows in declaration order.
func (s *MySQLSource) Load() (*Tables, error) {
	var records []TableRowModel

	// GORM query: SELECT * FROM domain_tables ORDER BY position
	result := s.db.Order("position").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, Row{
			Kind:     record.Kind,
			Pattern:  record.Pattern,
			Location: record.Location,
		})
	}

	return FromRows(rows)
}

// Close closes the database connection
// Should be called once the tables are loaded
func (s *MySQLSource) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
