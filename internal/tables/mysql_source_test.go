package tables

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock database for testing
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

// tableRows builds the sqlmock column set for domain_tables
func tableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "kind", "pattern", "location", "position"})
}

// TestMySQLSource_Load_Success tests loading a full table set
func TestMySQLSource_Load_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	source := &MySQLSource{db: db}

	rows := tableRows().
		AddRow(1, "exact", "gmail.com", "Mountain View, USA", 1).
		AddRow(2, "suffix", ".co.uk", "London, UK", 2).
		AddRow(3, "suffix", ".uk", "London, UK", 3).
		AddRow(4, "fallback", "", "Nowhere, Internet", 4)

	mock.ExpectQuery("SELECT \\* FROM `domain_tables` ORDER BY position").
		WillReturnRows(rows)

	tbl, err := source.Load()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.ExactCount() != 1 {
		t.Errorf("expected 1 exact entry, got %d", tbl.ExactCount())
	}
	if tbl.SuffixCount() != 2 {
		t.Errorf("expected 2 suffix rules, got %d", tbl.SuffixCount())
	}
	if tbl.FallbackCount() != 1 {
		t.Errorf("expected 1 fallback, got %d", tbl.FallbackCount())
	}

	location, ok := tbl.ExactLookup("gmail.com")
	if !ok {
		t.Fatal("expected gmail.com to be loaded")
	}
	if location != "Mountain View, USA" {
		t.Errorf("expected 'Mountain View, USA', got '%s'", location)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLSource_Load_SuffixOrder tests that position order sets priority
func TestMySQLSource_Load_SuffixOrder(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	source := &MySQLSource{db: db}

	// Rows arrive ordered by position: ".co.uk" before ".uk"
	rows := tableRows().
		AddRow(1, "suffix", ".co.uk", "London, UK", 1).
		AddRow(2, "suffix", ".uk", "Elsewhere", 2).
		AddRow(3, "fallback", "", "Nowhere, Internet", 3)

	mock.ExpectQuery("SELECT \\* FROM `domain_tables` ORDER BY position").
		WillReturnRows(rows)

	tbl, err := source.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	location, ok := tbl.SuffixLookup("example.co.uk")
	if !ok {
		t.Fatal("expected a suffix match")
	}
	if location != "London, UK" {
		t.Errorf("expected the lowest-position rule to win, got '%s'", location)
	}

	mock.ExpectationsWereMet()
}

// TestMySQLSource_Load_DatabaseError tests database errors
func TestMySQLSource_Load_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	source := &MySQLSource{db: db}

	mock.ExpectQuery("SELECT \\* FROM `domain_tables` ORDER BY position").
		WillReturnError(sql.ErrConnDone)

	tbl, err := source.Load()

	if err == nil {
		t.Error("expected database error, got nil")
	}
	if tbl != nil {
		t.Error("expected nil tables, got data")
	}

	mock.ExpectationsWereMet()
}

// TestMySQLSource_Load_EmptyTable tests that an empty table cannot load
func TestMySQLSource_Load_EmptyTable(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	source := &MySQLSource{db: db}

	mock.ExpectQuery("SELECT \\* FROM `domain_tables` ORDER BY position").
		WillReturnRows(tableRows())

	// No rows means no fallback pool, which the tables refuse
	_, err := source.Load()
	if err == nil {
		t.Error("expected error for empty table, got nil")
	}

	mock.ExpectationsWereMet()
}

// TestMySQLSource_Close tests cleanup
func TestMySQLSource_Close(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	source := &MySQLSource{db: db}

	mock.ExpectClose()

	if err := source.Close(); err != nil {
		t.Errorf("unexpected error on close: %v", err)
	}

	mock.ExpectationsWereMet()
}

// TestMySQLSource_Close_NilDB tests close with nil db
func TestMySQLSource_Close_NilDB(t *testing.T) {
	source := &MySQLSource{db: nil}

	if err := source.Close(); err != nil {
		t.Errorf("expected no error for nil db, got: %v", err)
	}
}

// TestTableRowModel_TableName tests GORM table name override
func TestTableRowModel_TableName(t *testing.T) {
	model := TableRowModel{}

	if model.TableName() != "domain_tables" {
		t.Errorf("expected table name 'domain_tables', got '%s'", model.TableName())
	}
}
