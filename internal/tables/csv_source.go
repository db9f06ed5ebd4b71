package tables

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource loads resolution tables from a single CSV file.
//
// CSV Format: kind,pattern,location
//   - kind "exact": pattern is the full domain
//   - kind "suffix": pattern is the domain suffix; file order sets priority
//   - kind "fallback": pattern is empty, location joins the fallback pool
//
// Example: exact,gmail.com,"Mountain View, USA"
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV source for the given file path.
// The file is not touched until Load is called.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads and parses the CSV file.
// The header row and rows without exactly 3 columns are skipped instead of
// failing the whole load.
func (s *CSVSource) Load() (*Tables, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Column counts are validated per row below, not by the reader.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		// Skip header row (first row with column names)
		if i == 0 {
			continue
		}

		// Skip invalid records instead of failing
		if len(record) != 3 {
			continue
		}

		rows = append(rows, Row{
			Kind:     record[0],
			Pattern:  record[1],
			Location: record[2],
		})
	}

	return FromRows(rows)
}

// Close cleans up resources.
// For the CSV source there is nothing to clean up (the file is read in Load),
// but the method is needed to satisfy the Source interface.
func (s *CSVSource) Close() error {
	return nil
}
