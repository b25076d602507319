package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tokscraper/pkg/logger"
)

// Row is one persisted record. Values are already coerced to their canonical
// string form; the key column decides identity during merges.
type Row map[string]string

// Manager persists acquired rows as CSV tables under a base directory.
// All writes go through MergeWrite, so a table can be extended by any number
// of runs (or batch workers) without losing or duplicating rows.
type Manager struct {
	outputDir string
	mu        sync.Mutex
}

// NewManager creates a storage manager rooted at outputDir, creating the
// directory if needed.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
	}, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Path returns the location of a table file inside the output directory.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// MergeWrite merges rows into the named CSV table and rewrites it atomically.
//
// Rows already on disk take precedence: existing rows are concatenated before
// the new ones and duplicates are dropped by the keyField value, keeping the
// first occurrence. Column order follows the on-disk header, then any columns
// new to the table in the order given by columns, then remaining stragglers
// sorted. An empty keyField disables deduplication. Returns the number of
// rows in the rewritten table.
func (m *Manager) MergeWrite(name string, rows []Row, columns []string, keyField string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.outputDir, name)
	header, existing, err := readTable(path)
	if err != nil {
		return 0, err
	}

	merged := mergeRows(existing, rows, keyField)
	order := mergeColumns(header, columns, merged)
	if err := writeTable(path, order, merged); err != nil {
		return 0, err
	}

	mergeWritesTotal.Inc()
	rowsWrittenTotal.Add(float64(len(merged)))
	logger.LogRowsWritten(name, len(existing), len(rows), len(merged))

	return len(merged), nil
}

// ReadTable loads the named CSV table, returning its header and rows.
// A missing table yields a nil header and no rows.
func (m *Manager) ReadTable(name string) ([]string, []Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return readTable(filepath.Join(m.outputDir, name))
}

// mergeRows concatenates existing rows before incoming ones and drops
// duplicate keys, keeping the first occurrence. Rows that share an empty key
// value also collapse to the first one seen.
func mergeRows(existing, incoming []Row, keyField string) []Row {
	if keyField == "" {
		return append(append([]Row{}, existing...), incoming...)
	}

	merged := make([]Row, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, row := range append(append([]Row{}, existing...), incoming...) {
		key := row[keyField]
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, row)
	}

	return merged
}

// mergeColumns builds the output column order: the on-disk header first, then
// preferred columns not yet present, then any remaining row fields sorted.
func mergeColumns(header, preferred []string, rows []Row) []string {
	order := make([]string, 0, len(header)+len(preferred))
	known := make(map[string]bool, len(header)+len(preferred))
	for _, col := range header {
		if !known[col] {
			known[col] = true
			order = append(order, col)
		}
	}
	for _, col := range preferred {
		if !known[col] {
			known[col] = true
			order = append(order, col)
		}
	}

	var extra []string
	for _, row := range rows {
		for col := range row {
			if !known[col] {
				known[col] = true
				extra = append(extra, col)
			}
		}
	}
	sort.Strings(extra)

	return append(order, extra...)
}

// readTable parses a CSV table from disk. A missing file is not an error.
func readTable(path string) ([]string, []Row, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open existing table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse existing table: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// writeTable writes the table to a temporary file and renames it into place.
func writeTable(path string, columns []string, rows []Row) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary table file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(columns) > 0 {
		if err := writer.Write(columns); err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write table header: %w", err)
		}
		record := make([]string, len(columns))
		for _, row := range rows {
			for i, col := range columns {
				record[i] = row[col]
			}
			if err := writer.Write(record); err != nil {
				file.Close()
				os.Remove(tempPath)
				return fmt.Errorf("failed to write table row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush table: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync table file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close table file: %w", err)
	}

	// Atomically replace the old table file
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace table file: %w", err)
	}

	return nil
}
