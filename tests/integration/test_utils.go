package integration

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"tokscraper/pkg/config"
	"tokscraper/pkg/scraper"
	"tokscraper/pkg/storage"
	"tokscraper/pkg/ui"
)

// TestHelper wires the acquisition pipeline around a scripted client and a
// throwaway output directory.
type TestHelper struct {
	t       *testing.T
	tempDir string
}

// NewTestHelper creates a helper with its own output directory.
func NewTestHelper(t *testing.T) *TestHelper {
	ui.SetQuietMode(true)
	return &TestHelper{
		t:       t,
		tempDir: t.TempDir(),
	}
}

// OutputDir returns the directory tables land in.
func (h *TestHelper) OutputDir() string {
	return h.tempDir
}

// CreateTestConfig builds a config suitable for scripted runs: generous rate
// limit so pacing never blocks, notifications off, no run report unless a
// test turns it back on.
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = h.tempDir
	cfg.Output.WriteReport = false
	cfg.RateLimit.RequestsPerMinute = 600
	cfg.RateLimit.BurstSize = 100
	cfg.Notifications.NotificationType = "none"
	return cfg
}

// NewScraper builds a facade around the scripted client, writing into the
// helper's output directory.
func (h *TestHelper) NewScraper(cfg *config.Config, client *MockTikTokClient) *scraper.Scraper {
	manager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		h.t.Fatalf("Failed to create storage manager: %v", err)
	}
	return scraper.NewWithClient(cfg, client, manager)
}

// NewStorageManager opens a manager over the helper's output directory.
func (h *TestHelper) NewStorageManager() *storage.Manager {
	manager, err := storage.NewManager(h.tempDir)
	if err != nil {
		h.t.Fatalf("Failed to create storage manager: %v", err)
	}
	return manager
}

// ReadCSV loads a table from the output directory, returning its header and
// data records.
func (h *TestHelper) ReadCSV(name string) ([]string, [][]string) {
	f, err := os.Open(filepath.Join(h.tempDir, name))
	if err != nil {
		h.t.Fatalf("Failed to open table %s: %v", name, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		h.t.Fatalf("Failed to parse table %s: %v", name, err)
	}
	if len(records) == 0 {
		h.t.Fatalf("Table %s has no header", name)
	}
	return records[0], records[1:]
}

// Column extracts one column's values from data records.
func (h *TestHelper) Column(header []string, records [][]string, name string) []string {
	idx := -1
	for i, col := range header {
		if col == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		h.t.Fatalf("Column %s not in header %v", name, header)
	}

	values := make([]string, len(records))
	for i, record := range records {
		values[i] = record[idx]
	}
	return values
}

// AssertRowCount checks a table holds the expected number of data rows.
func (h *TestHelper) AssertRowCount(name string, expected int) {
	_, records := h.ReadCSV(name)
	if len(records) != expected {
		h.t.Errorf("Table %s has %d rows, expected %d", name, len(records), expected)
	}
}

// AssertFileExists checks if a file exists in the output directory.
func (h *TestHelper) AssertFileExists(name string) {
	if _, err := os.Stat(filepath.Join(h.tempDir, name)); os.IsNotExist(err) {
		h.t.Errorf("Expected file to exist: %s", name)
	}
}

// AssertFileNotExists checks if a file does not exist in the output directory.
func (h *TestHelper) AssertFileNotExists(name string) {
	if _, err := os.Stat(filepath.Join(h.tempDir, name)); err == nil {
		h.t.Errorf("Expected file to not exist: %s", name)
	}
}

// AssertNoError fails the test if err is not nil.
func (h *TestHelper) AssertNoError(err error) {
	if err != nil {
		h.t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func (h *TestHelper) AssertError(err error) {
	if err == nil {
		h.t.Fatal("Expected error but got nil")
	}
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
