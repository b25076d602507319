package scraper

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const reportFileName = "report.json"

// Report accumulates one record per scrape operation and serializes the run
// summary next to the CSV tables.
type Report struct {
	mu sync.Mutex

	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Operations []OperationRecord `json:"operations"`
}

// OperationRecord is the outcome of a single scrape operation.
type OperationRecord struct {
	Kind       string `json:"kind"`
	Target     string `json:"target,omitempty"`
	File       string `json:"file,omitempty"`
	Collected  int    `json:"collected"`
	Written    int    `json:"written"`
	FromCache  bool   `json:"from_cache,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// NewReport starts an empty run report.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Record appends one operation outcome.
func (r *Report) Record(res *Result, opErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := OperationRecord{}
	if res != nil {
		rec = OperationRecord{
			Kind:       res.Kind,
			Target:     res.Target,
			File:       res.File,
			Collected:  res.Collected,
			Written:    res.Written,
			FromCache:  res.FromCache,
			DurationMS: res.Duration.Milliseconds(),
		}
	}
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	r.Operations = append(r.Operations, rec)
}

// Len returns the number of recorded operations.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Operations)
}

// Save finalizes the report and writes it as indented JSON.
func (r *Report) Save(path string) error {
	r.mu.Lock()
	r.FinishedAt = time.Now()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

// LoadReport reads a run report back from disk.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}
