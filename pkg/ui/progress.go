package ui

import (
	"fmt"
	"time"
)

// StatusTracker accumulates run totals across operations. Batch runs use
// one tracker to summarize what all workers produced.
type StatusTracker struct {
	CompletedOps int
	FailedOps    int
	TotalRows    int
	StartTime    time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
	}
}

// RecordSuccess counts a finished operation and the rows it wrote
func (st *StatusTracker) RecordSuccess(rows int) {
	st.CompletedOps++
	st.TotalRows += rows
}

// RecordFailure counts a failed operation
func (st *StatusTracker) RecordFailure() {
	st.FailedOps++
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRowRate returns the average acquisition rate in rows per minute
func (st *StatusTracker) GetRowRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.TotalRows) / elapsed
}

// Summary returns a one-line run summary
func (st *StatusTracker) Summary() string {
	line := fmt.Sprintf("%d operations, %d rows in %s (%.1f rows/min)",
		st.CompletedOps,
		st.TotalRows,
		formatElapsed(st.GetElapsedTime()),
		st.GetRowRate())
	if st.FailedOps > 0 {
		line += fmt.Sprintf(", %d failed", st.FailedOps)
	}
	return line
}

// PrintSummary prints the run summary unless quiet mode is on
func (st *StatusTracker) PrintSummary() {
	if quietMode {
		return
	}
	if st.FailedOps > 0 {
		fmt.Printf("\n%s %s\n", Yellow("[DONE]"), st.Summary())
		return
	}
	fmt.Printf("\n%s %s\n", Green("[DONE]"), st.Summary())
}

// formatElapsed formats a duration in a compact human-readable way
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
