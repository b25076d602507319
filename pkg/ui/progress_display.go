package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay is the plain-terminal progress line for batch runs. It
// rewrites a single status line as jobs finish, and switches to one line
// per event in verbose mode.
type ProgressDisplay struct {
	mu         sync.Mutex
	totalJobs  int
	doneJobs   int
	totalRows  int
	errors     int
	currentJob string
	startTime  time.Time
	verbose    bool
}

// NewProgressDisplay creates a progress display for a batch of jobs
func NewProgressDisplay(totalJobs int, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		totalJobs: totalJobs,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// StartJob marks a job as running
func (p *ProgressDisplay) StartJob(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentJob = label
	if !p.verbose {
		p.printLine()
	}
}

// CompleteJob marks a job as finished with the rows its table now holds
func (p *ProgressDisplay) CompleteJob(label string, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doneJobs++
	p.totalRows += rows
	p.currentJob = ""

	if p.verbose {
		fmt.Printf("%s %s: %d rows\n", Green("✓"), label, rows)
		return
	}
	p.printLine()
}

// FailJob marks a job as failed
func (p *ProgressDisplay) FailJob(label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.doneJobs++
	p.errors++
	p.currentJob = ""

	if p.verbose {
		fmt.Printf("%s %s: %v\n", Red("✗"), label, err)
		return
	}
	p.printLine()
}

// UpdateTotal adjusts the expected job count when jobs stream in
func (p *ProgressDisplay) UpdateTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalJobs = total
}

// Complete finishes the display with a summary block
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Printf("\n\n%s %d jobs finished, %d rows on disk\n",
		Green("✓"),
		p.doneJobs,
		p.totalRows,
	)
	fmt.Printf("  %s %s (%.1f rows/min)\n",
		Dim("•"),
		formatElapsed(elapsed),
		float64(p.totalRows)/maxMinutes(elapsed),
	)
	if p.errors > 0 {
		fmt.Printf("  %s %d jobs failed\n", Dim("•"), p.errors)
	}
}

// printLine rewrites the single status line. Callers hold the mutex.
func (p *ProgressDisplay) printLine() {
	if quietMode {
		return
	}

	progress := 0.0
	if p.totalJobs > 0 {
		progress = float64(p.doneJobs) / float64(p.totalJobs)
	}
	barWidth := 20
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %d/%d jobs • %d rows • %s",
		bar,
		p.doneJobs,
		p.totalJobs,
		p.totalRows,
		formatElapsed(time.Since(p.startTime)),
	)
	if p.currentJob != "" {
		line += fmt.Sprintf(" • %s", p.currentJob)
	}
	if p.errors > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.errors)))
	}

	fmt.Printf("\r%s\r%s", strings.Repeat(" ", 120), line)
}

func maxMinutes(d time.Duration) float64 {
	m := d.Minutes()
	if m < 0.01 {
		return 0.01
	}
	return m
}
