package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OperationState represents the state of a scrape operation
type OperationState int

const (
	OperationActive OperationState = iota
	OperationCompleted
	OperationFailed
)

// OperationItem represents a single scrape operation
type OperationItem struct {
	Key       string
	Kind      string
	Target    string
	File      string
	Rows      int
	State     OperationState
	StartTime time.Time
	Error     error
}

// Model represents the TUI model
type Model struct {
	// UI components
	spinner spinner.Model
	overall progress.Model

	// Operation state
	operations     map[string]*OperationItem
	operationOrder []string

	// Stats
	plannedJobs      int
	completedOps     int
	failedOps        int
	totalRows        int
	sessionStartTime time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	// Mutex for thread safety
	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return Model{
		spinner:          s,
		overall:          p,
		operations:       make(map[string]*OperationItem),
		operationOrder:   []string{},
		sessionStartTime: time.Now(),
		logMessages:      []LogMessage{},
		maxLogMessages:   50,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// opKey builds the correlation key for an operation
func opKey(kind, target string) string {
	return kind + ":" + target
}

// StartOperation registers a new active operation
func (m *Model) StartOperation(kind, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := opKey(kind, target)
	if _, ok := m.operations[key]; !ok {
		m.operationOrder = append(m.operationOrder, key)
	}
	m.operations[key] = &OperationItem{
		Key:       key,
		Kind:      kind,
		Target:    target,
		State:     OperationActive,
		StartTime: time.Now(),
	}
}

// CompleteOperation marks an operation as finished with its table state
func (m *Model) CompleteOperation(kind, target, file string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := opKey(kind, target)
	op, ok := m.operations[key]
	if !ok {
		op = &OperationItem{Key: key, Kind: kind, Target: target, StartTime: time.Now()}
		m.operations[key] = op
		m.operationOrder = append(m.operationOrder, key)
	}
	op.State = OperationCompleted
	op.File = file
	op.Rows = rows
	m.completedOps++
	m.totalRows += rows
}

// FailOperation marks an operation as failed
func (m *Model) FailOperation(kind, target string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := opKey(kind, target)
	op, ok := m.operations[key]
	if !ok {
		op = &OperationItem{Key: key, Kind: kind, Target: target, StartTime: time.Now()}
		m.operations[key] = op
		m.operationOrder = append(m.operationOrder, key)
	}
	op.State = OperationFailed
	op.Error = err
	m.failedOps++
}

// SetPlannedJobs records how many jobs this run will attempt, so the
// overall bar has a denominator
func (m *Model) SetPlannedJobs(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plannedJobs = count
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// GetActiveOperations returns the operations still running
func (m *Model) GetActiveOperations() []*OperationItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*OperationItem
	for _, key := range m.operationOrder {
		if op := m.operations[key]; op != nil && op.State == OperationActive {
			active = append(active, op)
		}
	}
	return active
}

// GetFinishedOperations returns completed and failed operations in order
func (m *Model) GetFinishedOperations() []*OperationItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var finished []*OperationItem
	for _, key := range m.operationOrder {
		if op := m.operations[key]; op != nil && op.State != OperationActive {
			finished = append(finished, op)
		}
	}
	return finished
}

// GetProgress returns the fraction of planned jobs that have finished
func (m *Model) GetProgress() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.plannedJobs
	if total == 0 {
		total = len(m.operationOrder)
	}
	if total == 0 {
		return 0
	}
	p := float64(m.completedOps+m.failedOps) / float64(total)
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// GetRowRate returns the average acquisition rate in rows per minute
func (m *Model) GetRowRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.sessionStartTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(m.totalRows) / elapsed
}
