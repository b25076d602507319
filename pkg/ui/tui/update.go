package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Message types for the TUI

// OperationStartMsg is sent when a scrape operation starts
type OperationStartMsg struct {
	Kind   string
	Target string
}

// OperationCompleteMsg is sent when an operation finishes
type OperationCompleteMsg struct {
	Kind   string
	Target string
	File   string
	Rows   int
}

// OperationErrorMsg is sent when an operation fails
type OperationErrorMsg struct {
	Kind   string
	Target string
	Error  error
}

// PlannedJobsMsg is sent when the batch queue size is known
type PlannedJobsMsg struct {
	Count int
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Regular UI update tick
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case OperationStartMsg:
		m.StartOperation(msg.Kind, msg.Target)
		m.AddLogMessage("INFO", "Scraping "+describeOp(msg.Kind, msg.Target))
		return m, nil

	case OperationCompleteMsg:
		m.CompleteOperation(msg.Kind, msg.Target, msg.File, msg.Rows)
		m.AddLogMessage("SUCCESS", "Merged "+msg.File)
		return m, nil

	case OperationErrorMsg:
		m.FailOperation(msg.Kind, msg.Target, msg.Error)
		m.AddLogMessage("ERROR", "Failed "+describeOp(msg.Kind, msg.Target)+": "+msg.Error.Error())
		return m, nil

	case PlannedJobsMsg:
		m.SetPlannedJobs(msg.Count)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		// Clear logs
		m.mu.Lock()
		m.logMessages = []LogMessage{}
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

func describeOp(kind, target string) string {
	if target == "" {
		return kind
	}
	return kind + " " + target
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendOperationStart creates a message for a starting operation
func SendOperationStart(kind, target string) tea.Msg {
	return OperationStartMsg{Kind: kind, Target: target}
}

// SendOperationComplete creates a message for a finished operation
func SendOperationComplete(kind, target, file string, rows int) tea.Msg {
	return OperationCompleteMsg{Kind: kind, Target: target, File: file, Rows: rows}
}

// SendOperationError creates a message for a failed operation
func SendOperationError(kind, target string, err error) tea.Msg {
	return OperationErrorMsg{Kind: kind, Target: target, Error: err}
}

// SendPlannedJobs creates a message carrying the batch queue size
func SendPlannedJobs(count int) tea.Msg {
	return PlannedJobsMsg{Count: count}
}

// SendLog creates a log message
func SendLog(level, message string) tea.Msg {
	return LogMsg{Level: level, Message: message}
}
