package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Build the UI layout
	var sections []string

	// Logo
	sections = append(sections, m.renderLogo())

	// Main content area with two columns
	leftColumn := m.renderLeftColumn()
	rightColumn := m.renderRightColumn()

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftColumn,
		"  ", // spacing
		rightColumn,
	)
	sections = append(sections, mainContent)

	// Help
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	// Join all sections vertically
	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the header banner
func (m Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════════════════════╗
║ ████████╗ ██████╗ ██╗  ██╗███████╗ ██████╗██████╗  █████╗ ██╗ ║
║ ╚══██╔══╝██╔═══██╗██║ ██╔╝██╔════╝██╔════╝██╔══██╗██╔══██╗██║ ║
║    ██║   ██║   ██║█████╔╝ ███████╗██║     ██████╔╝███████║██║ ║
║    ██║   ██║   ██║██╔═██╗ ╚════██║██║     ██╔══██╗██╔══██║╚═╝ ║
║    ██║   ╚██████╔╝██║  ██╗███████║╚██████╗██║  ██║██║  ██║██╗ ║
║    ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝ ║
║           HIDDEN ENDPOINT ACQUISITION UTILITY v1.0            ║
╚══════════════════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderLeftColumn renders the left side of the UI
func (m Model) renderLeftColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Stats panel
	sections = append(sections, m.renderStatsPanel(width))

	// Active operations panel
	sections = append(sections, m.renderActiveOperationsPanel(width))

	// Results panel
	sections = append(sections, m.renderResultsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRightColumn renders the right side of the UI
func (m Model) renderRightColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Overall progress panel
	sections = append(sections, m.renderProgressPanel(width))

	// Logs panel
	sections = append(sections, m.renderLogsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatsPanel renders the statistics panel
func (m Model) renderStatsPanel(width int) string {
	m.mu.RLock()
	completed := m.completedOps
	failed := m.failedOps
	rows := m.totalRows
	started := m.sessionStartTime
	m.mu.RUnlock()

	title := titleStyle.Render(" SESSION STATS ")

	elapsed := time.Since(started)

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Session Time:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Operations:"), statsValueStyle.Render(fmt.Sprintf("%d done", completed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rows Written:"), statsValueStyle.Render(fmt.Sprintf("%d", rows))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f rows/min", m.GetRowRate()))),
	}
	if failed > 0 {
		stats = append(stats, fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprintf("%d", failed))))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderActiveOperationsPanel renders the operations in flight
func (m Model) renderActiveOperationsPanel(width int) string {
	title := titleStyle.Render(" ACTIVE OPERATIONS ")

	active := m.GetActiveOperations()

	if len(active) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Idle")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var ops []string
	for _, op := range active {
		line := fmt.Sprintf("%s %s %s",
			m.spinner.View(),
			opItemActiveStyle.Render(describeOp(op.Kind, op.Target)),
			lipgloss.NewStyle().Foreground(dimWhite).Render(formatDuration(time.Since(op.StartTime))),
		)
		ops = append(ops, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, ops...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderResultsPanel renders the most recent finished operations
func (m Model) renderResultsPanel(width int) string {
	title := titleStyle.Render(" RESULTS ")

	finished := m.GetFinishedOperations()

	if len(finished) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Nothing finished yet")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	// Show the most recent handful
	start := len(finished) - 6
	if start < 0 {
		start = 0
	}

	var items []string
	for i := start; i < len(finished); i++ {
		op := finished[i]
		if op.State == OperationFailed {
			items = append(items, errorStyle.Render("✗ ")+opItemDoneStyle.Render(describeOp(op.Kind, op.Target)))
			continue
		}
		items = append(items, successStyle.Render("✓ ")+opItemDoneStyle.Render(fmt.Sprintf("%s (%d rows)", op.File, op.Rows)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderProgressPanel renders the overall batch progress bar
func (m Model) renderProgressPanel(width int) string {
	title := titleStyle.Render(" RUN PROGRESS ")

	m.mu.RLock()
	planned := m.plannedJobs
	done := m.completedOps + m.failedOps
	m.mu.RUnlock()

	bar := m.overall
	bar.Width = width - 8

	label := fmt.Sprintf("%s %s", statsLabelStyle.Render("Jobs:"),
		statsValueStyle.Render(fmt.Sprintf("%d/%d", done, maxInt(planned, done))))
	if planned == 0 {
		label = fmt.Sprintf("%s %s", statsLabelStyle.Render("Jobs:"),
			statsValueStyle.Render(fmt.Sprintf("%d finished", done)))
	}

	content := []string{
		label,
		bar.ViewAs(m.GetProgress()),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SESSION LOGS ")

	// Get recent logs
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(log.Message)

		// Truncate message if too long
		maxMsgLen := width - 25
		if len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	// Calculate height for logs panel to fill remaining space
	logsHeight := m.height - 30
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Quit the dashboard
    ?        - Toggle this help
    ctrl+l   - Clear the log panel

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Completed operation
    ` + warningStyle.Render("Orange") + `   - Warning
    ` + errorStyle.Render("Red") + `      - Failed operation

  Icons:
    ✓        - Table merged
    ✗        - Operation failed
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
