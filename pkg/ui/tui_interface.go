package ui

// TUI is an interface for live terminal dashboards. Operations are keyed
// by kind and target so concurrent batch workers can report into one view.
type TUI interface {
	StartOperation(kind, target string)
	CompleteOperation(kind, target, file string, rows int)
	FailOperation(kind, target string, err error)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
}
