package ui

import "fmt"

// ASCII logo for the application
const ASCIILogo = `
    ╔════════════════════════════════════════════════════════════════╗
    ║ ████████╗ ██████╗ ██╗  ██╗███████╗ ██████╗██████╗  █████╗ ██████╗ ║
    ║ ╚══██╔══╝██╔═══██╗██║ ██╔╝██╔════╝██╔════╝██╔══██╗██╔══██╗██╔══██╗║
    ║    ██║   ██║   ██║█████╔╝ ███████╗██║     ██████╔╝███████║██████╔╝║
    ║    ██║   ██║   ██║██╔═██╗ ╚════██║██║     ██╔══██╗██╔══██║██╔═══╝ ║
    ║    ██║   ╚██████╔╝██║  ██╗███████║╚██████╗██║  ██║██║  ██║██║     ║
    ║    ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ║
    ║            HIDDEN ENDPOINT ACQUISITION UTILITY v1.0               ║
    ╚════════════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// quietMode suppresses informational output. It is set once at startup
// from the --quiet flag, before any goroutines print.
var quietMode bool

// SetQuietMode turns informational printing on or off.
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode reports whether informational printing is suppressed.
func IsQuietMode() bool {
	return quietMode
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quietMode {
		return
	}
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red. Errors print even in quiet mode.
func PrintError(format string, args ...interface{}) {
	fmt.Println(Red(fmt.Sprintf(format, args...)))
}

// PrintSuccess prints a success message in green
func PrintSuccess(format string, args ...interface{}) {
	if quietMode {
		return
	}
	fmt.Println(Green(fmt.Sprintf(format, args...)))
}

// PrintInfo prints a labeled value in cyan and yellow
func PrintInfo(label string, value string) {
	if quietMode {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(format string, args ...interface{}) {
	if quietMode {
		return
	}
	fmt.Println(Yellow(fmt.Sprintf(format, args...)))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(format string, args ...interface{}) {
	if quietMode {
		return
	}
	fmt.Println(Magenta(fmt.Sprintf(format, args...)))
}
