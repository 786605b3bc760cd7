package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the extractor palette.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleCard frames the credential form and the run progress pane.
var StyleCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGray).
	Padding(0, 1)

// Status styles for connection and run state.
var (
	StyleStatusOK   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusWarn = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusErr  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// Utility styles.
var (
	StyleError    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim      = lipgloss.NewStyle().Foreground(colorGray)
	StyleLabel    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSelected = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	StyleTab      = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	StyleTabOn    = lipgloss.NewStyle().Foreground(colorBlue).Bold(true).Padding(0, 1).Underline(true)
)

// SeverityStyle colors a controller severity string.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "INFO":
		return StyleStatusOK
	case "WARN", "WARNING":
		return StyleStatusWarn
	case "ERROR", "CRITICAL":
		return StyleStatusErr
	default:
		return StyleDim
	}
}
